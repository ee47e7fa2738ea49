package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/CTAG07/munou/pkg/markov"
	"github.com/CTAG07/munou/pkg/morph"
	"github.com/CTAG07/munou/pkg/session"
	"github.com/CTAG07/munou/pkg/transcript"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	configPath       string
	corpusOverride   string
	logLevelOverride string
	generateCount    int
	historyCount     int

	rootCmd = &cobra.Command{
		Use:   "munou",
		Short: "A small Japanese chatbot built on a second-order Markov chain",
		Long: `munou trains a word-trigram Markov chain on a text corpus at startup and
answers each line you type with a sentence that starts from a noun you used.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runChat,
	}

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (default)",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Print unseeded sentences and exit",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Print the most recent turns from the transcript",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.json", "path to the JSON config file")
	rootCmd.PersistentFlags().StringVar(&corpusOverride, "corpus", "", "corpus file, overrides corpus_path")
	rootCmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "debug, info, warn or error, overrides log_level")

	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1, "number of sentences to print")
	historyCmd.Flags().IntVarP(&historyCount, "count", "n", 10, "number of turns to print")

	rootCmd.AddCommand(chatCmd, generateCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "munou: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings reads the config file, applies flag overrides and builds the
// process logger.
func loadSettings() (*Config, *slog.Logger, error) {
	terminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	// Used until the configured level is known.
	bootLogger := newLogger(os.Stderr, "info", terminal)

	cfg, err := LoadConfig(configPath, bootLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if corpusOverride != "" {
		cfg.CorpusPath = corpusOverride
	}
	if logLevelOverride != "" {
		cfg.LogLevel = logLevelOverride
	}
	if err = cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, newLogger(os.Stderr, cfg.LogLevel, terminal), nil
}

// newLogger logs text for people at a terminal and JSON for everything else.
func newLogger(w io.Writer, level string, terminal bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if terminal {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newRand returns a source seeded from seed, or from the runtime when seed is 0.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// newTokenizer builds the configured tokenizer together with the joiner used
// to render generated text.
func newTokenizer(cfg *Config) (markov.Tokenizer, markov.Joiner, error) {
	switch cfg.Tokenizer {
	case tokenizerRegex:
		t := markov.NewDefaultTokenizer()
		return t, t, nil
	default:
		t, err := morph.New(cfg.DictionaryPath)
		if err != nil {
			return nil, nil, err
		}
		return t, t, nil
	}
}

// buildModel trains a fresh model on the configured corpus. A missing or
// unreadable corpus is an error.
func buildModel(ctx context.Context, cfg *Config, tok markov.Tokenizer, joiner markov.Joiner, rng markov.RandSource, logger *slog.Logger) (*markov.Model, error) {
	cleaner, err := markov.CompileCleaner(cfg.CleanPattern)
	if err != nil {
		return nil, err
	}

	m, err := markov.NewModel(
		markov.WithTokens(cfg.StartToken, cfg.EndToken),
		markov.WithJoiner(joiner),
		markov.WithCleaner(cleaner),
		markov.WithRandSource(rng),
		markov.WithRenderStart(cfg.RenderStart),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	m.SetLogger(logger)

	f, err := os.Open(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	started := time.Now()
	lines, err := m.TrainReader(ctx, f, tok)
	if err != nil {
		return nil, fmt.Errorf("failed to train on %s: %w", cfg.CorpusPath, err)
	}
	logger.Info("Corpus loaded",
		slog.String("path", cfg.CorpusPath),
		slog.Int("lines", lines),
		slog.Duration("elapsed", time.Since(started)),
	)
	return m, nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	tok, joiner, err := newTokenizer(cfg)
	if err != nil {
		return err
	}
	rng := newRand(cfg.RandomSeed)
	m, err := buildModel(ctx, cfg, tok, joiner, rng, logger)
	if err != nil {
		return err
	}

	prompts := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	opts := sessionOptions(cfg, rng, logger, prompts)
	if cfg.TranscriptPath != "" {
		store, err := transcript.Open(cfg.TranscriptPath)
		if err != nil {
			return err
		}
		defer func(store *transcript.Store) {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close transcript", slog.Any("error", err))
			}
		}(store)
		store.SetLogger(logger)
		opts = append(opts, session.WithRecorder(store))
	}

	s := session.New(m, tok, cmd.InOrStdin(), cmd.OutOrStdout(), opts...)
	if err = s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// sessionOptions maps the config onto session options.
func sessionOptions(cfg *Config, rng markov.RandSource, logger *slog.Logger, prompts bool) []session.Option {
	return []session.Option{
		session.WithSpeaker(cfg.SpeakerLabel),
		session.WithPrompt(cfg.Prompt, cfg.Banner),
		session.WithPrompts(prompts),
		session.WithFilter(session.FeatureContains(cfg.SeedFeature)),
		session.WithRandSource(rng),
		session.WithGenerateOptions(markov.WithMaxLength(cfg.MaxLength)),
		session.WithLogger(logger),
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	tok, joiner, err := newTokenizer(cfg)
	if err != nil {
		return err
	}
	m, err := buildModel(cmd.Context(), cfg, tok, joiner, newRand(cfg.RandomSeed), logger)
	if err != nil {
		return err
	}
	return writeSentences(cmd.OutOrStdout(), m, generateCount, cfg.MaxLength)
}

// writeSentences writes n unseeded sentences, one per line. Sentences cut off
// at maxLength are written as they are.
func writeSentences(w io.Writer, m *markov.Model, n, maxLength int) error {
	if n <= 0 {
		return fmt.Errorf("count must be positive, got %d", n)
	}
	for range n {
		text, err := m.Generate(markov.WithMaxLength(maxLength))
		if err != nil && !errors.Is(err, markov.ErrGenerationTruncated) {
			return err
		}
		if _, err = fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	if cfg.TranscriptPath == "" {
		return errors.New("transcript_path is not set, nothing has been recorded")
	}

	store, err := transcript.Open(cfg.TranscriptPath)
	if err != nil {
		return err
	}
	defer func(store *transcript.Store) {
		_ = store.Close()
	}(store)
	store.SetLogger(logger)

	return writeHistory(cmd.Context(), cmd.OutOrStdout(), store, historyCount, cfg.SpeakerLabel)
}

// writeHistory prints the last n turns, oldest first, followed by totals.
func writeHistory(ctx context.Context, w io.Writer, store *transcript.Store, n int, speaker string) error {
	turns, err := store.Recent(ctx, n)
	if err != nil {
		return err
	}
	for _, turn := range turns {
		stamp := turn.Time.Format(time.DateTime)
		if _, err = fmt.Fprintf(w, "[%s] > %s\n[%s] %s> %s\n", stamp, turn.Input, stamp, speaker, turn.Response); err != nil {
			return err
		}
	}

	st, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d turns, %d seeded, %d fallbacks\n", st.Turns, st.Seeded, st.Fallbacks)
	return err
}
