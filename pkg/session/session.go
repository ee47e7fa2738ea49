// Package session runs the interactive conversation loop around a trained
// markov.Model: it reads a line, picks a noun from it as a seed, generates a
// reply and writes it back, until the user submits an empty line.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/CTAG07/munou/pkg/markov"
)

// State is the position of a Session in its conversation loop.
type State int

const (
	// StateWaiting means the session is waiting for the next line of input.
	StateWaiting State = iota
	// StateTerminated means the session has ended and Run has returned.
	StateTerminated
)

const (
	// DefaultSpeaker prefixes every reply.
	DefaultSpeaker = "吾輩"
	// DefaultPrompt is written before every read.
	DefaultPrompt = ">>> 何か話しかけてください。"
	// DefaultBanner is written once before the loop starts.
	DefaultBanner = ">>> 終了するには単にEnterキーを押してください。"
	// DefaultSeedFeature selects nouns from IPA dictionary features.
	DefaultSeedFeature = "名詞"
	// minExtraRunes is how much longer than its seed a seeded reply must be
	// to be kept.
	minExtraRunes = 4
)

// TokenFilter reports whether a token can seed a reply.
type TokenFilter func(markov.Token) bool

// FeatureContains returns a TokenFilter that accepts tokens whose Feature
// contains sub.
func FeatureContains(sub string) TokenFilter {
	return func(t markov.Token) bool {
		return strings.Contains(t.Feature, sub)
	}
}

// Turn is one exchange of the conversation.
type Turn struct {
	Time     time.Time
	Input    string
	Seed     string // The word the reply was seeded with, empty if none
	Response string
	Fallback bool // Whether the seeded reply was replaced by an unseeded one
}

// Recorder receives every completed turn.
type Recorder interface {
	Record(ctx context.Context, turn Turn) error
}

// Session drives a conversation between a reader and a writer.
// A Session is not safe for concurrent use and cannot be reused after Run
// returns.
type Session struct {
	model    *markov.Model
	tok      markov.Tokenizer
	in       *bufio.Reader
	out      io.Writer
	filter   TokenFilter
	rng      markov.RandSource
	recorder Recorder
	genOpts  []markov.GenerateOption
	speaker  string
	prompt   string
	banner   string
	prompts  bool
	state    State
	turns    int
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithSpeaker sets the label written before every reply.
// Default: DefaultSpeaker
func WithSpeaker(label string) Option {
	return func(s *Session) { s.speaker = label }
}

// WithPrompt sets the prompt and the banner.
// Default: DefaultPrompt and DefaultBanner
func WithPrompt(prompt, banner string) Option {
	return func(s *Session) {
		s.prompt = prompt
		s.banner = banner
	}
}

// WithPrompts controls whether the banner and prompts are written at all.
// Default: true
func WithPrompts(show bool) Option {
	return func(s *Session) { s.prompts = show }
}

// WithFilter sets the predicate selecting seed candidates.
// Default: FeatureContains(DefaultSeedFeature)
func WithFilter(f TokenFilter) Option {
	return func(s *Session) {
		if f != nil {
			s.filter = f
		}
	}
}

// WithRandSource sets the random source used to pick a seed among candidates.
func WithRandSource(r markov.RandSource) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithRecorder sets a Recorder that receives every turn.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithGenerateOptions sets options passed to every generation.
func WithGenerateOptions(opts ...markov.GenerateOption) Option {
	return func(s *Session) { s.genOpts = opts }
}

// WithLogger sets the logger. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Session that reads user lines from in and writes replies to
// out. The tokenizer is used to analyze user input only.
func New(model *markov.Model, tok markov.Tokenizer, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		model:   model,
		tok:     tok,
		in:      bufio.NewReader(in),
		out:     out,
		filter:  FeatureContains(DefaultSeedFeature),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		speaker: DefaultSpeaker,
		prompt:  DefaultPrompt,
		banner:  DefaultBanner,
		prompts: true,
		state:   StateWaiting,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state of the session.
func (s *Session) State() State {
	return s.state
}

// Turns returns the number of replies written so far. The greeting written by
// Run before the loop is not counted.
func (s *Session) Turns() int {
	return s.turns
}

// Run writes one unseeded sentence as a greeting and then answers lines until
// it reads an empty line or reaches the end of input, in which case it returns
// nil. Read and write failures are returned. The context is checked between
// turns; a blocked read is not interrupted.
func (s *Session) Run(ctx context.Context) error {
	if s.state == StateTerminated {
		return errors.New("session already terminated")
	}
	defer func() { s.state = StateTerminated }()

	greeting, err := s.generate(markov.StartTokenID)
	if err != nil {
		return err
	}
	if err = s.writeLine(greeting); err != nil {
		return err
	}
	if s.prompts && s.banner != "" {
		if err = s.writeLine(s.banner); err != nil {
			return err
		}
	}

	for {
		if err = ctx.Err(); err != nil {
			return err
		}
		if s.prompts && s.prompt != "" {
			if err = s.writeLine(s.prompt); err != nil {
				return err
			}
		}

		line, readErr := s.in.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read input: %w", readErr)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			s.logger.InfoContext(ctx, "Session ended", slog.Int("turns", s.turns))
			return nil
		}

		turn, err := s.Respond(ctx, input)
		if err != nil {
			return err
		}
		if err = s.writeLine(s.speaker + "> " + turn.Response); err != nil {
			return err
		}
		s.turns++

		if readErr != nil { // EOF after a final unterminated line
			s.logger.InfoContext(ctx, "Session ended at end of input", slog.Int("turns", s.turns))
			return nil
		}
	}
}

// Respond produces the reply to one line of input. If the input contains seed
// candidates, one is picked at random and the reply starts with it; a seeded
// reply that is not at least a few characters longer than its seed is replaced
// by an unseeded one. The turn is handed to the Recorder, if any.
func (s *Session) Respond(ctx context.Context, input string) (Turn, error) {
	turn := Turn{Time: time.Now(), Input: input}

	candidates := s.Seeds(input)
	if len(candidates) == 0 {
		response, err := s.generate(markov.StartTokenID)
		if err != nil {
			return turn, err
		}
		turn.Response = response
	} else {
		turn.Seed = candidates[s.rng.IntN(len(candidates))]
		response, err := s.generate(s.model.Vocabulary().ID(turn.Seed))
		if err != nil {
			return turn, err
		}

		if utf8.RuneCountInString(response) < utf8.RuneCountInString(turn.Seed)+minExtraRunes {
			s.logger.DebugContext(ctx, "Seeded reply too short, falling back",
				slog.String("seed", turn.Seed),
				slog.String("reply", response),
			)
			if response, err = s.generate(markov.StartTokenID); err != nil {
				return turn, err
			}
			turn.Fallback = true
		}
		turn.Response = response
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, turn); err != nil {
			s.logger.WarnContext(ctx, "Failed to record turn", slog.Any("error", err))
		}
	}
	return turn, nil
}

// Seeds returns the surfaces of the tokens in input accepted by the filter,
// in order, duplicates included.
func (s *Session) Seeds(input string) []string {
	var seeds []string
	for _, t := range s.tok.Tokenize(input) {
		if t.Surface == "" || !s.filter(t) {
			continue
		}
		seeds = append(seeds, t.Surface)
	}
	return seeds
}

// generate continues from (START, seed). A truncated generation is accepted.
func (s *Session) generate(seed int) (string, error) {
	text, err := s.model.GenerateText(markov.StartTokenID, seed, s.genOpts...)
	if errors.Is(err, markov.ErrGenerationTruncated) {
		s.logger.Debug("Accepting truncated generation", slog.Int("seed_id", seed), slog.Any("error", err))
		return text, nil
	}
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return text, nil
}

func (s *Session) writeLine(line string) error {
	if _, err := io.WriteString(s.out, line+"\n"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
