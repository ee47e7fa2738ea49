package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/CTAG07/munou/pkg/markov"
	"github.com/CTAG07/munou/pkg/session"
)

const (
	tokenizerKagome = "kagome"
	tokenizerRegex  = "regex"
)

// Config holds everything needed to train the model and run a session.
type Config struct {
	LogLevel       string `json:"log_level"`
	CorpusPath     string `json:"corpus_path"`
	DictionaryPath string `json:"dictionary_path"` // Empty uses the embedded IPA dictionary
	Tokenizer      string `json:"tokenizer"`       // "kagome" or "regex"
	CleanPattern   string `json:"clean_pattern"`   // Empty disables corpus cleaning
	StartToken     string `json:"start_token"`
	EndToken       string `json:"end_token"`
	RenderStart    bool   `json:"render_start"`
	SeedFeature    string `json:"seed_feature"`
	MaxLength      int    `json:"max_length"`  // 0 means unbounded
	RandomSeed     uint64 `json:"random_seed"` // 0 seeds from the runtime
	SpeakerLabel   string `json:"speaker_label"`
	Prompt         string `json:"prompt"`
	Banner         string `json:"banner"`
	TranscriptPath string `json:"transcript_path"` // Empty disables the transcript
}

// DefaultConfig creates a configuration with default values for Japanese text.
func DefaultConfig() *Config {
	return DefaultConfigFor(tokenizerKagome)
}

// DefaultConfigFor creates a configuration with default values suited to the
// named tokenizer. The regex tokenizer gets no cleaning, "." as the end token,
// word seeds and no rendered START surfaces. Unknown names get the kagome
// defaults.
func DefaultConfigFor(tokenizer string) *Config {
	cfg := &Config{
		LogLevel:       "info",
		CorpusPath:     "./data/corpus.txt",
		Tokenizer:      tokenizerKagome,
		CleanPattern:   markov.DefaultCleanPattern,
		StartToken:     markov.StartTokenText,
		EndToken:       markov.EndTokenText,
		RenderStart:    true,
		SeedFeature:    session.DefaultSeedFeature,
		MaxLength:      markov.DefaultMaxLength,
		SpeakerLabel:   session.DefaultSpeaker,
		Prompt:         session.DefaultPrompt,
		Banner:         session.DefaultBanner,
		TranscriptPath: "",
	}
	if tokenizer == tokenizerRegex {
		cfg.Tokenizer = tokenizerRegex
		cfg.CleanPattern = ""
		cfg.EndToken = "."
		cfg.RenderStart = false
		cfg.SeedFeature = markov.FeatureWord
	}
	return cfg
}

// LoadConfig reads the configuration from a JSON file at the given path.
// Settings missing from the file take the defaults of the tokenizer it names.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string, logger *slog.Logger) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config := DefaultConfig()
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Defaults are still usable.
				logger.Warn("Failed to write default config file", slog.String("path", path), slog.Any("error", err))
			} else {
				logger.Info("Wrote default config file", slog.String("path", path))
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var selector struct {
		Tokenizer string `json:"tokenizer"`
	}
	if err = json.Unmarshal(file, &selector); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config := DefaultConfigFor(selector.Tokenizer)
	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports the first invalid setting, including settings the chosen
// tokenizer cannot work with.
func (c *Config) Validate() error {
	switch c.Tokenizer {
	case tokenizerKagome, tokenizerRegex:
	default:
		return fmt.Errorf("unknown tokenizer %q (want %q or %q)", c.Tokenizer, tokenizerKagome, tokenizerRegex)
	}
	if c.StartToken == "" || c.EndToken == "" {
		return fmt.Errorf("start_token and end_token must not be empty")
	}
	if c.StartToken == c.EndToken {
		return fmt.Errorf("start_token and end_token must differ, both are %q", c.StartToken)
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("max_length must not be negative, got %d", c.MaxLength)
	}
	cleaner, err := markov.CompileCleaner(c.CleanPattern)
	if err != nil {
		return fmt.Errorf("invalid clean_pattern: %w", err)
	}
	if c.Tokenizer == tokenizerRegex {
		return c.validateRegex(cleaner)
	}
	return nil
}

// validateRegex checks that the regex tokenizer can produce sentences that
// end and replies that can be seeded.
func (c *Config) validateRegex(cleaner *markov.Cleaner) error {
	tok := markov.NewDefaultTokenizer()

	if got := markov.Surfaces(tok.Tokenize(c.EndToken)); len(got) != 1 || got[0] != c.EndToken {
		return fmt.Errorf("end_token %q is never produced by the regex tokenizer", c.EndToken)
	}
	if got := tok.Tokenize(cleaner.Clean("two words")); len(got) != 2 {
		return fmt.Errorf("clean_pattern %q merges words for the regex tokenizer", c.CleanPattern)
	}
	if !strings.Contains(markov.FeatureWord, c.SeedFeature) && !strings.Contains(markov.FeaturePunct, c.SeedFeature) {
		return fmt.Errorf("seed_feature %q matches no regex tokenizer feature (%q or %q)", c.SeedFeature, markov.FeatureWord, markov.FeaturePunct)
	}
	return nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
