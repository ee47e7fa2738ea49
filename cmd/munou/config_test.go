package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/munou/pkg/markov"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadConfig(path, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var written Config
	require.NoError(t, json.Unmarshal(data, &written))
	assert.Equal(t, *DefaultConfig(), written)
	assert.Equal(t, markov.DefaultCleanPattern, written.CleanPattern)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tokenizer":"regex","end_token":".","clean_pattern":"","max_length":0}`), 0o644))

	cfg, err := LoadConfig(path, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, tokenizerRegex, cfg.Tokenizer)
	assert.Equal(t, ".", cfg.EndToken)
	assert.Equal(t, "", cfg.CleanPattern)
	assert.Equal(t, 0, cfg.MaxLength)
	// Untouched fields keep their defaults.
	assert.Equal(t, markov.StartTokenText, cfg.StartToken)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: `{"tokenizer":`},
		{name: "unknown tokenizer", content: `{"tokenizer":"mecab"}`},
		{name: "empty end token", content: `{"end_token":""}`},
		{name: "shared surfaces", content: `{"start_token":"。"}`},
		{name: "negative max length", content: `{"max_length":-1}`},
		{name: "invalid clean pattern", content: `{"clean_pattern":"("}`},
		{name: "regex with full stop end token", content: `{"tokenizer":"regex","end_token":"。"}`},
		{name: "regex with whitespace cleaning", content: `{"tokenizer":"regex","clean_pattern":"\\s"}`},
		{name: "regex with noun seeds", content: `{"tokenizer":"regex","seed_feature":"名詞"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := LoadConfig(path, discardLogger)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigRegexDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tokenizer":"regex","speaker_label":"bot"}`), 0o644))

	cfg, err := LoadConfig(path, discardLogger)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.CleanPattern)
	assert.Equal(t, ".", cfg.EndToken)
	assert.Equal(t, markov.FeatureWord, cfg.SeedFeature)
	assert.False(t, cfg.RenderStart)
	assert.Equal(t, "bot", cfg.SpeakerLabel)
}

func TestValidateRejectsKagomeDefaultsForRegex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tokenizer = tokenizerRegex
	assert.Error(t, cfg.Validate())

	assert.NoError(t, DefaultConfigFor(tokenizerRegex).Validate())
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigLogsDefaultFile(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", true)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"), logger)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wrote default config file")

	buf.Reset()
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing", "config.json"), logger)
	require.NoError(t, err, "defaults are usable even when they cannot be written")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "Failed to write default config file")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
