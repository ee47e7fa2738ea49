package morph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/munou/pkg/markov"
)

func TestTokenize(t *testing.T) {
	tok, err := New("")
	require.NoError(t, err)

	tokens := tok.Tokenize("猫が好きだ。")
	assert.Equal(t, []string{"猫", "が", "好き", "だ", "。"}, markov.Surfaces(tokens))

	require.NotEmpty(t, tokens)
	assert.True(t, strings.HasPrefix(tokens[0].Feature, NounFeature), "feature %q", tokens[0].Feature)
	assert.False(t, strings.Contains(tokens[1].Feature, NounFeature), "particle tagged as noun: %q", tokens[1].Feature)
}

func TestNewMissingDictionary(t *testing.T) {
	_, err := New(t.TempDir() + "/missing.dict")
	assert.Error(t, err)
}

func TestTrainOnMorphemes(t *testing.T) {
	tok, err := New("")
	require.NoError(t, err)

	m, err := markov.NewModel(markov.WithJoiner(tok))
	require.NoError(t, err)
	m.TrainLine("猫が好きだ。", tok)

	output, err := m.Generate()
	require.NoError(t, err)
	assert.Equal(t, "**猫が好きだ。", output)
}
