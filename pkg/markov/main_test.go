package markov

import (
	"context"
	"strings"
	"testing"
)

// scriptedRand returns its script in order, wrapping around, reduced modulo n.
type scriptedRand struct {
	script []int
	calls  int
}

func (s *scriptedRand) IntN(n int) int {
	if len(s.script) == 0 {
		return 0
	}
	v := s.script[s.calls%len(s.script)]
	s.calls++
	return v % n
}

// runeTokenizer yields one token per rune, which is enough to exercise the
// training pipeline on Japanese text without a dictionary.
type runeTokenizer struct{}

func (runeTokenizer) Tokenize(text string) []Token {
	tokens := make([]Token, 0, len(text))
	for _, r := range text {
		tokens = append(tokens, Token{Surface: string(r)})
	}
	return tokens
}

// setupTestModel creates a Model with a scripted random source.
func setupTestModel(t testing.TB, script []int, opts ...ModelOption) *Model {
	t.Helper()
	opts = append([]ModelOption{WithRandSource(&scriptedRand{script: script})}, opts...)
	m, err := NewModel(opts...)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

// setupTestModelWithTraining is a convenience helper that trains an English
// model on a two-sentence corpus with the default tokenizer. START surfaces are
// not rendered so the output reads as plain English.
func setupTestModelWithTraining(t testing.TB, script []int) *Model {
	t.Helper()
	tok := NewDefaultTokenizer()
	m := setupTestModel(t, script, WithTokens(StartTokenText, "."), WithJoiner(tok), WithCleaner(nil), WithRenderStart(false))
	trainingData := "one fish two fish.\nred fish blue fish.\n"
	if _, err := m.TrainReader(context.Background(), strings.NewReader(trainingData), tok); err != nil {
		t.Fatalf("setup: TrainReader() failed: %v", err)
	}
	return m
}

// id looks up a word that must already be in the model.
func id(t testing.TB, m *Model, word string) int {
	t.Helper()
	i, ok := m.Vocabulary().Lookup(word)
	if !ok {
		t.Fatalf("word %q not in vocabulary", word)
	}
	return i
}

// words maps IDs back to surfaces for readable comparisons.
func words(t testing.TB, m *Model, ids []int) []string {
	t.Helper()
	out := make([]string, 0, len(ids))
	for _, i := range ids {
		w, err := m.Vocabulary().Word(i)
		if err != nil {
			t.Fatalf("Word(%d) error = %v", i, err)
		}
		out = append(out, w)
	}
	return out
}

// benchmarkCorpus builds a repetitive Japanese corpus for benchmarks.
func benchmarkCorpus() string {
	var sb strings.Builder
	sentences := []string{
		"吾輩は猫である。名前はまだ無い。",
		"どこで生れたかとんと見当がつかぬ。",
		"何でも薄暗いじめじめした所でニャーニャー泣いていた事だけは記憶している。",
	}
	for i := 0; i < 200; i++ {
		sb.WriteString(sentences[i%len(sentences)])
		sb.WriteString("\n")
	}
	return sb.String()
}
