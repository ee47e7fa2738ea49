// Package morph adapts the kagome morphological analyzer to the
// markov.Tokenizer interface so Japanese text can be segmented into words with
// part-of-speech features.
package morph

import (
	"fmt"
	"strings"

	"github.com/CTAG07/munou/pkg/markov"
	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// NounFeature is the IPA dictionary part-of-speech label for nouns.
const NounFeature = "名詞"

// Tokenizer is a markov.Tokenizer backed by kagome. Token features are the
// dictionary's feature fields joined with commas, e.g.
// "名詞,一般,*,*,*,*,猫,ネコ,ネコ".
type Tokenizer struct {
	t *tokenizer.Tokenizer
}

// New builds a Tokenizer. If dictPath is empty the IPA dictionary embedded in
// the binary is used; otherwise the kagome dictionary file at dictPath is
// loaded.
func New(dictPath string) (*Tokenizer, error) {
	d := ipa.Dict()
	if dictPath != "" {
		var err error
		if d, err = dict.LoadDictFile(dictPath); err != nil {
			return nil, fmt.Errorf("failed to load dictionary %q: %w", dictPath, err)
		}
	}
	t, err := tokenizer.New(d, tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}
	return &Tokenizer{t: t}, nil
}

// Tokenize segments text into morphemes.
func (t *Tokenizer) Tokenize(text string) []markov.Token {
	tokens := t.t.Tokenize(text)
	out := make([]markov.Token, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, markov.Token{
			Surface: tok.Surface,
			Feature: strings.Join(tok.Features(), ","),
		})
	}
	return out
}

// Separator implements markov.Joiner. Japanese text is written without spaces.
func (t *Tokenizer) Separator(_, _ string) string {
	return ""
}
