package markov

import (
	"regexp"
)

const (
	// FeatureWord is the Feature DefaultTokenizer assigns to word tokens.
	FeatureWord = "word"
	// FeaturePunct is the Feature DefaultTokenizer assigns to punctuation.
	FeaturePunct = "punct"
)

// DefaultTokenizer is a regular-expression tokenizer for space-delimited
// languages. It splits text into words and punctuation and labels each token
// with FeatureWord or FeaturePunct. It also implements Joiner so that
// generated text gets spaces between words but not before punctuation.
// Its behavior can be customized with functional options.
type DefaultTokenizer struct {
	separator         string
	separatorRegex    *regexp.Regexp
	punctRegex        *regexp.Regexp
	separatorExcRegex *regexp.Regexp
}

// Option Is a function that configures a DefaultTokenizer.
type Option func(*DefaultTokenizer)

// WithSeparator Sets the string used for joining tokens during generation.
// Default: " "
func WithSeparator(sep string) Option {
	return func(t *DefaultTokenizer) {
		t.separator = sep
	}
}

// WithSeparatorRegex sets the regex string to use when splitting input text.
// Default: `[\w']+|[.,!?;]`
func WithSeparatorRegex(splitRegex string) Option {
	return func(t *DefaultTokenizer) {
		t.separatorRegex = regexp.MustCompile(splitRegex)
	}
}

// WithPunctRegex sets the regex string to use when deciding whether a token is punctuation.
// Default: `^[.,!?;]$`
func WithPunctRegex(punctRegex string) Option {
	return func(t *DefaultTokenizer) {
		t.punctRegex = regexp.MustCompile(punctRegex)
	}
}

// WithSeparatorExcRegex sets the regex string to use when deciding whether to add a separator before a token.
// Default: `^[.,!?;]`
func WithSeparatorExcRegex(splitExcRegex string) Option {
	return func(t *DefaultTokenizer) {
		t.separatorExcRegex = regexp.MustCompile(splitExcRegex)
	}
}

// NewDefaultTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more Option functions.
func NewDefaultTokenizer(opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{
		separator: " ",
		// This regex finds sequences of word characters (letters, numbers, underscore)
		// OR single instances of common punctuation.
		separatorRegex: regexp.MustCompile(`[\w']+|[.,!?;]`),
		punctRegex:     regexp.MustCompile(`^[.,!?;]$`),
		// This regex checks for characters that don't get a separator put before them.
		separatorExcRegex: regexp.MustCompile(`^[.,!?;]`),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Tokenize splits text with the separator regex.
func (t *DefaultTokenizer) Tokenize(text string) []Token {
	words := t.separatorRegex.FindAllString(text, -1)
	tokens := make([]Token, 0, len(words))
	for _, word := range words {
		feature := FeatureWord
		if t.punctRegex.MatchString(word) {
			feature = FeaturePunct
		}
		tokens = append(tokens, Token{Surface: word, Feature: feature})
	}
	return tokens
}

// Separator Returns the configured separator string, or nothing before punctuation.
func (t *DefaultTokenizer) Separator(prev, next string) string {
	if prev == "" || t.separatorExcRegex.MatchString(next) {
		return ""
	}
	return t.separator
}
