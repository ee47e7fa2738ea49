package markov

// Token represents a single tokenized unit of text. Feature carries the
// tokenizer's classification of the token (for a morphological analyzer, its
// part-of-speech fields joined by commas).
type Token struct {
	Surface string
	Feature string
}

// Tokenizer is an interface that defines the contract for splitting input text
// into tokens. This allows the core model logic to be independent of the
// specific segmentation strategy.
type Tokenizer interface {
	// Tokenize segments text into tokens, in order. Each call starts from a
	// fresh state.
	Tokenize(text string) []Token
}

// Joiner decides what goes between two surfaces when building generated text.
type Joiner interface {
	// Separator returns the string placed between the previous and the
	// current surface.
	Separator(prev, current string) string
}

// concatJoiner joins surfaces with nothing in between, which is what
// unsegmented scripts such as Japanese want.
type concatJoiner struct{}

func (concatJoiner) Separator(_, _ string) string { return "" }

// Surfaces returns the surface strings of tokens, dropping empty ones.
func Surfaces(tokens []Token) []string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Surface == "" {
			continue
		}
		words = append(words, t.Surface)
	}
	return words
}
