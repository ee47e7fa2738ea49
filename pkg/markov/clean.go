package markov

import "regexp"

// DefaultCleanPattern removes ruby readings (《…》), editorial notes (［…］),
// ruby base markers (｜), whitespace including the ideographic space, hyphens,
// and Japanese quotation brackets. It suits Aozora Bunko style corpora.
const DefaultCleanPattern = `《.*?》|［.*?］|[｜\s\x{3000}\-]|[「」『』]`

var defaultCleaner = NewCleaner(DefaultCleanPattern)

// Cleaner strips everything matching a pattern from training lines before
// they are tokenized.
type Cleaner struct {
	re *regexp.Regexp
}

// NewCleaner compiles pattern into a Cleaner. It panics if pattern is not a
// valid regular expression; use CompileCleaner for untrusted patterns.
func NewCleaner(pattern string) *Cleaner {
	return &Cleaner{re: regexp.MustCompile(pattern)}
}

// CompileCleaner compiles pattern into a Cleaner. An empty pattern yields a
// nil Cleaner, which leaves text untouched.
func CompileCleaner(pattern string) (*Cleaner, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Cleaner{re: re}, nil
}

// Clean returns text with every match removed. A nil Cleaner returns text as is.
func (c *Cleaner) Clean(text string) string {
	if c == nil {
		return text
	}
	return c.re.ReplaceAllString(text, "")
}
