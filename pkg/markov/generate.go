package markov

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxLength is the default bound on the number of tokens sampled by a
// single generation.
const DefaultMaxLength = 200

// generateOptions Is used by the generate functions to configure default options.
type generateOptions struct {
	maxLength int
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in generation functions like Generate and GenerateText.
type GenerateOption func(*generateOptions)

// WithMaxLength sets the maximum number of tokens to sample after the starting
// context. A value of 0 or less removes the bound, so generation only stops at
// an END token; on a dense corpus that walk may run for a very long time.
// Default: DefaultMaxLength
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

// Generate produces a sentence starting from the (START, START) context.
func (m *Model) Generate(opts ...GenerateOption) (string, error) {
	return m.GenerateText(StartTokenID, StartTokenID, opts...)
}

// GenerateText produces a sentence that begins with the surfaces of w1 and w2
// and continues with a random walk over the chain until an END token is
// sampled. START surfaces are rendered like any other word unless the model
// was built with WithRenderStart(false). Marker characters (MarkerText) are
// stripped from the result.
//
// If either ID was never assigned, an error wrapping ErrInvalidID is returned.
// If the walk hits the maximum length first, the partial text is returned
// together with an error wrapping ErrGenerationTruncated.
func (m *Model) GenerateText(w1, w2 int, opts ...GenerateOption) (string, error) {
	options := &generateOptions{
		maxLength: DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(options)
	}

	b := textBuilder{joiner: m.joiner}
	for _, id := range [2]int{w1, w2} {
		word, err := m.vocab.Word(id)
		if err != nil {
			return "", fmt.Errorf("invalid starting context (%d, %d): %w", w1, w2, err)
		}
		if m.renderStart || id != StartTokenID {
			b.add(word)
		}
	}

	last := StartTokenID
	generated := 0
	for id := range m.Walk(w1, w2, options.maxLength) {
		word, err := m.vocab.Word(id)
		if err != nil {
			return "", fmt.Errorf("chain references unknown token: %w", err)
		}
		if m.renderStart || id != StartTokenID {
			b.add(word)
		}
		last = id
		generated++
	}

	text := strings.ReplaceAll(b.String(), MarkerText, "")

	if last != EndTokenID {
		m.logger.Debug("Generation terminated by reaching maxLength",
			slog.Int("max_length", options.maxLength),
			slog.Int("generated_length", generated),
		)
		return text, fmt.Errorf("stopped after %d tokens: %w", generated, ErrGenerationTruncated)
	}

	m.logger.Debug("Generation terminated by END token",
		slog.Int("start_w1", w1),
		slog.Int("start_w2", w2),
		slog.Int("generated_length", generated),
	)
	return text, nil
}

// textBuilder joins surfaces through a Joiner.
type textBuilder struct {
	sb     strings.Builder
	joiner Joiner
	prev   string
}

func (b *textBuilder) add(word string) {
	if b.sb.Len() > 0 {
		b.sb.WriteString(b.joiner.Separator(b.prev, word))
	}
	b.sb.WriteString(word)
	b.prev = word
}

func (b *textBuilder) String() string {
	return b.sb.String()
}
