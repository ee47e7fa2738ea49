package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
)

const (
	// StartTokenID is the reserved ID for the Start-Of-Chain token.
	StartTokenID = 0
	// EndTokenID is the reserved ID for the End-Of-Chain token.
	EndTokenID = 1
	// StartTokenText is the default surface of the Start-Of-Chain token.
	StartTokenText = "*"
	// EndTokenText is the default surface of the End-Of-Chain token, a
	// Japanese full stop.
	EndTokenText = "。"
	// MarkerText is an annotation marker that can leak into generated text
	// from the training corpus. It is stripped from every generated string.
	MarkerText = "★"
)

var (
	// ErrInvalidID is returned when a token ID was never assigned by the vocabulary.
	ErrInvalidID = errors.New("invalid token id")
	// ErrGenerationTruncated is returned alongside the partial text when a
	// generation reaches its maximum length before producing an END token.
	ErrGenerationTruncated = errors.New("generation truncated")
)

// RandSource is the source of randomness used to pick among candidates.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	// IntN returns a pseudo-random number in [0, n). n is always > 0.
	IntN(n int) int
}

// prefix is the two most recent token IDs, oldest first.
type prefix [2]int

// Model is an in-memory, second-order Markov chain over an interned
// vocabulary. It owns the vocabulary, the transition table, and the random
// source used for generation.
//
// A Model is not safe for concurrent use. Training and generation are meant to
// run sequentially from a single goroutine.
type Model struct {
	vocab       *Vocabulary
	chain       map[prefix][]int
	rng         RandSource
	joiner      Joiner
	cleaner     *Cleaner
	renderStart bool
	logger      *slog.Logger
}

// ModelOption configures a Model.
type ModelOption func(*modelOptions)

type modelOptions struct {
	startText   string
	endText     string
	rng         RandSource
	joiner      Joiner
	cleaner     *Cleaner
	renderStart bool
}

// WithTokens sets the surfaces registered for the Start-Of-Chain and
// End-Of-Chain tokens.
// Default: "*" and "。"
func WithTokens(start, end string) ModelOption {
	return func(o *modelOptions) {
		o.startText = start
		o.endText = end
	}
}

// WithRandSource sets the random source used during generation.
// Default: an unseeded *rand.Rand.
func WithRandSource(r RandSource) ModelOption {
	return func(o *modelOptions) { o.rng = r }
}

// WithJoiner sets how surfaces are joined when building generated text.
// Default: plain concatenation.
func WithJoiner(j Joiner) ModelOption {
	return func(o *modelOptions) { o.joiner = j }
}

// WithCleaner sets the cleaner applied to lines by TrainLine and TrainReader.
// A nil cleaner disables cleaning.
// Default: NewCleaner(DefaultCleanPattern)
func WithCleaner(c *Cleaner) ModelOption {
	return func(o *modelOptions) { o.cleaner = c }
}

// WithRenderStart controls whether the START surface is written into generated
// text. With it enabled, Generate on a model trained with the default tokens
// returns "**" followed by the sentence.
// Default: true
func WithRenderStart(render bool) ModelOption {
	return func(o *modelOptions) { o.renderStart = render }
}

// NewModel creates an empty Model with the reserved tokens registered.
// It returns an error if the reserved surfaces are empty or identical.
func NewModel(opts ...ModelOption) (*Model, error) {
	options := &modelOptions{
		startText:   StartTokenText,
		endText:     EndTokenText,
		joiner:      concatJoiner{},
		cleaner:     defaultCleaner,
		renderStart: true,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.startText == "" || options.endText == "" {
		return nil, errors.New("reserved token surfaces must not be empty")
	}
	if options.startText == options.endText {
		return nil, fmt.Errorf("start and end tokens share the surface %q", options.startText)
	}
	if options.rng == nil {
		options.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if options.joiner == nil {
		options.joiner = concatJoiner{}
	}

	return &Model{
		vocab:       NewVocabulary(options.startText, options.endText),
		chain:       make(map[prefix][]int),
		rng:         options.rng,
		joiner:      options.joiner,
		cleaner:     options.cleaner,
		renderStart: options.renderStart,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Vocabulary returns the model's vocabulary. Callers may register new words
// through it; they will simply have no recorded continuations.
func (m *Model) Vocabulary() *Vocabulary {
	return m.vocab
}

// Candidates returns a copy of the next-token observations recorded for the
// context (w1, w2), in training order. Repeated IDs encode frequency.
func (m *Model) Candidates(w1, w2 int) []int {
	ids := m.chain[prefix{w1, w2}]
	if len(ids) == 0 {
		return nil
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}
