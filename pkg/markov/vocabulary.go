package markov

import "fmt"

// Vocabulary is an append-only, bidirectional mapping between token surface
// strings and small integer IDs. IDs are positions in the word list, assigned
// sequentially in first-seen order. The first two IDs are always the reserved
// Start-Of-Chain and End-Of-Chain tokens.
type Vocabulary struct {
	words []string
	ids   map[string]int
}

// NewVocabulary creates a Vocabulary with the start and end surfaces already
// registered as StartTokenID and EndTokenID respectively.
func NewVocabulary(start, end string) *Vocabulary {
	v := &Vocabulary{
		words: make([]string, 0, 1024),
		ids:   make(map[string]int, 1024),
	}
	v.ID(start)
	v.ID(end)
	return v
}

// ID returns the identifier for word, assigning the next free one if the word
// has never been seen. It never fails.
func (v *Vocabulary) ID(word string) int {
	if id, ok := v.ids[word]; ok {
		return id
	}
	id := len(v.words)
	v.words = append(v.words, word)
	v.ids[word] = id
	return id
}

// Lookup returns the identifier for word without registering it.
func (v *Vocabulary) Lookup(word string) (int, bool) {
	id, ok := v.ids[word]
	return id, ok
}

// Word returns the surface string for id. It returns an error wrapping
// ErrInvalidID if id was never handed out by ID.
func (v *Vocabulary) Word(id int) (string, error) {
	if id < 0 || id >= len(v.words) {
		return "", fmt.Errorf("token id %d: %w", id, ErrInvalidID)
	}
	return v.words[id], nil
}

// Len returns the number of registered words, reserved tokens included.
func (v *Vocabulary) Len() int {
	return len(v.words)
}
