package markov

// ModelStats holds aggregated statistics for a Model.
type ModelStats struct {
	VocabSize      int // The number of unique tokens, reserved tokens included
	Contexts       int // The number of distinct (prev2, prev1) contexts with observations
	Transitions    int // The total number of recorded observations
	StartingTokens int // The number of unique tokens that can start a sentence
}

// Stats returns a snapshot of the model's statistics.
func (m *Model) Stats() ModelStats {
	var transitions int
	for _, ids := range m.chain {
		transitions += len(ids)
	}

	starters := make(map[int]struct{})
	for _, id := range m.chain[prefix{StartTokenID, StartTokenID}] {
		starters[id] = struct{}{}
	}

	return ModelStats{
		VocabSize:      m.vocab.Len(),
		Contexts:       len(m.chain),
		Transitions:    transitions,
		StartingTokens: len(starters),
	}
}
