package markov

import "iter"

// Walk returns an iterator over a random walk through the chain starting from
// the context (w1, w2). Each step samples uniformly from the observations
// recorded for the current context, which weights candidates by their training
// frequency. A context with no observations yields EndTokenID.
//
// The sequence ends after EndTokenID has been yielded, or after maxLength IDs
// when maxLength > 0. With maxLength <= 0 the walk is unbounded and only ends
// at an END token.
func (m *Model) Walk(w1, w2, maxLength int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for n := 0; maxLength <= 0 || n < maxLength; n++ {
			next := m.nextID(w1, w2)
			if !yield(next) || next == EndTokenID {
				return
			}
			w1, w2 = w2, next
		}
	}
}

// nextID picks the token following (w1, w2).
func (m *Model) nextID(w1, w2 int) int {
	ids := m.chain[prefix{w1, w2}]
	if len(ids) == 0 {
		return EndTokenID
	}
	return ids[m.rng.IntN(len(ids))]
}
