package markov

import (
	"slices"
	"testing"
)

func TestWalk(t *testing.T) {
	m := setupTestModel(t, nil)
	m.Train([]string{"a", "b", "a", "b"}) // cycles forever
	m.Train([]string{"c", "。"})
	a, b, c := id(t, m, "a"), id(t, m, "b"), id(t, m, "c")

	testCases := []struct {
		name      string
		w1, w2    int
		maxLength int
		expected  []int
	}{
		{name: "bounded cycle", w1: a, w2: b, maxLength: 4, expected: []int{a, b, a, b}},
		{name: "ends at END", w1: StartTokenID, w2: c, maxLength: 10, expected: []int{EndTokenID}},
		{name: "unbounded ends at END", w1: StartTokenID, w2: c, maxLength: 0, expected: []int{EndTokenID}},
		{name: "unknown context", w1: b, w2: c, maxLength: 10, expected: []int{EndTokenID}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Collect(m.Walk(tc.w1, tc.w2, tc.maxLength))
			if !slices.Equal(got, tc.expected) {
				t.Errorf("Walk() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestWalkStopsWhenConsumerBreaks(t *testing.T) {
	m := setupTestModel(t, nil)
	m.Train([]string{"a", "b", "a", "b"})

	var n int
	for range m.Walk(StartTokenID, StartTokenID, 0) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to consume 3 tokens, got %d", n)
	}
}
