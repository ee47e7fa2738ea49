package markov

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
)

// maxLineLength bounds a single corpus line read by TrainReader.
const maxLineLength = 1 << 20

// Train records the transitions of one tokenized line. The context window
// starts at (START, START) and is reset to it after every END token, so a line
// holding several sentences yields independent sentence chains. A line that
// never reaches END records no transition into END.
//
// Training the same words twice doubles the weight of their transitions.
func (m *Model) Train(words []string) {
	w1, w2 := StartTokenID, StartTokenID
	for _, word := range words {
		id := m.vocab.ID(word)
		key := prefix{w1, w2}
		m.chain[key] = append(m.chain[key], id)

		w1, w2 = w2, id
		if id == EndTokenID {
			w1, w2 = StartTokenID, StartTokenID
		}
	}
}

// TrainLine cleans line with the model's Cleaner, tokenizes it, and trains on
// the resulting surfaces.
func (m *Model) TrainLine(line string, tok Tokenizer) {
	m.Train(Surfaces(tok.Tokenize(m.cleaner.Clean(line))))
}

// TrainReader trains the model on a newline-delimited corpus, one TrainLine
// call per line. It returns the number of lines consumed. A read error or a
// cancelled context aborts training and is returned; the model is then only
// partly trained and should be discarded.
func (m *Model) TrainReader(ctx context.Context, r io.Reader, tok Tokenizer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var lines int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return lines, err
		}
		m.TrainLine(scanner.Text(), tok)
		lines++
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("corpus read error after %d lines: %w", lines, err)
	}

	stats := m.Stats()
	m.logger.InfoContext(ctx, "Training completed",
		slog.Int("lines_processed", lines),
		slog.Int("vocab_size", stats.VocabSize),
		slog.Int("contexts", stats.Contexts),
		slog.Int("transitions", stats.Transitions),
	)
	return lines, nil
}
