// Package transcript keeps a SQLite log of conversation turns. It records what
// was said; the Markov model itself is never persisted.
package transcript

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/CTAG07/munou/pkg/session"
)

// SetupSchema creates the transcript table in db. It is idempotent and safe
// to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaTurns = `
CREATE TABLE IF NOT EXISTS munou_turns (
    turn_id INTEGER PRIMARY KEY,
    created_at INTEGER NOT NULL,
    input TEXT NOT NULL,
    seed TEXT NOT NULL DEFAULT '',
    response TEXT NOT NULL,
    fallback INTEGER NOT NULL DEFAULT 0
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaTurns); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Stats holds aggregate counts over the whole transcript.
type Stats struct {
	Turns     int // The number of recorded turns
	Seeded    int // Turns whose input contained a seed word
	Fallbacks int // Seeded turns whose reply was replaced by an unseeded one
}

// Store records session turns in a SQLite database. It implements
// session.Recorder.
type Store struct {
	db         *sql.DB
	ownsDB     bool
	stmtInsert *sql.Stmt
	stmtRecent *sql.Stmt
	stmtStats  *sql.Stmt
	logger     *slog.Logger
}

// Open opens (creating if needed) the SQLite database at dataSource, sets up
// the schema and returns a Store that closes the database on Close.
func Open(dataSource string) (*Store, error) {
	db, err := initDB(dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript database: %w", err)
	}
	if err = SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewStore prepares the statements used by a Store on an existing database
// whose schema has already been set up with SetupSchema.
func NewStore(db *sql.DB) (*Store, error) {
	stmtInsert, err := db.Prepare(`INSERT INTO munou_turns (created_at, input, seed, response, fallback) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtRecent, err := db.Prepare(`SELECT created_at, input, seed, response, fallback FROM munou_turns ORDER BY turn_id DESC LIMIT ?;`)
	if err != nil {
		_ = stmtInsert.Close()
		return nil, err
	}

	stmtStats, err := db.Prepare(`SELECT COUNT(*), COUNT(NULLIF(seed, '')), coalesce(SUM(fallback), 0) FROM munou_turns;`)
	if err != nil {
		_ = stmtInsert.Close()
		_ = stmtRecent.Close()
		return nil, err
	}

	return &Store{
		db:         db,
		stmtInsert: stmtInsert,
		stmtRecent: stmtRecent,
		stmtStats:  stmtStats,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Close releases the prepared statements, and the database if the Store was
// created by Open.
func (s *Store) Close() error {
	_ = s.stmtInsert.Close()
	_ = s.stmtRecent.Close()
	_ = s.stmtStats.Close()
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// Record appends a turn to the transcript.
func (s *Store) Record(ctx context.Context, turn session.Turn) error {
	created := turn.Time
	if created.IsZero() {
		created = time.Now()
	}
	fallback := 0
	if turn.Fallback {
		fallback = 1
	}
	if _, err := s.stmtInsert.ExecContext(ctx, created.UnixMilli(), turn.Input, turn.Seed, turn.Response, fallback); err != nil {
		return fmt.Errorf("could not record turn: %w", err)
	}
	s.logger.DebugContext(ctx, "Turn recorded",
		slog.String("seed", turn.Seed),
		slog.Bool("fallback", turn.Fallback),
	)
	return nil
}

// Recent returns up to n of the most recent turns, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]session.Turn, error) {
	if n <= 0 {
		return nil, errors.New("turn count must be positive")
	}
	rows, err := s.stmtRecent.QueryContext(ctx, n)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var turns []session.Turn
	for rows.Next() {
		var (
			created  int64
			fallback int
			turn     session.Turn
		)
		if err = rows.Scan(&created, &turn.Input, &turn.Seed, &turn.Response, &fallback); err != nil {
			return nil, err
		}
		turn.Time = time.UnixMilli(created)
		turn.Fallback = fallback != 0
		turns = append(turns, turn)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	// Rows come newest first.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Stats returns aggregate counts over the transcript.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.stmtStats.QueryRowContext(ctx).Scan(&st.Turns, &st.Seeded, &st.Fallbacks); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// withParam appends a query parameter to a SQLite data source unless the
// caller already passed parameters of their own.
func withParam(dataSource, param string) string {
	if strings.Contains(dataSource, "?") {
		return dataSource
	}
	return dataSource + "?" + param
}
