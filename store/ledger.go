// Package store keeps a SQLite ledger of training runs so the best weights
// found so far survive restarts.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"time"

	"gomoku/genome"
	"gomoku/metrics"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

var ErrEmpty = errors.New("ledger has no recorded candidates")

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts REAL NOT NULL,
	label TEXT NOT NULL,
	start_weights TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS candidates(
	run_id INTEGER NOT NULL REFERENCES runs(id),
	generation INTEGER NOT NULL,
	rank INTEGER NOT NULL,
	fitness REAL NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	draws INTEGER NOT NULL,
	weights TEXT NOT NULL,
	PRIMARY KEY(run_id, generation, rank)
);
CREATE INDEX IF NOT EXISTS candidates_fitness ON candidates(fitness DESC);
`

type Ledger struct {
	db *sql.DB
}

func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ledger %s", path)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create ledger schema")
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Run is one training run in the ledger.
type Run struct {
	ledger *Ledger
	ID     int64
}

func (l *Ledger) StartRun(ctx context.Context, label string, start genome.Weights) (*Run, error) {
	res, err := l.db.ExecContext(ctx,
		"INSERT INTO runs(ts, label, start_weights) VALUES(?,?,?)",
		float64(time.Now().UnixMilli())/1000.0, label, encode(start))
	if err != nil {
		return nil, errors.Wrap(err, "failed to start run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read run id")
	}
	return &Run{ledger: l, ID: id}, nil
}

// RecordGeneration stores a ranked generation in one transaction.
func (r *Run) RecordGeneration(ctx context.Context, generation int, records []metrics.GenerationRecord) error {
	tx, err := r.ledger.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO candidates(run_id, generation, rank, fitness, wins, losses, draws, weights) VALUES(?,?,?,?,?,?,?,?)")
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, r.ID, generation, rec.Rank, rec.Fitness, rec.Wins, rec.Losses, rec.Draws, encode(rec.Weights))
		if err != nil {
			return errors.Wrapf(err, "failed to insert rank %d", rec.Rank)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit generation")
}

// BestWeights returns the fittest candidate ever recorded. Ties go to the
// earliest run, generation and rank.
func (l *Ledger) BestWeights(ctx context.Context) (genome.Weights, float64, error) {
	var text string
	var fitness float64
	err := l.db.QueryRowContext(ctx,
		"SELECT weights, fitness FROM candidates ORDER BY fitness DESC, run_id, generation, rank LIMIT 1").
		Scan(&text, &fitness)
	if errors.Is(err, sql.ErrNoRows) {
		return genome.Weights{}, 0, ErrEmpty
	}
	if err != nil {
		return genome.Weights{}, 0, errors.Wrap(err, "failed to query best weights")
	}
	w, err := genome.Read(strings.NewReader(text))
	if err != nil {
		return genome.Weights{}, 0, errors.WithMessage(err, "corrupt weights in ledger")
	}
	return w, fitness, nil
}

// Generations returns how many generations a run has recorded.
func (r *Run) Generations(ctx context.Context) (int, error) {
	var n int
	err := r.ledger.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT generation) FROM candidates WHERE run_id = ?", r.ID).Scan(&n)
	return n, errors.Wrap(err, "failed to count generations")
}

func encode(w genome.Weights) string {
	var buf bytes.Buffer
	_, _ = w.WriteTo(&buf) // bytes.Buffer writes do not fail
	return buf.String()
}
