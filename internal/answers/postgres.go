package answers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the durable answer memory. Every Remember is
// write-through: a mid-session crash loses at most the in-flight element,
// never previously answered questions.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// schema is applied on connect so a fresh database works out of the box.
const schema = `
CREATE TABLE IF NOT EXISTS remembered_answers (
	signature  TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// ConnectPostgres opens the durable store and ensures its schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to answer store: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping answer store: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure answer store schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Lookup returns the remembered value for a signature. Placeholder rows that
// predate the admission rules are treated as missing so the question is
// retried.
func (s *PostgresStore) Lookup(ctx context.Context, signature string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM remembered_answers WHERE signature = $1`,
		signature,
	).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to look up answer: %w", err)
	}
	if validate(Record{Signature: signature, Value: value}) != nil {
		return "", false, nil
	}
	return value, true, nil
}

// Remember upserts the record for its signature. Last write wins.
func (s *PostgresStore) Remember(ctx context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO remembered_answers (signature, value, kind, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (signature) DO UPDATE SET value = $2, kind = $3`,
		rec.Signature, rec.Value, string(rec.Kind), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to remember answer for %q: %w", rec.Signature, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
