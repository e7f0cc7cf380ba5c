package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/screenmind/screenmind/internal/sentiment"
)

// PostgresStore persists journal entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed journal store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the journal_entries table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS journal_entries (
			id         TEXT PRIMARY KEY,
			text       TEXT NOT NULL,
			mood       TEXT NOT NULL DEFAULT '',
			sentiment  JSONB,
			degraded   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_journal_entries_created
			ON journal_entries(created_at DESC);
	`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, e *Entry) error {
	var sentimentJSON any
	if e.Sentiment != nil {
		data, err := json.Marshal(e.Sentiment)
		if err != nil {
			return fmt.Errorf("failed to encode sentiment: %w", err)
		}
		sentimentJSON = data
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, text, mood, sentiment, degraded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Text, e.Mood, sentimentJSON, e.Degraded, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, mood, sentiment, degraded, created_at
		FROM journal_entries WHERE id = $1
	`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to read journal entry: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, mood, sentiment, degraded, created_at
		FROM journal_entries ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e             Entry
		sentimentJSON []byte
	)
	if err := row.Scan(&e.ID, &e.Text, &e.Mood, &sentimentJSON, &e.Degraded, &e.CreatedAt); err != nil {
		return nil, err
	}
	if len(sentimentJSON) > 0 {
		e.Sentiment = &sentiment.Result{}
		if err := json.Unmarshal(sentimentJSON, e.Sentiment); err != nil {
			return nil, fmt.Errorf("failed to decode sentiment: %w", err)
		}
	}
	return &e, nil
}
