package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists sessions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed session store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the tracking_sessions table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tracking_sessions (
			id             VARCHAR(36) PRIMARY KEY,
			start_time_ms  BIGINT NOT NULL,
			end_time_ms    BIGINT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_tracking_sessions_start
			ON tracking_sessions (start_time_ms DESC);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_tracking_sessions_active
			ON tracking_sessions ((1)) WHERE end_time_ms IS NULL;
	`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, session *Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tracking_sessions (id, start_time_ms, end_time_ms, created_at)
		VALUES ($1, $2, NULL, $3)
	`, session.ID, session.StartTimeMs, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, start_time_ms, end_time_ms, created_at
		FROM tracking_sessions WHERE id = $1
	`, id))
}

func (s *PostgresStore) GetActive(ctx context.Context) (*Session, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, start_time_ms, end_time_ms, created_at
		FROM tracking_sessions
		WHERE end_time_ms IS NULL
		ORDER BY start_time_ms DESC
		LIMIT 1
	`))
}

func (s *PostgresStore) Close(ctx context.Context, id string, endTimeMs int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tracking_sessions SET end_time_ms = $2
		WHERE id = $1 AND end_time_ms IS NULL
	`, id, endTimeMs)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Either missing or already closed; disambiguate for the caller.
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyClosed
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_time_ms, end_time_ms, created_at
		FROM tracking_sessions
		ORDER BY start_time_ms DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Session
	for rows.Next() {
		var session Session
		var endMs sql.NullInt64
		var createdAt time.Time
		if err := rows.Scan(&session.ID, &session.StartTimeMs, &endMs, &createdAt); err != nil {
			continue
		}
		if endMs.Valid {
			v := endMs.Int64
			session.EndTimeMs = &v
		}
		session.CreatedAt = createdAt
		result = append(result, &session)
	}
	return result, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*Session, error) {
	var session Session
	var endMs sql.NullInt64
	var createdAt time.Time
	if err := row.Scan(&session.ID, &session.StartTimeMs, &endMs, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	if endMs.Valid {
		v := endMs.Int64
		session.EndTimeMs = &v
	}
	session.CreatedAt = createdAt
	return &session, nil
}
