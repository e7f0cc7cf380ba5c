package events

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists raw events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed event log.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the raw_events table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS raw_events (
			id            VARCHAR(36) PRIMARY KEY,
			event_type    VARCHAR(32) NOT NULL,
			timestamp_ms  BIGINT NOT NULL,
			session_id    VARCHAR(36),
			package_name  VARCHAR(256),
			lat           DOUBLE PRECISION,
			lng           DOUBLE PRECISION,
			title         TEXT,
			sender        TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_raw_events_ts
			ON raw_events (timestamp_ms);

		CREATE INDEX IF NOT EXISTS idx_raw_events_session
			ON raw_events (session_id, timestamp_ms);
	`)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, event *RawEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_events (id, event_type, timestamp_ms, session_id, package_name, lat, lng, title, sender)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''))
	`,
		event.ID,
		string(event.Type),
		event.TimestampMs,
		event.SessionID,
		event.PackageName,
		event.Lat,
		event.Lng,
		event.Title,
		event.Sender,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendBatch(ctx context.Context, batch []*RawEvent) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO raw_events (id, event_type, timestamp_ms, session_id, package_name, lat, lng, title, sender)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''))
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch append: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, event := range batch {
		if err := event.Validate(); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			event.ID, string(event.Type), event.TimestampMs,
			event.SessionID, event.PackageName,
			event.Lat, event.Lng, event.Title, event.Sender,
		); err != nil {
			return fmt.Errorf("failed to append event %s: %w", event.ID, err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) QueryRange(ctx context.Context, fromMs, toMs int64) ([]*RawEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, timestamp_ms, COALESCE(session_id, ''), COALESCE(package_name, ''),
		       lat, lng, COALESCE(title, ''), COALESCE(sender, '')
		FROM raw_events
		WHERE timestamp_ms >= $1 AND timestamp_ms <= $2
		ORDER BY timestamp_ms ASC
	`, fromMs, toMs)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by range: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows), nil
}

func (s *PostgresStore) QuerySession(ctx context.Context, sessionID string) ([]*RawEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, timestamp_ms, COALESCE(session_id, ''), COALESCE(package_name, ''),
		       lat, lng, COALESCE(title, ''), COALESCE(sender, '')
		FROM raw_events
		WHERE session_id = $1
		ORDER BY timestamp_ms ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by session: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows), nil
}

// scanEvents reads rows into events. Malformed rows are skipped, not fatal.
func scanEvents(rows *sql.Rows) []*RawEvent {
	var result []*RawEvent
	for rows.Next() {
		var e RawEvent
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.TimestampMs, &e.SessionID, &e.PackageName,
			&e.Lat, &e.Lng, &e.Title, &e.Sender); err != nil {
			continue
		}
		e.Type = Type(typ)
		if !KnownType(e.Type) {
			continue
		}
		result = append(result, &e)
	}
	return result
}
