package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists consent preferences in PostgreSQL.
// A single row keyed by id=1 holds the current toggles.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed consent store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the consent_preferences table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS consent_preferences (
			id         SMALLINT PRIMARY KEY CHECK (id = 1),
			gps        BOOLEAN NOT NULL DEFAULT FALSE,
			calls      BOOLEAN NOT NULL DEFAULT FALSE,
			sms        BOOLEAN NOT NULL DEFAULT FALSE,
			usage      BOOLEAN NOT NULL DEFAULT FALSE,
			bluetooth  BOOLEAN NOT NULL DEFAULT FALSE,
			wifi       BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresStore) Get(ctx context.Context) (Preferences, error) {
	var p Preferences
	err := s.db.QueryRowContext(ctx, `
		SELECT gps, calls, sms, usage, bluetooth, wifi
		FROM consent_preferences WHERE id = 1
	`).Scan(&p.GPS, &p.Calls, &p.SMS, &p.Usage, &p.Bluetooth, &p.WiFi)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preferences{}, ErrNotFound
		}
		return Preferences{}, fmt.Errorf("failed to read consent preferences: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Set(ctx context.Context, prefs Preferences) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO consent_preferences (id, gps, calls, sms, usage, bluetooth, wifi, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			gps = EXCLUDED.gps,
			calls = EXCLUDED.calls,
			sms = EXCLUDED.sms,
			usage = EXCLUDED.usage,
			bluetooth = EXCLUDED.bluetooth,
			wifi = EXCLUDED.wifi,
			updated_at = NOW()
	`, prefs.GPS, prefs.Calls, prefs.SMS, prefs.Usage, prefs.Bluetooth, prefs.WiFi)
	if err != nil {
		return fmt.Errorf("failed to save consent preferences: %w", err)
	}
	return nil
}
