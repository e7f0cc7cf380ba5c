package features

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresReportedStore persists reported metrics in PostgreSQL,
// one row per day.
type PostgresReportedStore struct {
	db *sql.DB
}

// NewPostgresReportedStore creates a PostgreSQL-backed reported store.
func NewPostgresReportedStore(db *sql.DB) *PostgresReportedStore {
	return &PostgresReportedStore{db: db}
}

// Migrate creates the reported_metrics table if it doesn't exist.
func (s *PostgresReportedStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reported_metrics (
			date                  DATE PRIMARY KEY,
			calls_per_day         DOUBLE PRECISION,
			unique_contacts       DOUBLE PRECISION,
			silence_hours         DOUBLE PRECISION,
			sms_per_day           DOUBLE PRECISION,
			bluetooth_avg_devices DOUBLE PRECISION,
			wifi_diversity        DOUBLE PRECISION,
			updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresReportedStore) Upsert(ctx context.Context, m *ReportedMetrics) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reported_metrics
			(date, calls_per_day, unique_contacts, silence_hours, sms_per_day,
			 bluetooth_avg_devices, wifi_diversity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (date) DO UPDATE SET
			calls_per_day = EXCLUDED.calls_per_day,
			unique_contacts = EXCLUDED.unique_contacts,
			silence_hours = EXCLUDED.silence_hours,
			sms_per_day = EXCLUDED.sms_per_day,
			bluetooth_avg_devices = EXCLUDED.bluetooth_avg_devices,
			wifi_diversity = EXCLUDED.wifi_diversity,
			updated_at = NOW()
	`, m.Date, m.CallsPerDay, m.UniqueContacts, m.SilenceHours,
		m.SMSPerDay, m.BluetoothAvgDevices, m.WiFiDiversity)
	if err != nil {
		return fmt.Errorf("failed to upsert reported metrics: %w", err)
	}
	return nil
}

func (s *PostgresReportedStore) GetByDate(ctx context.Context, date string) (*ReportedMetrics, error) {
	m := &ReportedMetrics{}
	err := s.db.QueryRowContext(ctx, `
		SELECT date::TEXT, calls_per_day, unique_contacts, silence_hours,
		       sms_per_day, bluetooth_avg_devices, wifi_diversity, updated_at
		FROM reported_metrics WHERE date = $1
	`, date).Scan(&m.Date, &m.CallsPerDay, &m.UniqueContacts, &m.SilenceHours,
		&m.SMSPerDay, &m.BluetoothAvgDevices, &m.WiFiDiversity, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to read reported metrics: %w", err)
	}
	return m, nil
}
