package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/screenmind/screenmind/internal/features"
	"github.com/screenmind/screenmind/internal/risk"
)

// PostgresStore persists daily records in PostgreSQL, one row per date.
type PostgresStore struct {
	db       *sql.DB
	keepDays int
}

// NewPostgresStore creates a PostgreSQL-backed history store.
func NewPostgresStore(db *sql.DB, keepDays int) *PostgresStore {
	if keepDays <= 0 {
		keepDays = DefaultKeepDays
	}
	return &PostgresStore{db: db, keepDays: keepDays}
}

// Migrate creates the daily_records table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS daily_records (
			date            DATE PRIMARY KEY,
			features        JSONB NOT NULL,
			risk_score      INTEGER NOT NULL,
			risk_label      TEXT NOT NULL,
			breakdown       JSONB NOT NULL DEFAULT '{}',
			used_categories JSONB NOT NULL DEFAULT '[]',
			summary         TEXT NOT NULL DEFAULT '',
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresStore) Upsert(ctx context.Context, rec *DailyRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	featuresJSON, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}
	breakdownJSON, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}
	usedJSON, err := json.Marshal(rec.UsedCategories)
	if err != nil {
		return fmt.Errorf("failed to encode used categories: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_records
			(date, features, risk_score, risk_label, breakdown, used_categories, summary, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (date) DO UPDATE SET
			features = EXCLUDED.features,
			risk_score = EXCLUDED.risk_score,
			risk_label = EXCLUDED.risk_label,
			breakdown = EXCLUDED.breakdown,
			used_categories = EXCLUDED.used_categories,
			summary = EXCLUDED.summary,
			updated_at = NOW()
	`, rec.Date, featuresJSON, rec.RiskScore, string(rec.RiskLabel), breakdownJSON, usedJSON, rec.Summary)
	if err != nil {
		return fmt.Errorf("failed to upsert daily record: %w", err)
	}

	// Rolling retention relative to the newest stored date.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM daily_records
		WHERE date < (SELECT MAX(date) FROM daily_records) - $1::INTEGER
	`, s.keepDays)
	if err != nil {
		return fmt.Errorf("failed to prune daily records: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) GetByDate(ctx context.Context, date string) (*DailyRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT date::TEXT, features, risk_score, risk_label, breakdown, used_categories, summary, updated_at
		FROM daily_records WHERE date = $1
	`, date)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read daily record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]*DailyRecord, error) {
	if limit <= 0 {
		limit = s.keepDays
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date::TEXT, features, risk_score, risk_label, breakdown, used_categories, summary, updated_at
		FROM daily_records ORDER BY date DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) ListRange(ctx context.Context, fromDate, toDate string) ([]*DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date::TEXT, features, risk_score, risk_label, breakdown, used_categories, summary, updated_at
		FROM daily_records WHERE date >= $1 AND date <= $2
		ORDER BY date DESC
	`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*DailyRecord, error) {
	var (
		rec           DailyRecord
		featuresJSON  []byte
		breakdownJSON []byte
		usedJSON      []byte
		label         string
	)
	err := row.Scan(&rec.Date, &featuresJSON, &rec.RiskScore, &label,
		&breakdownJSON, &usedJSON, &rec.Summary, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.RiskLabel = risk.Label(label)

	rec.Features = &features.Set{}
	if err := json.Unmarshal(featuresJSON, rec.Features); err != nil {
		return nil, fmt.Errorf("failed to decode features: %w", err)
	}
	if err := json.Unmarshal(breakdownJSON, &rec.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown: %w", err)
	}
	if err := json.Unmarshal(usedJSON, &rec.UsedCategories); err != nil {
		return nil, fmt.Errorf("failed to decode used categories: %w", err)
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*DailyRecord, error) {
	var out []*DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
