// Package history persists one scored record per calendar day and serves
// them newest-first for charting.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/screenmind/screenmind/internal/features"
	"github.com/screenmind/screenmind/internal/risk"
)

var (
	// ErrRecordNotFound is returned when no record exists for a date.
	ErrRecordNotFound = errors.New("history: record not found")

	// ErrInvalidRecord is returned for records missing a valid date key.
	ErrInvalidRecord = errors.New("history: invalid record")
)

// DateLayout is the calendar-day key format, local timezone.
const DateLayout = "2006-01-02"

// DefaultKeepDays is the rolling retention window.
const DefaultKeepDays = 365

// DailyRecord is the per-day snapshot of features and their score.
// One record per date; a later computation for the same date overwrites.
type DailyRecord struct {
	Date           string             `json:"date"`
	Features       *features.Set      `json:"features"`
	RiskScore      int                `json:"riskScore"`
	RiskLabel      risk.Label         `json:"riskLabel"`
	Breakdown      map[string]float64 `json:"breakdown"`
	UsedCategories []string           `json:"usedCategories"`
	Summary        string             `json:"summary"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// Validate checks the record carries a well-formed date key.
func (r *DailyRecord) Validate() error {
	if r.Date == "" {
		return ErrInvalidRecord
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrInvalidRecord
	}
	return nil
}

// Store persists daily records. Upsert overwrites by date and enforces
// the rolling retention window. List and ListRange return newest-first.
type Store interface {
	Upsert(ctx context.Context, rec *DailyRecord) error
	GetByDate(ctx context.Context, date string) (*DailyRecord, error)
	List(ctx context.Context, limit int) ([]*DailyRecord, error)
	ListRange(ctx context.Context, fromDate, toDate string) ([]*DailyRecord, error)
}
