// Package pipeline runs the daily collection loop: consent, features,
// risk score, explanation, history record, live broadcast.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/screenmind/screenmind/internal/consent"
	"github.com/screenmind/screenmind/internal/features"
	"github.com/screenmind/screenmind/internal/history"
	"github.com/screenmind/screenmind/internal/metrics"
	"github.com/screenmind/screenmind/internal/risk"
	"github.com/screenmind/screenmind/internal/traces"
)

// RiskBroadcaster pushes freshly scored records to live subscribers.
type RiskBroadcaster interface {
	BroadcastRiskUpdated(rec *history.DailyRecord)
}

// Collector computes and stores today's record.
type Collector struct {
	consent     consent.Store
	builder     *features.Builder
	history     history.Store
	broadcaster RiskBroadcaster
	logger      *slog.Logger
	now         func() time.Time

	nightStartHour int
	nightEndHour   int
}

// NewCollector wires the daily scoring pipeline. broadcaster may be nil.
func NewCollector(
	consentStore consent.Store,
	builder *features.Builder,
	historyStore history.Store,
	broadcaster RiskBroadcaster,
	nightStartHour, nightEndHour int,
	logger *slog.Logger,
) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		consent:        consentStore,
		builder:        builder,
		history:        historyStore,
		broadcaster:    broadcaster,
		logger:         logger,
		now:            time.Now,
		nightStartHour: nightStartHour,
		nightEndHour:   nightEndHour,
	}
}

// WithClock overrides the collector's clock, for tests.
func (c *Collector) WithClock(now func() time.Time) *Collector {
	c.now = now
	return c
}

// RunOnce computes today's features, scores them, and upserts the daily
// record. A run that cannot persist its record returns the computed
// record alongside the error; anything upstream degrades instead
// (absent features, default consent).
func (c *Collector) RunOnce(ctx context.Context) (*history.DailyRecord, error) {
	ctx, span := traces.StartSpan(ctx, "pipeline.RunOnce")
	defer span.End()

	now := c.now()
	date := now.Format(history.DateLayout)

	prefs := consent.Resolve(ctx, c.consent)
	win := features.DayWindow(now, c.nightStartHour, c.nightEndHour)
	set := c.builder.Build(ctx, win, prefs)

	result := risk.Score(set, prefs)
	span.SetAttributes(traces.Date(date), traces.RiskLabel(string(result.Label)))

	rec := &history.DailyRecord{
		Date:           date,
		Features:       set,
		RiskScore:      result.Score,
		RiskLabel:      result.Label,
		Breakdown:      result.Breakdown,
		UsedCategories: result.UsedCategories,
		Summary:        risk.Summary(set),
	}

	if err := c.history.Upsert(ctx, rec); err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		c.logger.Error("failed to store daily record", "date", date, "error", err)
		return rec, fmt.Errorf("failed to store daily record: %w", err)
	}

	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
	metrics.RiskScoresTotal.WithLabelValues(string(result.Label)).Inc()

	if c.broadcaster != nil {
		c.broadcaster.BroadcastRiskUpdated(rec)
	}

	c.logger.Info("daily record scored",
		"date", date,
		"score", result.Score,
		"label", result.Label,
		"usedCategories", result.UsedCategories,
	)
	return rec, nil
}
