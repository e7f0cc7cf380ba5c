package features

import (
	"context"
	"errors"
	"time"
)

// ErrReportNotFound is returned when no reported metrics exist for a date.
var ErrReportNotFound = errors.New("features: reported metrics not found")

// ReportedMetrics are daily aggregates the device computes on-device and
// posts to the service. Communication and proximity signals never leave
// the device in raw form; only these per-day summaries do. Nil fields
// mean the device did not (or could not) report that signal.
type ReportedMetrics struct {
	Date                string     `json:"date"` // YYYY-MM-DD
	CallsPerDay         *float64   `json:"callsPerDay,omitempty"`
	UniqueContacts      *float64   `json:"uniqueContacts,omitempty"`
	SilenceHours        *float64   `json:"silenceHours,omitempty"`
	SMSPerDay           *float64   `json:"smsPerDay,omitempty"`
	BluetoothAvgDevices *float64   `json:"bluetoothAvgDevices,omitempty"`
	WiFiDiversity       *float64   `json:"wifiDiversity,omitempty"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// ReportedStore persists per-day reported metrics, last write wins.
type ReportedStore interface {
	Upsert(ctx context.Context, m *ReportedMetrics) error
	GetByDate(ctx context.Context, date string) (*ReportedMetrics, error)
}

// ReportedSource adapts a ReportedStore to the comm and proximity source
// interfaces. The window's start determines which day's report is used.
type ReportedSource struct {
	store ReportedStore
}

// NewReportedSource creates a source over persisted device reports.
func NewReportedSource(store ReportedStore) *ReportedSource {
	return &ReportedSource{store: store}
}

func (s *ReportedSource) CommStats(ctx context.Context, win Window) (*CommStats, error) {
	m, err := s.lookup(ctx, win)
	if err != nil {
		return nil, err
	}
	stats := &CommStats{}
	if m.CallsPerDay != nil {
		stats.HasCalls = true
		stats.CallsPerDay = *m.CallsPerDay
		if m.UniqueContacts != nil {
			stats.UniqueContacts = *m.UniqueContacts
		}
		if m.SilenceHours != nil {
			stats.SilenceHours = *m.SilenceHours
		}
	}
	if m.SMSPerDay != nil {
		stats.HasSMS = true
		stats.SMSPerDay = *m.SMSPerDay
	}
	if !stats.HasCalls && !stats.HasSMS {
		return nil, ErrNoData
	}
	return stats, nil
}

func (s *ReportedSource) ProximityStats(ctx context.Context, win Window) (*ProximityStats, error) {
	m, err := s.lookup(ctx, win)
	if err != nil {
		return nil, err
	}
	stats := &ProximityStats{}
	if m.BluetoothAvgDevices != nil {
		stats.HasBluetooth = true
		stats.BluetoothAvgDevices = *m.BluetoothAvgDevices
	}
	if m.WiFiDiversity != nil {
		stats.HasWiFi = true
		stats.WiFiDiversity = *m.WiFiDiversity
	}
	if !stats.HasBluetooth && !stats.HasWiFi {
		return nil, ErrNoData
	}
	return stats, nil
}

func (s *ReportedSource) lookup(ctx context.Context, win Window) (*ReportedMetrics, error) {
	date := win.Date
	if date == "" {
		date = time.UnixMilli(win.FromMs).UTC().Format("2006-01-02")
	}
	m, err := s.store.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return nil, ErrNoData
		}
		return nil, err
	}
	return m, nil
}
