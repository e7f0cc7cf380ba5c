package features

import (
	"context"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/screenmind/screenmind/internal/events"
)

const (
	earthRadiusM = 6371000.0

	// maxDwellMs caps the dwell time attributed to a single location
	// sample, so a long sampling gap doesn't pin hours onto one point.
	maxDwellMs = 30 * 60 * 1000
)

// EventMobilitySource derives mobility statistics from location samples in
// the event log: daily distance, time-at-home share, cluster entropy, and
// inter-cluster transitions.
type EventMobilitySource struct {
	events      events.Store
	homeRadiusM float64
}

// NewEventMobilitySource creates a mobility source over the event log.
func NewEventMobilitySource(store events.Store, homeRadiusM float64) *EventMobilitySource {
	return &EventMobilitySource{events: store, homeRadiusM: homeRadiusM}
}

type locationSample struct {
	latLng s2.LatLng
	tsMs   int64
}

func (s *EventMobilitySource) MobilityStats(ctx context.Context, win Window) (*MobilityStats, error) {
	evts, err := s.events.QueryRange(ctx, win.FromMs, win.ToMs)
	if err != nil {
		return nil, err
	}

	var samples []locationSample
	for _, e := range evts {
		if e.Type != events.TypeLocationSample || e.Lat == nil || e.Lng == nil {
			continue
		}
		samples = append(samples, locationSample{
			latLng: s2.LatLngFromDegrees(*e.Lat, *e.Lng),
			tsMs:   e.TimestampMs,
		})
	}
	if len(samples) == 0 {
		return nil, ErrNoData
	}

	return computeMobility(samples, s.homeRadiusM), nil
}

// cluster is a greedy location cluster: a sample joins the first cluster
// whose centroid is within the radius, else starts a new one.
type cluster struct {
	centroid s2.LatLng
	count    int
	dwellMs  int64
}

func computeMobility(samples []locationSample, radiusM float64) *MobilityStats {
	var (
		clusters    []*cluster
		distanceM   float64
		transitions int
		lastCluster = -1
	)

	for i, sample := range samples {
		if i > 0 {
			distanceM += distanceMeters(samples[i-1].latLng, sample.latLng)
		}

		dwell := dwellMs(samples, i)

		idx := -1
		for j, c := range clusters {
			if distanceMeters(c.centroid, sample.latLng) <= radiusM {
				idx = j
				break
			}
		}
		if idx < 0 {
			clusters = append(clusters, &cluster{centroid: sample.latLng})
			idx = len(clusters) - 1
		}

		c := clusters[idx]
		c.dwellMs += dwell
		c.count++
		// Running centroid keeps the cluster anchored as it grows.
		n := s1.Angle(c.count)
		c.centroid = s2.LatLng{
			Lat: c.centroid.Lat + (sample.latLng.Lat-c.centroid.Lat)/n,
			Lng: c.centroid.Lng + (sample.latLng.Lng-c.centroid.Lng)/n,
		}

		if lastCluster >= 0 && idx != lastCluster {
			transitions++
		}
		lastCluster = idx
	}

	var totalDwell, homeDwell int64
	for _, c := range clusters {
		totalDwell += c.dwellMs
		if c.dwellMs > homeDwell {
			homeDwell = c.dwellMs
		}
	}

	// Ratio features default to 0 rather than dividing by zero.
	homePct := 0.0
	if totalDwell > 0 {
		homePct = float64(homeDwell) / float64(totalDwell) * 100.0
	}

	entropy := 0.0
	if totalDwell > 0 {
		for _, c := range clusters {
			if c.dwellMs == 0 {
				continue
			}
			p := float64(c.dwellMs) / float64(totalDwell)
			entropy -= p * math.Log(p)
		}
	}

	return &MobilityStats{
		DistanceMeters: distanceM,
		TimeAtHomePct:  homePct,
		Entropy:        entropy,
		Transitions:    transitions,
	}
}

// dwellMs attributes to sample i the gap until the next sample, capped.
// The final sample contributes no dwell.
func dwellMs(samples []locationSample, i int) int64 {
	if i+1 >= len(samples) {
		return 0
	}
	gap := samples[i+1].tsMs - samples[i].tsMs
	if gap < 0 {
		return 0
	}
	if gap > maxDwellMs {
		return maxDwellMs
	}
	return gap
}

func distanceMeters(a, b s2.LatLng) float64 {
	return float64(a.Distance(b)) * earthRadiusM
}
