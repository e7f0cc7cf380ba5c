package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenmind/screenmind/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:             "8080",
		Env:              "development",
		LogLevel:         "error",
		SentimentTimeout: config.DefaultSentimentTO,
		CollectInterval:  config.DefaultCollectInterval,
		NightStartHour:   config.DefaultNightStartHour,
		NightEndHour:     config.DefaultNightEndHour,
		HomeRadiusM:      config.DefaultHomeRadiusM,
		HistoryDays:      config.DefaultHistoryDays,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig())
	require.NoError(t, err)
	return s
}

func do(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Readiness flips only once Run has started.
	w = do(s, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// With no sentiment URL configured the check degrades gracefully.
	w = do(s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["sentiment"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "screenmind")
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/health/live", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

// End-to-end smoke over in-memory stores: consent, events, score run, history.
func TestScoringRoundTrip(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodPut, "/v1/consent", map[string]bool{"usage": true})
	require.Equal(t, http.StatusOK, w.Code)

	// Ten minutes of foreground use earlier today.
	end := time.Now().Add(-time.Minute)
	start := end.Add(-10 * time.Minute)
	w = do(s, http.MethodPost, "/v1/events", map[string]any{
		"events": []map[string]any{
			{"type": "foreground_resumed", "timestampMs": start.UnixMilli(), "packageName": "com.whatsapp"},
			{"type": "foreground_paused", "timestampMs": end.UnixMilli(), "packageName": "com.whatsapp"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(s, http.MethodPost, "/v1/score/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec struct {
		Date           string   `json:"date"`
		RiskLabel      string   `json:"riskLabel"`
		UsedCategories []string `json:"usedCategories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, time.Now().Format("2006-01-02"), rec.Date)
	assert.Contains(t, rec.UsedCategories, "behaviour")

	w = do(s, http.MethodGet, "/v1/history/today", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(s, http.MethodGet, fmt.Sprintf("/v1/history/range?from=%s&to=%s", rec.Date, rec.Date), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestJournalRoundTrip(t *testing.T) {
	s := newTestServer(t)

	// No sentiment service configured; analysis degrades to the fallback.
	w := do(s, http.MethodPost, "/v1/journal", map[string]string{"text": "quiet day, mostly indoors"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var entry struct {
		ID       string `json:"id"`
		Degraded bool   `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.NotEmpty(t, entry.ID)
	assert.True(t, entry.Degraded)

	w = do(s, http.MethodGet, "/v1/journal/"+entry.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRouteReturns404(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
