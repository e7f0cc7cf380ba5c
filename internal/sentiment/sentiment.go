// Package sentiment calls the external text-analysis service and degrades
// to a neutral result when it is unreachable. The caller never fails
// because sentiment failed.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/screenmind/screenmind/internal/metrics"
	"github.com/screenmind/screenmind/internal/retry"
)

// ErrUnavailable is returned by Analyze when every attempt against the
// service failed. AnalyzeWithFallback maps it to the neutral result.
var ErrUnavailable = errors.New("sentiment: service unavailable")

// Result is the analysis of one piece of journal text.
type Result struct {
	SentimentScore  float64 `json:"sentimentScore"`
	SentimentLabel  string  `json:"sentimentLabel"`
	RiskLevel       string  `json:"riskLevel"`
	AbsolutistCount int     `json:"absolutistCount"`
	EmojiMasking    bool    `json:"emojiMasking"`
}

// Fallback is the defined neutral result substituted when the service
// cannot be reached.
func Fallback() *Result {
	return &Result{
		RiskLevel:       "MODERATE",
		SentimentScore:  -0.62,
		SentimentLabel:  "NEGATIVE",
		AbsolutistCount: 1,
		EmojiMasking:    false,
	}
}

const (
	maxAttempts = 3
	baseDelay   = 200 * time.Millisecond
)

// Client talks to the sentiment service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a sentiment client. An empty baseURL produces a
// client whose Analyze always fails, which the fallback path absorbs.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze posts the text for analysis, retrying transient failures.
func (c *Client) Analyze(ctx context.Context, text string) (*Result, error) {
	if c.baseURL == "" {
		return nil, ErrUnavailable
	}

	var result Result
	err := retry.Do(ctx, maxAttempts, baseDelay, func() error {
		return c.post(ctx, text, &result)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &result, nil
}

// AnalyzeWithFallback never fails: a dead service yields the neutral
// result and degraded=true so the caller can surface a soft warning.
func (c *Client) AnalyzeWithFallback(ctx context.Context, text string) (result *Result, degraded bool) {
	r, err := c.Analyze(ctx, text)
	if err != nil {
		c.logger.Warn("sentiment service unavailable, using fallback", "error", err)
		metrics.SentimentFallbacksTotal.Inc()
		return Fallback(), true
	}
	return r, false
}

func (c *Client) post(ctx context.Context, text string, out *Result) error {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze-text", bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("sentiment service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return retry.Permanent(fmt.Errorf("sentiment service returned %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return retry.Permanent(fmt.Errorf("invalid sentiment response: %w", err))
	}
	return nil
}

// HealthCheck probes the service for the readiness endpoint. A missing
// baseURL reports healthy so a deployment without sentiment stays ready.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.baseURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sentiment service health returned %d", resp.StatusCode)
	}
	return nil
}
