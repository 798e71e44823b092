// Package insight asks an external generator for a narrative reading of a
// day's reconciliation. It never fails: every problem collapses into a fixed
// fallback text.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/sadopc/dayplan/internal/interval"
	"github.com/sadopc/dayplan/internal/schedule"
)

const maxResponseBytes = 1 << 20

// Result is the text shown to the user. Fallback is set when the text is the
// fixed unavailable message rather than generator output.
type Result struct {
	Text     string
	Fallback bool
}

// BreakerConfig controls when the client stops calling a failing generator.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         5 * time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

type Options struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
	Breaker    BreakerConfig
	Logger     *zap.Logger
}

type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Breaker == (BreakerConfig{}) {
		opts.Breaker = DefaultBreakerConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	log := opts.Logger.Named("insight")
	bc := opts.Breaker

	return &Client{
		url:     strings.TrimSpace(opts.URL),
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		log:     log,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "insight",
			MaxRequests: bc.MaxRequests,
			Interval:    bc.Interval,
			Timeout:     bc.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < bc.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= bc.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state changed",
					zap.String("from", from.String()), zap.String("to", to.String()))
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// Enabled reports whether a generator endpoint is configured.
func (c *Client) Enabled() bool { return c.url != "" }

// Generate sends the report to the generator and returns its text. No retry
// is attempted.
func (c *Client) Generate(ctx context.Context, rep *schedule.Report) Result {
	fallback := Result{Text: FallbackText(rep.Date), Fallback: true}
	if !c.Enabled() {
		return fallback
	}

	body, err := json.Marshal(newRequest(rep))
	if err != nil {
		c.log.Error("encode insight request", zap.Error(err))
		return fallback
	}

	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.send(ctx, body)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.log.Info("insight request skipped", zap.Error(err))
		default:
			c.log.Warn("insight request failed", zap.String("date", interval.DateKey(rep.Date)), zap.Error(err))
		}
		return fallback
	}
	return Result{Text: out.(string)}
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("insight response",
		zap.String("requestID", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseResponse(data)
}

// parseResponse prefers "insights", then "recommendations", and otherwise
// returns the whole JSON object as text.
func parseResponse(data []byte) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if obj == nil {
		return "", errors.New("decode response: not a JSON object")
	}
	for _, key := range []string{"insights", "recommendations"} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil || string(raw) == "null" {
			return "", fmt.Errorf("decode response: %q is not a string", key)
		}
		return text, nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return compact.String(), nil
}

// FallbackText is the fixed message returned when no generator output is
// available for date.
func FallbackText(date time.Time) string {
	return "Insight service is currently unavailable. " +
		"Please check your connection or configure the insights endpoint. " +
		"Date: " + interval.DateKey(date)
}
