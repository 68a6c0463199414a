package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig tunes the breaker in front of an upstream.
type CircuitBreakerConfig struct {
	// Name labels the breaker in metrics, logs and wrapped errors.
	Name string

	// MaxRequests is how many probes pass while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts. Zero never resets.
	Interval time.Duration

	// Timeout is the open period before a probe is allowed.
	Timeout time.Duration

	// The breaker opens once MinRequests have been seen and FailureRatio of
	// them failed, or immediately after ConsecutiveFailures failures in a row.
	FailureRatio        float64
	MinRequests         uint32
	ConsecutiveFailures uint32
}

// DefaultCircuitBreakerConfig returns the settings used for the catalog
// backend.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:                name,
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		FailureRatio:        0.5,
		MinRequests:         5,
		ConsecutiveFailures: 10,
	}
}

func (c CircuitBreakerConfig) readyToTrip(counts gobreaker.Counts) bool {
	if c.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= c.ConsecutiveFailures {
		return true
	}
	if counts.Requests < c.MinRequests || counts.Requests == 0 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRatio
}

var (
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "catalog_admin",
			Name:      "upstream_breaker_state",
			Help:      "Breaker state per upstream: 0 closed, 1 half-open, 2 open.",
		},
		[]string{"upstream"},
	)

	breakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog_admin",
			Name:      "upstream_breaker_rejected_total",
			Help:      "Upstream calls refused locally while the breaker was open.",
		},
		[]string{"upstream"},
	)
)

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// ErrCircuitOpen is returned when the breaker rejects a request.
var ErrCircuitOpen = gobreaker.ErrOpenState

// CircuitBreakerClient guards a Client. Transport errors and 5xx answers count
// against the upstream; 4xx answers are the caller's fault and do not.
type CircuitBreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  *slog.Logger
	name    string
}

// NewCircuitBreakerClient wraps an existing HTTP client with a circuit breaker.
func NewCircuitBreakerClient(client *Client, cbCfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	settings := gobreaker.Settings{
		Name:        cbCfg.Name,
		MaxRequests: cbCfg.MaxRequests,
		Interval:    cbCfg.Interval,
		Timeout:     cbCfg.Timeout,
		ReadyToTrip: cbCfg.readyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("upstream breaker changed state",
				slog.String("upstream", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}

	breakerState.WithLabelValues(cbCfg.Name).Set(0)

	return &CircuitBreakerClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		logger:  logger,
		name:    cbCfg.Name,
	}
}

// Do executes an HTTP request through the circuit breaker. A 5xx answer is
// returned as a *ResponseError with the body decoded, so callers still see
// the downstream message.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, ParseResponseError(resp, c.name)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			breakerRejectedTotal.WithLabelValues(c.name).Inc()
			c.logger.WarnContext(ctx, "upstream call refused, breaker open",
				slog.String("upstream", c.name),
				slog.String("url", req.URL.Path),
			)
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		return nil, err
	}
	return resp, nil
}

// Name returns the breaker name.
func (c *CircuitBreakerClient) Name() string {
	return c.name
}

// State returns the current state of the circuit breaker.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
