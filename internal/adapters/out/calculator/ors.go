package calculator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/routing"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/errs"
	"lastmile/internal/pkg/metrics"
)

// ProviderORS labels metrics of the ORSCalculator.
const ProviderORS = "ors"

const (
	defaultORSProfile  = "driving-car"
	defaultMaxAttempts = 4
	defaultBackoff     = 200 * time.Millisecond
)

// ORSConfig configures the OpenRouteService calculator.
type ORSConfig struct {
	BaseURL string
	APIKey  string
	Profile string

	// MaxAttempts bounds the tries of one matrix request, including the first.
	MaxAttempts int
	// Backoff is the wait before the first retry; it doubles on every retry.
	Backoff time.Duration

	// BreakerFailures is the number of consecutive failed calculations that opens
	// the circuit.
	BreakerFailures uint32
	// BreakerTimeout is how long the circuit stays open before a trial call.
	BreakerTimeout time.Duration
}

// ORSCalculator orders waypoints by road travel duration. It fetches the full
// duration matrix between origin and waypoints from the OpenRouteService
// /v2/matrix endpoint and runs the nearest-neighbour selection over it.
//
// Transient HTTP failures (network errors, 429 and 5xx) are retried with
// exponential backoff. Whole calculations go through a circuit breaker so a
// failing provider is not called on every planning request.
type ORSCalculator struct {
	cfg     ORSConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ ports.RouteCalculator = (*ORSCalculator)(nil)

// NewORSCalculator creates the calculator. client and m may be nil.
func NewORSCalculator(cfg ORSConfig, client *http.Client, m *metrics.Metrics, logger *slog.Logger) (*ORSCalculator, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errs.NewValueIsRequiredError("ORS base URL")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Profile == "" {
		cfg.Profile = defaultORSProfile
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ors_calculator")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ors-matrix",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up says nothing about the provider.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &ORSCalculator{
		cfg:     cfg,
		client:  client,
		breaker: breaker,
		metrics: m,
		logger:  logger,
	}, nil
}

// State returns the circuit breaker state.
func (c *ORSCalculator) State() gobreaker.State {
	return c.breaker.State()
}

func (c *ORSCalculator) CalculateOrder(
	ctx context.Context,
	origin kernel.GeoPoint,
	waypoints []routing.Waypoint,
) (ordered routing.OrderedRoute, err error) {
	start := time.Now()
	defer func() { c.metrics.RecordRouting(ProviderORS, err == nil, time.Since(start)) }()

	if err = routing.ValidateWaypoints(waypoints); err != nil {
		return routing.OrderedRoute{}, err
	}
	if err = origin.Validate(); err != nil {
		return routing.OrderedRoute{}, err
	}

	sorted := sortWaypoints(waypoints)
	durations, err := c.durations(ctx, origin, sorted)
	if err != nil {
		return routing.OrderedRoute{}, err
	}

	return nearestNeighbour(ctx, sorted, func(from, to int) (float64, error) {
		d := durations[from][to]
		if d == nil {
			// ORS reports unreachable pairs as null.
			return math.Inf(1), nil
		}
		return *d, nil
	})
}

func (c *ORSCalculator) durations(ctx context.Context, origin kernel.GeoPoint, sorted []routing.Waypoint) ([][]*float64, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchMatrix(ctx, origin, sorted)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.logger.WarnContext(ctx, "Circuit breaker rejected matrix request", "state", c.breaker.State().String())
		return nil, errs.NewRoutingErrorWithCause("routing provider unavailable", err)
	case err != nil:
		c.logger.ErrorContext(ctx, "Matrix request failed", "waypoints", len(sorted), "error", err)
		return nil, errs.NewRoutingErrorWithCause("matrix request failed", err)
	}

	return result.([][]*float64), nil
}

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// fetchMatrix requests the all-to-all duration matrix. Row and column 0 belong
// to the origin; ORS takes coordinates as [longitude, latitude].
func (c *ORSCalculator) fetchMatrix(ctx context.Context, origin kernel.GeoPoint, sorted []routing.Waypoint) ([][]*float64, error) {
	locations := make([][]float64, 0, len(sorted)+1)
	locations = append(locations, []float64{origin.Longitude(), origin.Latitude()})
	for _, w := range sorted {
		locations = append(locations, []float64{w.Location().Longitude(), w.Location().Latitude()})
	}

	payload, err := json.Marshal(matrixRequest{Locations: locations, Metrics: []string{"duration"}})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", c.cfg.BaseURL, c.cfg.Profile)
	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err = json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	n := len(locations)
	if len(mr.Durations) != n {
		return nil, fmt.Errorf("matrix has %d rows, expected %d", len(mr.Durations), n)
	}
	for i, row := range mr.Durations {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	return mr.Durations, nil
}

func (c *ORSCalculator) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *ORSCalculator) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries network errors, 429 and 5xx responses with exponential
// backoff until MaxAttempts is reached or ctx is done.
func (c *ORSCalculator) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.cfg.Backoff
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.cfg.MaxAttempts {
			return nil, lastErr
		}

		c.logger.DebugContext(ctx, "Retrying matrix request", "attempt", attempt, "backoff", backoff, "error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var he *httpStatusError
	if errors.As(err, &he) {
		return he.Code == http.StatusTooManyRequests || he.Code >= http.StatusInternalServerError
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
