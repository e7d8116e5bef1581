package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"
)

// ErrUpstreamNotFound is a 404 from an upstream; it does not count against
// the source's breaker.
var ErrUpstreamNotFound = errors.New("upstream: not found")

// Fetcher performs one GET against an upstream and returns the body.
type Fetcher interface {
	Get(ctx context.Context, source, url string) ([]byte, error)
}

// HTTPFetcher uses fiber's client with a per-source circuit breaker and a
// shared rate limit.
type HTTPFetcher struct {
	timeout time.Duration
	limiter *rate.Limiter

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

func NewHTTPFetcher(timeout time.Duration, rps float64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &HTTPFetcher{
		timeout:  timeout,
		limiter:  rate.NewLimiter(limit, 5),
		breakers: map[string]*gobreaker.CircuitBreaker[[]byte]{},
	}
}

func (f *HTTPFetcher) breaker(source string) *gobreaker.CircuitBreaker[[]byte] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[source]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "upstream:" + source,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUpstreamNotFound)
		},
	})
	f.breakers[source] = cb
	return cb
}

func (f *HTTPFetcher) Get(ctx context.Context, source, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return f.breaker(source).Execute(func() ([]byte, error) {
		a := fiber.Get(url)
		a.Timeout(f.timeout)
		code, body, errs := a.Bytes()
		if len(errs) > 0 {
			return nil, multierr.Combine(errs...)
		}
		switch {
		case code == fiber.StatusNotFound:
			return nil, ErrUpstreamNotFound
		case code < 200 || code > 299:
			return nil, fmt.Errorf("upstream %s: status %d", source, code)
		}
		return body, nil
	})
}
