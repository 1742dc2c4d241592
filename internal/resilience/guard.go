package resilience

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// GuardConfig limits calls to one provider.
type GuardConfig struct {
	// MaxConcurrent bounds in-flight calls. Default: 1.
	MaxConcurrent int
	// RequestsPerSecond limits the call rate; zero or less disables it.
	RequestsPerSecond float64
	Breaker           BreakerConfig
}

// Guard applies a concurrency bound, a rate limit and a circuit breaker to
// calls against one provider.
type Guard struct {
	name    string
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	breaker *Breaker
}

// NewGuard creates a guard for the named provider.
func NewGuard(name string, cfg GuardConfig) *Guard {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Guard{
		name:    name,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		limiter: rate.NewLimiter(limit, 1),
		breaker: NewBreaker(name, cfg.Breaker),
	}
}

// Name returns the provider name.
func (g *Guard) Name() string {
	return g.name
}

// Breaker exposes the guard's breaker.
func (g *Guard) Breaker() *Breaker {
	return g.breaker
}

// Do runs fn once the breaker allows it, a concurrency slot is free and the
// rate limiter grants a token.
func Do[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := g.breaker.Allow(); err != nil {
		return zero, err
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return zero, eris.Wrapf(err, "resilience: %s: acquire slot", g.name)
	}
	defer g.sem.Release(1)

	if err := g.limiter.Wait(ctx); err != nil {
		return zero, eris.Wrapf(err, "resilience: %s: rate limit", g.name)
	}

	val, err := fn(ctx)
	g.breaker.Record(err)
	return val, err
}
