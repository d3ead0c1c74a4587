package app

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/pagecraft/pagecraft/adapters/metrics"
	"github.com/pagecraft/pagecraft/domain/ratelimit"
	"github.com/pagecraft/pagecraft/ports"
)

// RateLimitPolicy is the hot-reloadable rate limiter configuration.
type RateLimitPolicy struct {
	Enabled bool
	Config  ratelimit.Config
}

// RateLimiter applies a per-IP fixed window. The decision is computed by the
// pure domain check; this service persists the resulting state, and only on
// an allowed decision, so denials never mutate the window.
type RateLimiter struct {
	store   ports.RateLimitStore
	clock   ports.Clock
	logger  zerolog.Logger
	metrics *metrics.Collector

	policy atomic.Pointer[RateLimitPolicy]
}

// NewRateLimiter creates a rate limiter. metrics may be nil.
func NewRateLimiter(
	store ports.RateLimitStore,
	clock ports.Clock,
	logger zerolog.Logger,
	m *metrics.Collector,
	policy RateLimitPolicy,
) *RateLimiter {
	l := &RateLimiter{
		store:   store,
		clock:   clock,
		logger:  logger.With().Str("component", "ratelimit").Logger(),
		metrics: m,
	}
	l.policy.Store(&policy)
	return l
}

// Reconfigure replaces the active policy. Used by config hot reload.
// Existing window state is kept; a lowered limit applies to windows already
// in flight.
func (l *RateLimiter) Reconfigure(policy RateLimitPolicy) {
	l.policy.Store(&policy)
	l.logger.Info().
		Bool("enabled", policy.Enabled).
		Int("limit", policy.Config.Limit).
		Dur("window", policy.Config.Window).
		Msg("rate limit policy reconfigured")
}

// Check runs the fixed-window check for an IP and persists the new state
// when the request is allowed. A disabled limiter allows everything.
func (l *RateLimiter) Check(ctx context.Context, ip, operation string) (ratelimit.CheckResult, error) {
	policy := l.policy.Load()
	if !policy.Enabled {
		return ratelimit.CheckResult{Allowed: true}, nil
	}

	state, err := l.store.Get(ctx, ip)
	if err != nil {
		return ratelimit.CheckResult{}, err
	}

	now := l.clock.Now()
	result, newState := ratelimit.Check(state, policy.Config, now)

	if !result.Allowed {
		l.logger.Warn().
			Str("ip", ip).
			Str("operation", operation).
			Time("reset_at", result.ResetAt).
			Msg("rate limit exceeded")
		if l.metrics != nil {
			l.metrics.RateLimitHits.WithLabelValues(operation).Inc()
		}
		return result, nil
	}

	if err := l.store.Set(ctx, ip, newState); err != nil {
		return ratelimit.CheckResult{}, err
	}
	return result, nil
}
