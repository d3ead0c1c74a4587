// Package ratelimit provides a pure fixed-window rate limiting algorithm.
// All functions are deterministic - same input always produces same output.
package ratelimit

import "time"

// WindowState represents the current state of a rate limit window (value type).
// The zero value means "never seen".
type WindowState struct {
	Count       int       // Requests in current window
	WindowStart time.Time // When current window began
}

// CheckResult represents the outcome of a rate limit check (value type).
type CheckResult struct {
	Allowed   bool
	Remaining int       // Requests remaining in window
	ResetAt   time.Time // When the window expires
	Reason    string    // If not allowed, why
}

// Config holds rate limit configuration (value type).
type Config struct {
	Limit  int           // Requests per window
	Window time.Duration // Window duration
}

// Reasons for denial
const (
	ReasonLimitExceeded = "rate_limit_exceeded"
)

// Check performs a fixed-window rate limit check.
// This is a PURE function - no side effects, deterministic.
//
// The window is anchored at the first request rather than at clock
// boundaries. A denied request does not mutate state, so repeated denials
// neither extend the window nor corrupt the count. Like any fixed-window
// counter this admits a burst of up to 2x the limit across a window
// boundary; that is a documented characteristic, not a bug.
//
// Returns the check result and the updated state (caller must persist).
func Check(state WindowState, cfg Config, now time.Time) (CheckResult, WindowState) {
	// First sight, or the window has fully elapsed - start a fresh one.
	if state.WindowStart.IsZero() || now.Sub(state.WindowStart) > cfg.Window {
		state = WindowState{Count: 1, WindowStart: now}
		return CheckResult{
			Allowed:   true,
			Remaining: cfg.Limit - 1,
			ResetAt:   now.Add(cfg.Window),
		}, state
	}

	resetAt := state.WindowStart.Add(cfg.Window)

	if state.Count >= cfg.Limit {
		return CheckResult{
			Allowed: false,
			ResetAt: resetAt,
			Reason:  ReasonLimitExceeded,
		}, state
	}

	state.Count++
	return CheckResult{
		Allowed:   true,
		Remaining: cfg.Limit - state.Count,
		ResetAt:   resetAt,
	}, state
}

// RetryAfter returns how long to wait before retrying.
// This is a PURE function.
func RetryAfter(result CheckResult, now time.Time) time.Duration {
	if result.Allowed {
		return 0
	}
	delay := result.ResetAt.Sub(now)
	if delay < 0 {
		return 0
	}
	return delay
}
