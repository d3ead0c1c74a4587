package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pagecraft/pagecraft/adapters/clock"
	"github.com/pagecraft/pagecraft/adapters/memory"
	"github.com/pagecraft/pagecraft/domain/ratelimit"
)

func newRateLimiter(limit int, window time.Duration) (*RateLimiter, *clock.Fake) {
	clk := clock.NewFake(testTime())
	l := NewRateLimiter(memory.NewRateLimitStore(), clk, zerolog.Nop(), nil, RateLimitPolicy{
		Enabled: true,
		Config:  ratelimit.Config{Limit: limit, Window: window},
	})
	return l, clk
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	l, _ := newRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := l.Check(ctx, "10.0.0.1", "generate-batch")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	result, err := l.Check(ctx, "10.0.0.1", "generate-batch")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Allowed {
		t.Error("request past the limit should be denied")
	}
}

func TestRateLimiterDenialDoesNotExtendWindow(t *testing.T) {
	l, clk := newRateLimiter(1, time.Minute)
	ctx := context.Background()

	l.Check(ctx, "10.0.0.1", "generate-batch")

	// Hammer denials for half the window; the reset time must not move.
	var firstReset time.Time
	for i := 0; i < 10; i++ {
		clk.Advance(3 * time.Second)
		result, _ := l.Check(ctx, "10.0.0.1", "generate-batch")
		if result.Allowed {
			t.Fatalf("denial %d unexpectedly allowed", i)
		}
		if firstReset.IsZero() {
			firstReset = result.ResetAt
		} else if !result.ResetAt.Equal(firstReset) {
			t.Fatalf("ResetAt moved from %v to %v", firstReset, result.ResetAt)
		}
	}

	// Past the window the IP gets a fresh allowance.
	clk.Advance(time.Minute)
	result, _ := l.Check(ctx, "10.0.0.1", "generate-batch")
	if !result.Allowed {
		t.Error("request after window expiry should be allowed")
	}
}

func TestRateLimiterIsolatesIPs(t *testing.T) {
	l, _ := newRateLimiter(1, time.Minute)
	ctx := context.Background()

	l.Check(ctx, "10.0.0.1", "generate-prompts")
	result, _ := l.Check(ctx, "10.0.0.2", "generate-prompts")
	if !result.Allowed {
		t.Error("a different IP must have its own window")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	l, _ := newRateLimiter(1, time.Minute)
	l.Reconfigure(RateLimitPolicy{Enabled: false})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		result, err := l.Check(ctx, "10.0.0.1", "generate-batch")
		if err != nil || !result.Allowed {
			t.Fatalf("disabled limiter must allow everything: %v %v", result, err)
		}
	}
}

func TestRateLimiterReconfigureAppliesToLiveWindows(t *testing.T) {
	l, _ := newRateLimiter(5, time.Minute)
	ctx := context.Background()

	l.Check(ctx, "10.0.0.1", "generate-batch")
	l.Check(ctx, "10.0.0.1", "generate-batch")

	l.Reconfigure(RateLimitPolicy{
		Enabled: true,
		Config:  ratelimit.Config{Limit: 2, Window: time.Minute},
	})

	result, _ := l.Check(ctx, "10.0.0.1", "generate-batch")
	if result.Allowed {
		t.Error("lowered limit should apply to the in-flight window")
	}
}
