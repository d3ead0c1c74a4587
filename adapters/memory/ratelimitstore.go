package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pagecraft/pagecraft/domain/ratelimit"
	"github.com/pagecraft/pagecraft/ports"
)

// RateLimitStore is an in-memory implementation of ports.RateLimitStore,
// keyed by client IP.
type RateLimitStore struct {
	mu    sync.RWMutex
	state map[string]ratelimit.WindowState
}

// NewRateLimitStore creates a new in-memory rate limit store.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		state: make(map[string]ratelimit.WindowState),
	}
}

// Get retrieves current window state for an IP.
func (s *RateLimitStore) Get(ctx context.Context, ip string) (ratelimit.WindowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[ip], nil
}

// Set updates window state for an IP.
func (s *RateLimitStore) Set(ctx context.Context, ip string, state ratelimit.WindowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[ip] = state
	return nil
}

// PruneBefore removes entries whose window started before the cutoff.
func (s *RateLimitStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for ip, state := range s.state {
		if state.WindowStart.Before(cutoff) {
			delete(s.state, ip)
			removed++
		}
	}
	return removed, nil
}

// Clear removes all state (for testing).
func (s *RateLimitStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = make(map[string]ratelimit.WindowState)
}

// Len returns the number of tracked IPs (for testing).
func (s *RateLimitStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}

// Ensure interface compliance.
var _ ports.RateLimitStore = (*RateLimitStore)(nil)
