// Package app contains the orchestrating services. Services compose pure
// domain functions with stores and providers; all I/O happens at the edges
// via injected ports.
package app

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pagecraft/pagecraft/adapters/metrics"
	"github.com/pagecraft/pagecraft/domain/limits"
	"github.com/pagecraft/pagecraft/domain/usage"
	"github.com/pagecraft/pagecraft/ports"
)

// AnonymousUserID is the identity assigned to requests that present no API
// key. All anonymous traffic shares one quota bucket per period.
const AnonymousUserID = "anonymous"

// APIKey binds a bcrypt key hash to a resolved identity.
type APIKey struct {
	UserID string
	Plan   usage.Plan
	Hash   []byte
}

// UsagePolicy is the hot-reloadable part of usage enforcement. A policy is
// an immutable snapshot; Reconfigure swaps the whole value atomically so
// in-flight requests keep a consistent view.
type UsagePolicy struct {
	Limits   limits.Config
	DemoMode bool
	Keys     []APIKey
}

// UsageService enforces per-plan period quotas. Quota checks are pure reads;
// a commit goes through the store's atomic increment, so concurrent requests
// may transiently exceed a quota by at most the in-flight overlap, but
// counters never tear.
type UsageService struct {
	store   ports.UsageStore
	clock   ports.Clock
	logger  zerolog.Logger
	metrics *metrics.Collector

	policy atomic.Pointer[UsagePolicy]
}

// NewUsageService creates a usage service. metrics may be nil.
func NewUsageService(
	store ports.UsageStore,
	clock ports.Clock,
	logger zerolog.Logger,
	m *metrics.Collector,
	policy UsagePolicy,
) *UsageService {
	s := &UsageService{
		store:   store,
		clock:   clock,
		logger:  logger.With().Str("component", "usage").Logger(),
		metrics: m,
	}
	s.policy.Store(&policy)
	return s
}

// Reconfigure replaces the active policy. Used by config hot reload.
func (s *UsageService) Reconfigure(policy UsagePolicy) {
	s.policy.Store(&policy)
	s.logger.Info().
		Bool("demo_mode", policy.DemoMode).
		Int("api_keys", len(policy.Keys)).
		Msg("usage policy reconfigured")
}

// Policy returns the active policy snapshot.
func (s *UsageService) Policy() UsagePolicy {
	return *s.policy.Load()
}

// ResolveContext resolves the caller's identity and billing period for this
// request. An API key that matches a configured hash yields that key's user
// and plan; otherwise the caller is anonymous, on the demo plan when demo
// mode is on and the basic plan when it is off. The context is resolved
// fresh per request and never cached, so a plan change or a month rollover
// takes effect on the next request.
func (s *UsageService) ResolveContext(apiKey string) usage.Context {
	policy := s.policy.Load()
	periodKey := usage.PeriodKey(s.clock.Now())

	if apiKey != "" {
		for _, k := range policy.Keys {
			if bcrypt.CompareHashAndPassword(k.Hash, []byte(apiKey)) == nil {
				return usage.Context{UserID: k.UserID, Plan: k.Plan, PeriodKey: periodKey}
			}
		}
		s.logger.Debug().Msg("api key did not match any configured identity")
	}

	plan := usage.PlanBasic
	if policy.DemoMode {
		plan = usage.PlanDemo
	}
	return usage.Context{UserID: AnonymousUserID, Plan: plan, PeriodKey: periodKey}
}

// CheckOperation validates a request's declared shape against the static
// caps. Runs before any store read so oversized requests cost nothing.
func (s *UsageService) CheckOperation(in limits.OperationInput) error {
	policy := s.policy.Load()
	return limits.CheckOperation(policy.Limits.Caps, in)
}

// CheckQuota verifies the caller's period quota admits one more request
// using requestedImages images. The check does not reserve anything; the
// caller commits only after the operation succeeds.
func (s *UsageService) CheckQuota(ctx context.Context, uc usage.Context, requestedImages int) error {
	policy := s.policy.Load()

	record, _, err := s.store.Get(ctx, uc.Key())
	if err != nil {
		return err
	}

	if err := limits.CheckQuota(policy.Limits.ForPlan(uc.Plan), record, requestedImages); err != nil {
		s.logger.Warn().
			Str("user_id", uc.UserID).
			Str("plan", string(uc.Plan)).
			Str("period", uc.PeriodKey).
			Int("request_count", record.RequestCount).
			Int("image_count", record.ImageCount).
			Int("requested_images", requestedImages).
			Msg("quota exceeded")
		if s.metrics != nil {
			s.metrics.QuotaDenials.WithLabelValues(string(uc.Plan)).Inc()
		}
		return err
	}
	return nil
}

// Commit records one completed request and its image cost. Called only
// after the operation fully succeeds; a failed provider call costs nothing.
func (s *UsageService) Commit(ctx context.Context, uc usage.Context, images int) error {
	record, err := s.store.Increment(ctx, uc.Key(), images, s.clock.Now())
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.UsageRequests.WithLabelValues(string(uc.Plan)).Inc()
		s.metrics.UsageImages.WithLabelValues(string(uc.Plan)).Add(float64(images))
	}

	s.logger.Debug().
		Str("user_id", uc.UserID).
		Str("period", uc.PeriodKey).
		Int("request_count", record.RequestCount).
		Int("image_count", record.ImageCount).
		Msg("usage committed")
	return nil
}

// Snapshot returns the current record for a context, for status reporting.
// Absence reads as the zero record.
func (s *UsageService) Snapshot(ctx context.Context, uc usage.Context) (usage.Record, limits.Tuple, error) {
	policy := s.policy.Load()
	record, _, err := s.store.Get(ctx, uc.Key())
	if err != nil {
		return usage.Record{}, limits.Tuple{}, err
	}
	return record, policy.Limits.ForPlan(uc.Plan), nil
}
