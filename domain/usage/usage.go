// Package usage provides value types and pure functions for per-user usage
// accounting. All types are immutable values; state lives behind ports.
package usage

import (
	"fmt"
	"time"
)

// Plan is a named quota tier.
type Plan string

const (
	PlanDemo  Plan = "demo"
	PlanBasic Plan = "basic"
	PlanPro   Plan = "pro"
)

// ParsePlan maps a string to a Plan, falling back to demo for anything
// unrecognised so a bad config value can never grant a larger quota.
func ParsePlan(s string) Plan {
	switch Plan(s) {
	case PlanBasic:
		return PlanBasic
	case PlanPro:
		return PlanPro
	default:
		return PlanDemo
	}
}

// Context identifies who is consuming quota and in which billing period.
// It is resolved fresh on every request and never persisted.
type Context struct {
	UserID    string
	Plan      Plan
	PeriodKey string
}

// Key returns the composite store key for this context.
func (c Context) Key() string {
	return Key(c.UserID, c.PeriodKey)
}

// Record holds cumulative usage for one (user, period). Counters only ever
// grow within a period; a new period starts a fresh record.
type Record struct {
	RequestCount int
	ImageCount   int
	LastUpdated  time.Time
}

// Add returns the record after committing one request using n images.
func (r Record) Add(images int, now time.Time) Record {
	return Record{
		RequestCount: r.RequestCount + 1,
		ImageCount:   r.ImageCount + images,
		LastUpdated:  now,
	}
}

// PeriodKey returns the calendar-month bucket for t in UTC, e.g. "2025-03".
// Two calls within the same UTC month always agree.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Key builds the composite store key for a user and period.
func Key(userID, periodKey string) string {
	return fmt.Sprintf("%s:%s", userID, periodKey)
}
