// Package limits provides pure functions for operation-limit and quota
// enforcement. All functions are deterministic with no side effects; callers
// compose them with store reads and decide when to commit.
package limits

import (
	"fmt"

	"github.com/pagecraft/pagecraft/domain/usage"
	"github.com/pagecraft/pagecraft/pkg/apierror"
)

// Tuple is the per-plan quota for one billing period.
type Tuple struct {
	MaxRequests int
	MaxImages   int
}

// OperationCaps are static, plan-independent caps on a single request's shape.
type OperationCaps struct {
	MaxImagesPerRequest int
	MaxBatchSize        int
}

// Config holds the full static limits policy. Values are policy decisions
// loaded from configuration, not computed.
type Config struct {
	Caps  OperationCaps
	Demo  Tuple
	Basic Tuple
	Pro   Tuple
}

// Defaults returns the shipped policy values.
func Defaults() Config {
	return Config{
		Caps:  OperationCaps{MaxImagesPerRequest: 4, MaxBatchSize: 6},
		Demo:  Tuple{MaxRequests: 20, MaxImages: 40},
		Basic: Tuple{MaxRequests: 200, MaxImages: 400},
		Pro:   Tuple{MaxRequests: 1000, MaxImages: 3000},
	}
}

// ForPlan returns the quota tuple for a plan. Unknown plans get demo limits.
func (c Config) ForPlan(p usage.Plan) Tuple {
	switch p {
	case usage.PlanBasic:
		return c.Basic
	case usage.PlanPro:
		return c.Pro
	default:
		return c.Demo
	}
}

// OperationInput describes the shape of a single request. Zero-valued fields
// mean "not declared" and are not checked.
type OperationInput struct {
	ImagesRequested int
	BatchSize       int
}

// CheckOperation validates a request's shape against static caps. The
// boundary is inclusive: a value exactly equal to the cap passes. This runs
// before any quota check or provider call, so oversized requests never
// consume quota or trigger paid API calls.
func CheckOperation(caps OperationCaps, in OperationInput) error {
	if in.ImagesRequested > caps.MaxImagesPerRequest {
		return apierror.OperationLimit(
			fmt.Sprintf("Images per request must not exceed %d", caps.MaxImagesPerRequest))
	}
	if in.BatchSize > caps.MaxBatchSize {
		return apierror.OperationLimit(
			fmt.Sprintf("Batch size must not exceed %d", caps.MaxBatchSize))
	}
	return nil
}

// CheckQuota validates a prospective request against the plan's period quota.
// It is a pure predicate over the current record plus the request's cost;
// absence of a record is represented by the zero Record. Both checks raise
// the same error kind so the wire-level response is indistinguishable from
// rate limiting, but the code stays distinct.
func CheckQuota(t Tuple, record usage.Record, requestedImages int) error {
	if record.RequestCount+1 > t.MaxRequests {
		return apierror.UsageLimit("Request limit exceeded for this period")
	}
	if record.ImageCount+requestedImages > t.MaxImages {
		return apierror.UsageLimit("Image quota exceeded for this period")
	}
	return nil
}
