// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/pagecraft/pagecraft/domain/page"
	"github.com/pagecraft/pagecraft/domain/ratelimit"
	"github.com/pagecraft/pagecraft/domain/usage"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// UsageStore persists per-(user, period) usage records, keyed by the
// composite key from usage.Key. The store exclusively owns its records;
// callers replace records wholesale, never mutate in place.
type UsageStore interface {
	// Get retrieves the record for a key. The second return is false when
	// no record exists yet (absence means zero usage).
	Get(ctx context.Context, key string) (usage.Record, bool, error)

	// Set overwrites the record for a key wholesale.
	Set(ctx context.Context, key string, record usage.Record) error

	// Increment atomically commits one request using the given number of
	// images, creating the record if absent, and returns the new record.
	Increment(ctx context.Context, key string, images int, now time.Time) (usage.Record, error)

	// Reset clears every record. Test isolation only; must never be
	// reachable from an externally-facing route.
	Reset(ctx context.Context) error

	// PruneBefore removes records last updated before the cutoff.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// RateLimitStore persists per-IP rate limit window state. The store
// exclusively owns its map; all access goes through Get/Set.
type RateLimitStore interface {
	// Get retrieves current window state for an IP. The zero state means
	// the IP has never been seen.
	Get(ctx context.Context, ip string) (ratelimit.WindowState, error)

	// Set updates window state for an IP.
	Set(ctx context.Context, ip string, state ratelimit.WindowState) error

	// PruneBefore removes entries whose window started before the cutoff.
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// -----------------------------------------------------------------------------
// External Provider Ports
// -----------------------------------------------------------------------------

// PromptGenerator produces image-generation prompts for a product.
type PromptGenerator interface {
	GeneratePrompts(ctx context.Context, product page.Product) ([]page.Prompt, error)
}

// ImageGenerator turns prompts into images.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, prompts []page.Prompt) ([]page.Image, error)
}

// BackgroundRemover removes the background from a product image.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, imageURL string) (string, error)
}
