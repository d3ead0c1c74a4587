package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pagecraft/pagecraft/adapters/metrics"
	"github.com/pagecraft/pagecraft/adapters/provider"
	"github.com/pagecraft/pagecraft/domain/limits"
	"github.com/pagecraft/pagecraft/domain/page"
	"github.com/pagecraft/pagecraft/pkg/apierror"
	"github.com/pagecraft/pagecraft/pkg/retry"
	"github.com/pagecraft/pagecraft/ports"
)

// FeaturePolicy holds the operational kill switches. A disabled feature
// rejects before any provider call or usage commit.
type FeaturePolicy struct {
	PromptGeneration  bool
	ImageGeneration   bool
	BackgroundRemoval bool
}

// RetryPolicy bounds provider calls. Zero values mean package defaults.
type RetryPolicy struct {
	Retries int
	Timeout time.Duration
}

// GeneratePolicy is the hot-reloadable part of the generate service.
type GeneratePolicy struct {
	Features FeaturePolicy
	Retry    RetryPolicy
}

// PromptsResult is the outcome of prompt generation.
type PromptsResult struct {
	Prompts         []page.Prompt
	Source          string
	BackgroundStyle page.BackgroundStyle
}

// BatchResult is the outcome of batch image generation.
type BatchResult struct {
	Images []page.Image
	Source string
}

// RemoveResult is the outcome of background removal.
type RemoveResult struct {
	ProcessedImageURL string
	Source            string
}

// GenerateService orchestrates the generation operations. Every operation
// follows the same sequence: resolve the caller, check static caps, check
// quota, check the feature switch, call the provider through the retry
// wrapper, and commit usage only after the provider succeeds. A failure at
// any step leaves usage untouched.
type GenerateService struct {
	usage   *UsageService
	prompts ports.PromptGenerator // nil when no remote provider is configured
	local   ports.PromptGenerator
	images  ports.ImageGenerator
	remover ports.BackgroundRemover
	idGen   ports.IDGenerator
	clock   ports.Clock
	logger  zerolog.Logger
	metrics *metrics.Collector

	policy atomic.Pointer[GeneratePolicy]
}

// NewGenerateService creates a generate service. prompts may be nil to use
// local template prompts only; metrics may be nil.
func NewGenerateService(
	usageSvc *UsageService,
	prompts ports.PromptGenerator,
	local ports.PromptGenerator,
	images ports.ImageGenerator,
	remover ports.BackgroundRemover,
	idGen ports.IDGenerator,
	clock ports.Clock,
	logger zerolog.Logger,
	m *metrics.Collector,
	policy GeneratePolicy,
) *GenerateService {
	s := &GenerateService{
		usage:   usageSvc,
		prompts: prompts,
		local:   local,
		images:  images,
		remover: remover,
		idGen:   idGen,
		clock:   clock,
		logger:  logger.With().Str("component", "generate").Logger(),
		metrics: m,
	}
	s.policy.Store(&policy)
	return s
}

// Reconfigure replaces the active policy. Used by config hot reload.
func (s *GenerateService) Reconfigure(policy GeneratePolicy) {
	s.policy.Store(&policy)
	s.logger.Info().
		Bool("prompt_generation", policy.Features.PromptGeneration).
		Bool("image_generation", policy.Features.ImageGeneration).
		Bool("background_removal", policy.Features.BackgroundRemoval).
		Msg("generate policy reconfigured")
}

func (s *GenerateService) retryOptions() retry.Options {
	policy := s.policy.Load()
	return retry.Options{
		Retries: policy.Retry.Retries,
		Timeout: policy.Retry.Timeout,
	}
}

// GeneratePrompts produces the six role prompts for a product. The remote
// provider is preferred; on failure or absence the local template set is
// used, so this operation degrades rather than erroring. Costs one request
// and zero images.
func (s *GenerateService) GeneratePrompts(ctx context.Context, apiKey string, product page.Product) (PromptsResult, error) {
	uc := s.usage.ResolveContext(apiKey)

	if err := s.usage.CheckQuota(ctx, uc, 0); err != nil {
		return PromptsResult{}, err
	}
	if !s.policy.Load().Features.PromptGeneration {
		return PromptsResult{}, apierror.FeatureDisabled("prompt generation")
	}

	prompts, source := s.resolvePrompts(ctx, product)

	if err := s.usage.Commit(ctx, uc, 0); err != nil {
		return PromptsResult{}, err
	}

	s.logger.Info().
		Str("user_id", uc.UserID).
		Str("source", source).
		Int("prompts", len(prompts)).
		Msg("prompts generated")

	return PromptsResult{
		Prompts:         prompts,
		Source:          source,
		BackgroundStyle: page.DeriveBackgroundStyle(product),
	}, nil
}

// resolvePrompts tries the remote provider through the retry wrapper and
// falls back to local templates when it fails or is not configured.
func (s *GenerateService) resolvePrompts(ctx context.Context, product page.Product) ([]page.Prompt, string) {
	if s.prompts != nil {
		prompts, err := retry.Do(ctx, func(ctx context.Context) ([]page.Prompt, error) {
			return s.prompts.GeneratePrompts(ctx, product)
		}, s.retryOptions())
		if err == nil {
			return prompts, provider.SourceGemini
		}
		s.logger.Warn().Err(err).Msg("remote prompt generation failed, using local templates")
		if s.metrics != nil {
			s.metrics.RetryExhausted.WithLabelValues(provider.SourceGemini).Inc()
		}
	}

	prompts, err := s.local.GeneratePrompts(ctx, product)
	if err != nil {
		// Local templates cannot fail today; keep the degradation total
		// if that ever changes.
		return page.BuildPrompts(product), provider.SourceLocal
	}
	return prompts, provider.SourceLocal
}

// GenerateBatch generates one image per prompt. Costs one request and one
// image per prompt; the commit happens only after all images come back, so
// a provider failure consumes nothing.
func (s *GenerateService) GenerateBatch(ctx context.Context, apiKey string, prompts []page.Prompt) (BatchResult, error) {
	uc := s.usage.ResolveContext(apiKey)

	if err := s.usage.CheckOperation(limits.OperationInput{
		ImagesRequested: len(prompts),
		BatchSize:       len(prompts),
	}); err != nil {
		return BatchResult{}, err
	}
	if err := s.usage.CheckQuota(ctx, uc, len(prompts)); err != nil {
		return BatchResult{}, err
	}
	if !s.policy.Load().Features.ImageGeneration {
		return BatchResult{}, apierror.FeatureDisabled("image generation")
	}

	images, err := retry.Do(ctx, func(ctx context.Context) ([]page.Image, error) {
		return s.images.GenerateImages(ctx, prompts)
	}, s.retryOptions())
	if err != nil {
		if s.metrics != nil {
			s.metrics.RetryExhausted.WithLabelValues(provider.SourceMock).Inc()
		}
		return BatchResult{}, err
	}

	if err := s.usage.Commit(ctx, uc, len(images)); err != nil {
		return BatchResult{}, err
	}

	s.logger.Info().
		Str("user_id", uc.UserID).
		Int("images", len(images)).
		Msg("batch generated")

	return BatchResult{Images: images, Source: provider.SourceMock}, nil
}

// RemoveBackground strips the background from one product image. Costs one
// request and zero images.
func (s *GenerateService) RemoveBackground(ctx context.Context, apiKey, imageURL string) (RemoveResult, error) {
	uc := s.usage.ResolveContext(apiKey)

	if err := s.usage.CheckQuota(ctx, uc, 0); err != nil {
		return RemoveResult{}, err
	}
	if !s.policy.Load().Features.BackgroundRemoval {
		return RemoveResult{}, apierror.FeatureDisabled("background removal")
	}

	processed, err := retry.Do(ctx, func(ctx context.Context) (string, error) {
		return s.remover.RemoveBackground(ctx, imageURL)
	}, s.retryOptions())
	if err != nil {
		if s.metrics != nil {
			s.metrics.RetryExhausted.WithLabelValues(provider.SourceMock).Inc()
		}
		return RemoveResult{}, err
	}

	if err := s.usage.Commit(ctx, uc, 0); err != nil {
		return RemoveResult{}, err
	}

	return RemoveResult{ProcessedImageURL: processed, Source: provider.SourceMock}, nil
}

// PackageResult assembles a rendered page into an export package. Pure
// assembly, no provider calls, no quota cost.
func (s *GenerateService) PackageResult(html string, images []page.Image, metadata map[string]any) page.Package {
	return page.BuildPackage(s.idGen.New(), html, images, metadata, s.clock.Now())
}
