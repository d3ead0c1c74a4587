package provider

import (
	"context"

	"github.com/pagecraft/pagecraft/domain/page"
	"github.com/pagecraft/pagecraft/ports"
)

// LocalPromptGenerator builds prompts from the built-in template library.
// It never fails and needs no credentials, which also makes it the fallback
// when the remote generator is unavailable.
type LocalPromptGenerator struct{}

// NewLocalPromptGenerator creates a local prompt generator.
func NewLocalPromptGenerator() *LocalPromptGenerator {
	return &LocalPromptGenerator{}
}

// GeneratePrompts returns the template prompts for the product.
func (g *LocalPromptGenerator) GeneratePrompts(ctx context.Context, product page.Product) ([]page.Prompt, error) {
	return page.BuildPrompts(product), nil
}

// Ensure interface compliance.
var _ ports.PromptGenerator = (*LocalPromptGenerator)(nil)
