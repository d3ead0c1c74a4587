// Package provider implements the external generation ports: a Gemini-backed
// prompt generator, a local template prompt generator, and mock image
// providers used until a real image backend is configured.
package provider

import (
	"context"
	"fmt"

	"github.com/pagecraft/pagecraft/domain/page"
	"github.com/pagecraft/pagecraft/ports"
)

// Status and source markers for mock-generated assets.
const (
	StatusMockGenerated = "mock_generated"
	SourceMock          = "mock"
	SourceLocal         = "local"
	SourceGemini        = "gemini"
)

// MockImageGenerator returns placeholder images instead of calling a paid
// image backend.
type MockImageGenerator struct{}

// NewMockImageGenerator creates a mock image generator.
func NewMockImageGenerator() *MockImageGenerator {
	return &MockImageGenerator{}
}

// GenerateImages produces one placeholder image per prompt.
func (g *MockImageGenerator) GenerateImages(ctx context.Context, prompts []page.Prompt) ([]page.Image, error) {
	images := make([]page.Image, len(prompts))
	for i, p := range prompts {
		role := p.ImageRole
		if role == "" {
			role = fmt.Sprintf("image_%d", i)
		}
		images[i] = page.Image{
			ImageRole: role,
			ImageURL:  fmt.Sprintf("https://via.placeholder.com/512?text=Mock+Image+%d", i+1),
			Status:    StatusMockGenerated,
		}
	}
	return images, nil
}

// MockBackgroundRemover echoes the input image untouched.
type MockBackgroundRemover struct{}

// NewMockBackgroundRemover creates a mock background remover.
func NewMockBackgroundRemover() *MockBackgroundRemover {
	return &MockBackgroundRemover{}
}

// RemoveBackground returns the same image URL without modification.
func (r *MockBackgroundRemover) RemoveBackground(ctx context.Context, imageURL string) (string, error) {
	return imageURL, nil
}

// Ensure interface compliance.
var (
	_ ports.ImageGenerator    = (*MockImageGenerator)(nil)
	_ ports.BackgroundRemover = (*MockBackgroundRemover)(nil)
)
