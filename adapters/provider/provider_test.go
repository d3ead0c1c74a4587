package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pagecraft/pagecraft/adapters/provider"
	"github.com/pagecraft/pagecraft/domain/page"
	"github.com/pagecraft/pagecraft/pkg/apierror"
)

func TestMockImageGenerator(t *testing.T) {
	g := provider.NewMockImageGenerator()
	prompts := []page.Prompt{
		{ImageRole: "hero", PromptText: "a"},
		{PromptText: "b"}, // no role
	}

	images, err := g.GenerateImages(context.Background(), prompts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}
	if images[0].ImageRole != "hero" {
		t.Errorf("role = %q, want hero", images[0].ImageRole)
	}
	if images[1].ImageRole != "image_1" {
		t.Errorf("fallback role = %q, want image_1", images[1].ImageRole)
	}
	for _, img := range images {
		if img.Status != provider.StatusMockGenerated {
			t.Errorf("status = %q, want %q", img.Status, provider.StatusMockGenerated)
		}
		if !strings.HasPrefix(img.ImageURL, "https://via.placeholder.com/") {
			t.Errorf("url = %q", img.ImageURL)
		}
	}
}

func TestMockBackgroundRemover_EchoesInput(t *testing.T) {
	r := provider.NewMockBackgroundRemover()

	got, err := r.RemoveBackground(context.Background(), "https://example.com/shot.png")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got != "https://example.com/shot.png" {
		t.Errorf("got %q, want input echoed", got)
	}
}

func TestLocalPromptGenerator(t *testing.T) {
	g := provider.NewLocalPromptGenerator()

	prompts, err := g.GeneratePrompts(context.Background(), page.Product{Name: "X", Category: page.CategoryTech})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(prompts) != 6 {
		t.Errorf("got %d prompts, want 6", len(prompts))
	}
}

func geminiReply(t *testing.T, text string) []byte {
	t.Helper()
	body := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestGeminiPromptGenerator_ParsesReply(t *testing.T) {
	reply := "```json\n[{\"image_role\":\"hero\",\"prompt_text\":\"studio shot\",\"aspect_ratio\":\"4:3\"}]\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write(geminiReply(t, reply))
	}))
	defer srv.Close()

	g := provider.NewGeminiPromptGeneratorWithBaseURL("test-key", srv.URL)
	prompts, err := g.GeneratePrompts(context.Background(), page.Product{Name: "X"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(prompts) != 1 || prompts[0].ImageRole != "hero" {
		t.Errorf("prompts = %+v", prompts)
	}
}

func TestGeminiPromptGenerator_UnparseableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(t, "sorry, I cannot help with that"))
	}))
	defer srv.Close()

	g := provider.NewGeminiPromptGeneratorWithBaseURL("test-key", srv.URL)
	if _, err := g.GeneratePrompts(context.Background(), page.Product{Name: "X"}); err == nil {
		t.Error("expected error for unparseable reply")
	}
}

func TestGeminiPromptGenerator_UpstreamStatusCarried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := provider.NewGeminiPromptGeneratorWithBaseURL("test-key", srv.URL)
	_, err := g.GeneratePrompts(context.Background(), page.Product{Name: "X"})

	if apierror.StatusOf(err) != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 so retries short-circuit", apierror.StatusOf(err))
	}
}
