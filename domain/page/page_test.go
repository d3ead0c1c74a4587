package page_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pagecraft/pagecraft/domain/page"
)

func TestBuildPrompts_RolesAndRatios(t *testing.T) {
	prompts := page.BuildPrompts(page.Product{Name: "GlowSerum", Category: page.CategoryBeauty})

	if len(prompts) != 6 {
		t.Fatalf("got %d prompts, want 6", len(prompts))
	}

	wantRoles := []string{"hero", "before", "after", "expert", "lifestyle", "detail"}
	for i, role := range wantRoles {
		if prompts[i].ImageRole != role {
			t.Errorf("prompt %d role = %q, want %q", i, prompts[i].ImageRole, role)
		}
		if prompts[i].AspectRatio == "" {
			t.Errorf("prompt %d has no aspect ratio", i)
		}
	}
}

func TestBuildPrompts_EmbedsProductName(t *testing.T) {
	prompts := page.BuildPrompts(page.Product{Name: "TurboBlend", Category: page.CategoryKitchen})

	if !strings.Contains(prompts[0].PromptText, "TurboBlend") {
		t.Errorf("hero prompt does not mention product: %q", prompts[0].PromptText)
	}
}

func TestBuildPrompts_UnknownCategoryFallsBack(t *testing.T) {
	unknown := page.BuildPrompts(page.Product{Name: "Thing", Category: "automotive"})
	beauty := page.BuildPrompts(page.Product{Name: "Thing", Category: page.CategoryBeauty})

	if unknown[0].PromptText != beauty[0].PromptText {
		t.Error("unknown category should use the beauty prompt set")
	}
}

func TestDeriveBackgroundStyle(t *testing.T) {
	tests := []struct {
		name    string
		product page.Product
		want    page.BackgroundStyle
	}{
		{"tech category", page.Product{Name: "Widget", Category: page.CategoryTech}, page.BackgroundTransparent},
		{"beauty category", page.Product{Name: "Serum", Category: page.CategoryBeauty}, page.BackgroundWhiteStudio},
		{"kitchen category", page.Product{Name: "Blender", Category: page.CategoryKitchen}, page.BackgroundLifestyle},
		{"unknown category", page.Product{Name: "Thing", Category: "misc"}, page.BackgroundWhiteStudio},
		{"device name wins over category", page.Product{Name: "SmartWatch X", Category: page.CategoryBeauty}, page.BackgroundTransparent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := page.DeriveBackgroundStyle(tt.product); got != tt.want {
				t.Errorf("style = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSingleFileHTML(t *testing.T) {
	doc := page.SingleFileHTML("<h1>hello</h1>")

	if !strings.HasPrefix(doc, "<!DOCTYPE html>") {
		t.Error("missing doctype")
	}
	if !strings.Contains(doc, "<h1>hello</h1>") {
		t.Error("body not embedded")
	}
	if !strings.Contains(doc, `dir="rtl"`) {
		t.Error("document must be RTL")
	}
}

func TestBuildPackage(t *testing.T) {
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	images := []page.Image{{ImageRole: "hero", ImageURL: "https://example.com/1.png", Status: "mock_generated"}}
	meta := map[string]any{"product": "GlowSerum"}

	pkg := page.BuildPackage("pkg-1", "<div/>", images, meta, now)

	if pkg.ID != "pkg-1" {
		t.Errorf("id = %q", pkg.ID)
	}
	if pkg.Timestamp != "2025-02-03T04:05:06Z" {
		t.Errorf("timestamp = %q", pkg.Timestamp)
	}
	if pkg.Export.Structured.HTML != "<div/>" {
		t.Error("structured export missing html")
	}
	if !strings.Contains(pkg.Export.SingleFile, "<div/>") {
		t.Error("single-file export missing html")
	}
	if len(pkg.Export.Structured.Images) != 1 {
		t.Error("structured export missing images")
	}
}
