// Package page provides value types and pure functions for landing page
// content: image prompt construction and single-file HTML packaging.
package page

import (
	"fmt"
	"strings"
	"time"
)

// Product describes the product the landing page is for.
type Product struct {
	Name     string
	Category string
	Problem  string
	Benefit  string
}

// Prompt is one image-generation prompt for a landing page slot.
type Prompt struct {
	ImageRole   string `json:"image_role"`
	PromptText  string `json:"prompt_text"`
	AspectRatio string `json:"aspect_ratio"`
}

// Image is one generated (or mock-generated) landing page image.
type Image struct {
	ImageRole string `json:"image_role"`
	ImageURL  string `json:"image_url"`
	Status    string `json:"status"`
}

// BackgroundStyle controls how product shots are staged.
type BackgroundStyle string

const (
	BackgroundTransparent BackgroundStyle = "transparent"
	BackgroundWhiteStudio BackgroundStyle = "white_studio"
	BackgroundLifestyle   BackgroundStyle = "lifestyle"
)

// Known categories with dedicated prompt sets. Anything else falls back to
// the beauty set.
const (
	CategoryBeauty  = "beauty"
	CategoryHealth  = "health"
	CategoryKitchen = "kitchen"
	CategoryFitness = "fitness"
	CategoryTech    = "tech"
)

// DeriveBackgroundStyle picks a staging style from the product.
// This is a PURE function.
func DeriveBackgroundStyle(p Product) BackgroundStyle {
	transparentProducts := []string{
		"phone", "laptop", "tablet", "watch", "headphone",
		"speaker", "camera", "device", "gadget",
	}
	name := strings.ToLower(p.Name)
	for _, word := range transparentProducts {
		if strings.Contains(name, word) {
			return BackgroundTransparent
		}
	}

	switch p.Category {
	case CategoryBeauty, CategoryHealth:
		return BackgroundWhiteStudio
	case CategoryKitchen, CategoryFitness:
		return BackgroundLifestyle
	case CategoryTech:
		return BackgroundTransparent
	default:
		return BackgroundWhiteStudio
	}
}

// BuildPrompts constructs the six landing page image prompts for a product
// from the local template library. Used directly in demo installs and as the
// fallback when the remote prompt provider fails.
// This is a PURE function.
func BuildPrompts(p Product) []Prompt {
	set, ok := promptLibrary[p.Category]
	if !ok {
		set = promptLibrary[CategoryBeauty]
	}

	return []Prompt{
		{ImageRole: "hero", PromptText: set.hero(p), AspectRatio: "4:3"},
		{ImageRole: "before", PromptText: set.before(p), AspectRatio: "3:4"},
		{ImageRole: "after", PromptText: set.after(p), AspectRatio: "3:4"},
		{ImageRole: "expert", PromptText: set.expert(p), AspectRatio: "1:1"},
		{ImageRole: "lifestyle", PromptText: set.lifestyle(p), AspectRatio: "16:9"},
		{ImageRole: "detail", PromptText: set.detail(p), AspectRatio: "1:1"},
	}
}

type promptSet struct {
	hero, before, after, expert, lifestyle, detail func(Product) string
}

var promptLibrary = map[string]promptSet{
	CategoryBeauty: {
		hero: func(p Product) string {
			return fmt.Sprintf("Professional product photography of %s, elegant beauty product, soft lighting, premium packaging, clean background, high-end cosmetic advertisement style", p.Name)
		},
		before: func(p Product) string {
			return "Woman with damaged dry hair looking concerned, before using hair care product, realistic portrait, natural lighting"
		},
		after: func(p Product) string {
			return fmt.Sprintf("Same woman with beautiful healthy shiny hair looking happy and confident, after using %s, radiant glow, professional beauty photography", p.Name)
		},
		expert: func(p Product) string {
			return "Professional dermatologist in white coat recommending skincare product, trustworthy medical expert, clean clinical background"
		},
		lifestyle: func(p Product) string {
			return fmt.Sprintf("Woman doing hair care routine in elegant bathroom, using %s, morning routine, natural light from window, lifestyle photography", p.Name)
		},
		detail: func(p Product) string {
			return fmt.Sprintf("Close-up macro shot of %s showing texture and quality, premium product detail, soft focus background", p.Name)
		},
	},
	CategoryHealth: {
		hero: func(p Product) string {
			return fmt.Sprintf("Premium health supplement %s, professional product photography, clean white background, pharmaceutical quality, vibrant colors", p.Name)
		},
		before: func(p Product) string {
			return "Tired stressed person at work, low energy, unhealthy lifestyle, needs health supplement"
		},
		after: func(p Product) string {
			return fmt.Sprintf("Energetic happy person active lifestyle, healthy and fit, after taking %s, vitality and wellness", p.Name)
		},
		expert: func(p Product) string {
			return "Professional nutritionist doctor recommending health supplement, medical office background, trustworthy healthcare professional"
		},
		lifestyle: func(p Product) string {
			return fmt.Sprintf("Active person exercising outdoors, healthy lifestyle, taking %s as part of wellness routine, morning workout", p.Name)
		},
		detail: func(p Product) string {
			return fmt.Sprintf("Close-up of %s supplement capsules, high quality product detail, pharmaceutical grade", p.Name)
		},
	},
	CategoryKitchen: {
		hero: func(p Product) string {
			return fmt.Sprintf("Modern kitchen appliance %s, sleek design, professional product photography, stainless steel finish, premium quality", p.Name)
		},
		before: func(p Product) string {
			return "Messy kitchen with frustrated person cooking, chaotic cooking environment, needs better appliances"
		},
		after: func(p Product) string {
			return fmt.Sprintf("Clean organized modern kitchen with happy person cooking easily with %s, efficient cooking, beautiful kitchen interior", p.Name)
		},
		expert: func(p Product) string {
			return "Professional chef demonstrating kitchen appliance, culinary expert, professional kitchen background"
		},
		lifestyle: func(p Product) string {
			return fmt.Sprintf("Family cooking together in modern kitchen using %s, happy family moment, warm home atmosphere", p.Name)
		},
		detail: func(p Product) string {
			return fmt.Sprintf("Close-up detail shot of %s showing quality craftsmanship, premium materials, elegant design", p.Name)
		},
	},
	CategoryFitness: {
		hero: func(p Product) string {
			return fmt.Sprintf("Premium fitness device %s, sleek sporty design, professional product photography, modern tech aesthetic", p.Name)
		},
		before: func(p Product) string {
			return "Overweight person struggling with exercise, low motivation, needs fitness help"
		},
		after: func(p Product) string {
			return fmt.Sprintf("Fit athletic person confident workout, healthy body transformation, using %s for fitness tracking", p.Name)
		},
		expert: func(p Product) string {
			return "Professional fitness trainer recommending workout device, gym background, fitness expert"
		},
		lifestyle: func(p Product) string {
			return fmt.Sprintf("Group fitness class outdoor exercise, active healthy lifestyle, people using %s during workout", p.Name)
		},
		detail: func(p Product) string {
			return fmt.Sprintf("Close-up of %s fitness tracker showing screen and details, premium wearable technology", p.Name)
		},
	},
	CategoryTech: {
		hero: func(p Product) string {
			return fmt.Sprintf("Modern tech gadget %s, sleek minimalist design, professional product photography, floating on transparent background, premium technology", p.Name)
		},
		before: func(p Product) string {
			return "Frustrated person with slow outdated device, technology problems, needs upgrade"
		},
		after: func(p Product) string {
			return fmt.Sprintf("Happy person using modern %s, productive and satisfied, modern workspace, technology improving life", p.Name)
		},
		expert: func(p Product) string {
			return "Tech reviewer professional unboxing and reviewing gadget, modern studio setup, technology expert"
		},
		lifestyle: func(p Product) string {
			return fmt.Sprintf("Person using %s in coffee shop, modern mobile lifestyle, productive on-the-go, urban setting", p.Name)
		},
		detail: func(p Product) string {
			return fmt.Sprintf("Close-up macro shot of %s showing premium build quality, detailed product photography, technology craftsmanship", p.Name)
		},
	},
}

// Package bundles a generated landing page for export.
type Package struct {
	ID        string         `json:"id"`
	HTML      string         `json:"html"`
	Images    []Image        `json:"images"`
	Metadata  map[string]any `json:"metadata"`
	Export    Export         `json:"export"`
	Timestamp string         `json:"timestamp"`
}

// Export holds the two export shapes: a self-contained HTML document and the
// structured parts.
type Export struct {
	SingleFile string     `json:"singleFile"`
	Structured Structured `json:"structured"`
}

// Structured is the raw-parts export.
type Structured struct {
	HTML     string         `json:"html"`
	Images   []Image        `json:"images"`
	Metadata map[string]any `json:"metadata"`
}

// SingleFileHTML wraps a rendered landing page body into a self-contained
// document. RTL with the Cairo font, matching the generated page templates.
// This is a PURE function.
func SingleFileHTML(body string) string {
	return `<!DOCTYPE html>
<html lang="ar" dir="rtl">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Landing Page</title>
    <link href="https://fonts.googleapis.com/css2?family=Cairo:wght@600&display=swap" rel="stylesheet">
    <style>*{margin:0;padding:0;box-sizing:border-box}body{font-family:'Cairo',sans-serif;font-weight:600}</style>
</head>
<body>
` + body + `
</body>
</html>`
}

// BuildPackage assembles the export package for a rendered page.
// This is a PURE function (deterministic for a given id and timestamp).
func BuildPackage(id, html string, images []Image, metadata map[string]any, now time.Time) Package {
	return Package{
		ID:       id,
		HTML:     html,
		Images:   images,
		Metadata: metadata,
		Export: Export{
			SingleFile: SingleFileHTML(html),
			Structured: Structured{HTML: html, Images: images, Metadata: metadata},
		},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
