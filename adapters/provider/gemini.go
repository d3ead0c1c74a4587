package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pagecraft/pagecraft/domain/page"
	"github.com/pagecraft/pagecraft/pkg/apierror"
	"github.com/pagecraft/pagecraft/ports"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-1.5-pro"
)

// GeminiPromptGenerator asks Gemini to write image-generation prompts for a
// product. Responses are expected as a JSON array of prompt objects; anything
// unparseable is an error so the caller can fall back to local templates.
type GeminiPromptGenerator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeminiPromptGenerator creates a Gemini prompt generator.
func NewGeminiPromptGenerator(apiKey string) *GeminiPromptGenerator {
	return &GeminiPromptGenerator{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewGeminiPromptGeneratorWithBaseURL is used by tests to point at a stub.
func NewGeminiPromptGeneratorWithBaseURL(apiKey, baseURL string) *GeminiPromptGenerator {
	g := NewGeminiPromptGenerator(apiKey)
	g.baseURL = baseURL
	return g
}

// GeneratePrompts calls Gemini and parses its reply into prompts.
func (g *GeminiPromptGenerator) GeneratePrompts(ctx context.Context, product page.Product) ([]page.Prompt, error) {
	text, err := g.generateContent(ctx, buildInstruction(product))
	if err != nil {
		return nil, err
	}

	prompts, err := parsePrompts(text)
	if err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return prompts, nil
}

type geminiRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiPromptGenerator) generateContent(ctx context.Context, instruction string) (string, error) {
	var reqBody geminiRequest
	reqBody.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	reqBody.Contents[0].Parts = []struct {
		Text string `json:"text"`
	}{{Text: instruction}}
	reqBody.GenerationConfig.MaxOutputTokens = 2048
	reqBody.GenerationConfig.Temperature = 0.7

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, geminiModel, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		// Carry the upstream status so the retry wrapper can short-circuit
		// on client errors and rate limits.
		return "", apierror.New(resp.StatusCode, apierror.CodeInternal,
			fmt.Sprintf("gemini returned status %d", resp.StatusCode))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildInstruction(product page.Product) string {
	return fmt.Sprintf(`You are an art director for product landing pages.
Write image generation prompts for the product below, one per landing page slot.

Product: %s
Category: %s
Problem it solves: %s
Key benefit: %s

Respond with ONLY a JSON array. Each element must have the fields
"image_role" (one of hero, before, after, expert, lifestyle, detail),
"prompt_text" and "aspect_ratio".`,
		product.Name, product.Category, product.Problem, product.Benefit)
}

// parsePrompts extracts the JSON array from the model reply, tolerating
// markdown code fences around it.
func parsePrompts(text string) ([]page.Prompt, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in reply")
	}

	var prompts []page.Prompt
	if err := json.Unmarshal([]byte(text[start:end+1]), &prompts); err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("empty prompt list")
	}
	for i, p := range prompts {
		if p.ImageRole == "" || p.PromptText == "" {
			return nil, fmt.Errorf("prompt %d missing required fields", i)
		}
	}
	return prompts, nil
}

// Ensure interface compliance.
var _ ports.PromptGenerator = (*GeminiPromptGenerator)(nil)
