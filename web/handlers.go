package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pagecraft/pagecraft/domain/page"
	"github.com/pagecraft/pagecraft/pkg/apierror"
)

const mockNote = "Images are mock placeholders for layout preview"

// maxBodyBytes bounds request bodies. Page HTML is the largest legitimate
// payload; 2 MiB leaves generous headroom.
const maxBodyBytes = 2 << 20

type generatePromptsRequest struct {
	ProductName      string `json:"productName"`
	Category         string `json:"category"`
	ProblemStatement string `json:"problemStatement"`
	BenefitStatement string `json:"benefitStatement"`
}

type generatePromptsResponse struct {
	Success         bool          `json:"success"`
	Prompts         []page.Prompt `json:"prompts"`
	Source          string        `json:"source"`
	BackgroundStyle string        `json:"backgroundStyle"`
}

type generateBatchRequest struct {
	Prompts []page.Prompt `json:"prompts"`
}

type generateBatchResponse struct {
	Success bool         `json:"success"`
	Results []page.Image `json:"results"`
	Source  string       `json:"source"`
	Note    string       `json:"note"`
}

type removeBackgroundRequest struct {
	ImageURL string `json:"imageUrl"`
}

type removeBackgroundResponse struct {
	Success           bool   `json:"success"`
	ProcessedImageURL string `json:"processedImageUrl"`
	Source            string `json:"source"`
	Note              string `json:"note"`
}

type packageResultRequest struct {
	HTML     string         `json:"html"`
	Images   []page.Image   `json:"images"`
	Metadata map[string]any `json:"metadata"`
}

type packageResultResponse struct {
	Success bool         `json:"success"`
	Package page.Package `json:"package"`
}

type usageStatusResponse struct {
	Success      bool   `json:"success"`
	Plan         string `json:"plan"`
	Period       string `json:"period"`
	RequestsUsed int    `json:"requestsUsed"`
	RequestsMax  int    `json:"requestsMax"`
	ImagesUsed   int    `json:"imagesUsed"`
	ImagesMax    int    `json:"imagesMax"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeSec int64  `json:"uptimeSec"`
	Timestamp string `json:"timestamp"`
}

// GeneratePrompts handles POST /api/generate-prompts.
func (h *Handler) GeneratePrompts(w http.ResponseWriter, r *http.Request) {
	var req generatePromptsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Write(w, err)
		return
	}
	if strings.TrimSpace(req.ProductName) == "" {
		apierror.Write(w, apierror.Validation("productName is required"))
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		apierror.Write(w, apierror.Validation("category is required"))
		return
	}

	result, err := h.generate.GeneratePrompts(r.Context(), apiKey(r), page.Product{
		Name:     req.ProductName,
		Category: req.Category,
		Problem:  req.ProblemStatement,
		Benefit:  req.BenefitStatement,
	})
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generatePromptsResponse{
		Success:         true,
		Prompts:         result.Prompts,
		Source:          result.Source,
		BackgroundStyle: string(result.BackgroundStyle),
	})
}

// GenerateBatch handles POST /api/generate-batch.
func (h *Handler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req generateBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Write(w, err)
		return
	}
	if len(req.Prompts) == 0 {
		apierror.Write(w, apierror.Validation("prompts must be a non-empty array"))
		return
	}
	for i, p := range req.Prompts {
		if strings.TrimSpace(p.PromptText) == "" {
			apierror.Write(w, apierror.Validation(
				fmt.Sprintf("prompts[%d].prompt_text is required", i)))
			return
		}
	}

	result, err := h.generate.GenerateBatch(r.Context(), apiKey(r), req.Prompts)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateBatchResponse{
		Success: true,
		Results: result.Images,
		Source:  result.Source,
		Note:    mockNote,
	})
}

// RemoveBackground handles POST /api/remove-background.
func (h *Handler) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	var req removeBackgroundRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Write(w, err)
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		apierror.Write(w, apierror.Validation("imageUrl is required"))
		return
	}

	result, err := h.generate.RemoveBackground(r.Context(), apiKey(r), req.ImageURL)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, removeBackgroundResponse{
		Success:           true,
		ProcessedImageURL: result.ProcessedImageURL,
		Source:            result.Source,
		Note:              mockNote,
	})
}

// PackageResult handles POST /api/package-result. Rate limited like every
// API route but free of quota cost.
func (h *Handler) PackageResult(w http.ResponseWriter, r *http.Request) {
	var req packageResultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierror.Write(w, err)
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		apierror.Write(w, apierror.Validation("html is required"))
		return
	}

	pkg := h.generate.PackageResult(req.HTML, req.Images, req.Metadata)

	writeJSON(w, http.StatusOK, packageResultResponse{Success: true, Package: pkg})
}

// UsageStatus handles GET /api/usage-status, reporting the caller's current
// period consumption against their plan.
func (h *Handler) UsageStatus(w http.ResponseWriter, r *http.Request) {
	uc := h.usage.ResolveContext(apiKey(r))
	record, quota, err := h.usage.Snapshot(r.Context(), uc)
	if err != nil {
		apierror.Write(w, apierror.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, usageStatusResponse{
		Success:      true,
		Plan:         string(uc.Plan),
		Period:       uc.PeriodKey,
		RequestsUsed: record.RequestCount,
		RequestsMax:  quota.MaxRequests,
		ImagesUsed:   record.ImageCount,
		ImagesMax:    quota.MaxImages,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.version,
		UptimeSec: int64(time.Since(h.startTime).Seconds()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeJSON decodes a bounded JSON body, mapping every decode failure to a
// validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apierror.Validation("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
