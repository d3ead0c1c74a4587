package apierror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/pagecraft/pagecraft/pkg/apierror"
)

func TestConstructors_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    *apierror.Error
		status int
		code   apierror.Code
	}{
		{"validation", apierror.Validation("bad input"), 400, apierror.CodeValidation},
		{"operation limit", apierror.OperationLimit("too big"), 400, apierror.CodeOperationLimit},
		{"rate limited", apierror.RateLimited(), 429, apierror.CodeRateLimit},
		{"usage limit", apierror.UsageLimit("quota gone"), 429, apierror.CodeUsageLimit},
		{"feature disabled", apierror.FeatureDisabled("image_generation"), 503, apierror.CodeFeatureDisabled},
		{"retry failed", apierror.RetryFailed(errors.New("boom")), 500, apierror.CodeRetryFailed},
		{"internal", apierror.Internal(errors.New("boom")), 500, apierror.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.code)
			}
		})
	}
}

func TestFrom_PassesThroughAPIErrors(t *testing.T) {
	orig := apierror.UsageLimit("quota gone")
	got := apierror.From(orig)

	if got != orig {
		t.Error("expected the same *Error back")
	}
}

func TestFrom_WrappedAPIError(t *testing.T) {
	orig := apierror.RateLimited()
	wrapped := fmt.Errorf("handling request: %w", orig)

	got := apierror.From(wrapped)
	if got.Code != apierror.CodeRateLimit {
		t.Errorf("code = %q, want %q", got.Code, apierror.CodeRateLimit)
	}
}

func TestFrom_UnknownError(t *testing.T) {
	got := apierror.From(errors.New("nope"))

	if got.Status != 500 || got.Code != apierror.CodeInternal {
		t.Errorf("got %d %q, want 500 INTERNAL_ERROR", got.Status, got.Code)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apierror.RetryFailed(cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", apierror.OperationLimit("too big"))

	if !apierror.IsCode(err, apierror.CodeOperationLimit) {
		t.Error("expected IsCode to match through wrapping")
	}
	if apierror.IsCode(err, apierror.CodeUsageLimit) {
		t.Error("IsCode matched the wrong code")
	}
	if apierror.IsCode(errors.New("plain"), apierror.CodeInternal) {
		t.Error("IsCode matched a non-API error")
	}
}

func TestWrite_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	apierror.Write(rec, apierror.UsageLimit("Image quota exceeded for this period"))

	if rec.Code != 429 {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %q, want application/json", ct)
	}

	var body apierror.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Success {
		t.Error("success = true, want false")
	}
	if body.Error.Code != apierror.CodeUsageLimit {
		t.Errorf("code = %q, want %q", body.Error.Code, apierror.CodeUsageLimit)
	}
	if body.Error.Message == "" {
		t.Error("message is empty")
	}
}
