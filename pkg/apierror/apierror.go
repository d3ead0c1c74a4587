// Package apierror defines the stable error taxonomy surfaced at the API
// boundary. Every failure in the service maps to exactly one Code with a fixed
// HTTP status, so clients can branch on the machine-readable code rather than
// parsing messages.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeOperationLimit  Code = "OPERATION_LIMIT_EXCEEDED"
	CodeRateLimit       Code = "RATE_LIMIT_EXCEEDED"
	CodeUsageLimit      Code = "USAGE_LIMIT_EXCEEDED"
	CodeFeatureDisabled Code = "FEATURE_DISABLED"
	CodeRetryFailed     Code = "RETRY_FAILED"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Error carries everything the HTTP boundary needs to build a response
// without re-interpretation: status, code, and a human message. Err holds the
// underlying cause for diagnostics and is never sent to clients.
type Error struct {
	Status  int
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with an explicit status and code.
func New(status int, code Code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Validation reports malformed input. Clients must fix and resend.
func Validation(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message)
}

// OperationLimit reports a request whose shape violates static per-operation
// caps. Clients must shrink the request.
func OperationLimit(message string) *Error {
	return New(http.StatusBadRequest, CodeOperationLimit, message)
}

// RateLimited reports too many requests from one IP in the current window.
func RateLimited() *Error {
	return New(http.StatusTooManyRequests, CodeRateLimit, "Too many requests. Please try again later.")
}

// UsageLimit reports an exhausted period quota for the caller's plan.
func UsageLimit(message string) *Error {
	return New(http.StatusTooManyRequests, CodeUsageLimit, message)
}

// FeatureDisabled reports an operational kill-switch that is off.
func FeatureDisabled(feature string) *Error {
	return New(http.StatusServiceUnavailable, CodeFeatureDisabled,
		fmt.Sprintf("Feature %q is currently disabled", feature))
}

// RetryFailed reports an external dependency that failed after exhausting
// retries and timeouts. The last underlying error is kept for diagnostics.
func RetryFailed(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeRetryFailed,
		Message: "External service failed after retries",
		Err:     err,
	}
}

// Internal wraps an unanticipated failure.
func Internal(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "Something went wrong",
		Err:     err,
	}
}

// From coerces an arbitrary error into an *Error. Known API errors pass
// through, anything else becomes a 500 INTERNAL_ERROR.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

// StatusOf returns the HTTP status an error maps to, without coercing it.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
