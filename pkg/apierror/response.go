package apierror

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON envelope for every error response.
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the stable code and a human message.
type ErrorDetail struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Body builds the response envelope for an error.
func Body(err error) ErrorBody {
	apiErr := From(err)
	return ErrorBody{
		Success: false,
		Error: ErrorDetail{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	}
}

// Write writes the error as a JSON response with its mapped status code.
func Write(w http.ResponseWriter, err error) {
	apiErr := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(Body(apiErr))
}
