package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when no generation provider is configured.
var ErrNotConfigured = errors.New("llm: generation provider not configured")

// ErrMalformedOutput is returned when the model's response cannot be parsed
// into a valid plan, or parses but violates the plan rules. Distinct from
// transport failures so callers can report it (and retry) separately.
var ErrMalformedOutput = errors.New("llm: model returned malformed plan output")

// APIError represents an HTTP error response from an LLM provider API.
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("llm: %s API error (status %d, code %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("llm: %s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// UserMessage returns a short, safe message suitable for end users.
func (e *APIError) UserMessage() string {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "The AI provider rejected the configured API key."
	case http.StatusTooManyRequests:
		return "The AI provider is rate limiting requests. Please try again shortly."
	case http.StatusNotFound:
		return "The configured model was not found at the AI provider."
	}
	if e.StatusCode >= 500 {
		return "The AI provider is currently unavailable. Please try again."
	}
	return "The AI provider returned an error. Please try again."
}
