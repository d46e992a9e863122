package llm

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/planfit/planfit/internal/models"
)

// Provider is the interface for LLM backends.
type Provider interface {
	// Generate sends a system prompt and user prompt to the LLM and returns
	// the response text. For plan generation the response is expected to be
	// a single JSON object.
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts Options) (*Response, error)

	// Ping validates connectivity and credentials. Returns nil if the
	// provider is reachable and authenticated.
	Ping(ctx context.Context) error

	// Name returns the display name of this provider (e.g. "OpenAI").
	Name() string
}

// Options controls LLM generation behavior.
type Options struct {
	Temperature float64
	MaxTokens   int
	// JSONOnly asks the provider to constrain output to a JSON object
	// (OpenAI response_format json_object).
	JSONOnly bool
}

// Response holds the LLM's output.
type Response struct {
	Content    string
	Model      string
	TokensUsed int
	Duration   time.Duration
	StopReason string
}

// NewProviderFromSettings creates a Provider using the current app_settings
// configuration (with env var overrides). The provider is constructed per
// call so settings changes take effect without a restart.
func NewProviderFromSettings(db *sql.DB) (Provider, error) {
	provider := models.GetSetting(db, "llm.provider")
	if provider == "" {
		return nil, ErrNotConfigured
	}

	model := models.GetSetting(db, "llm.model")
	apiKey := models.GetSetting(db, "llm.api_key")
	baseURL := models.GetSetting(db, "llm.base_url")
	timeout := time.Duration(models.GetSettingInt(db, "llm.timeout_seconds")) * time.Second

	switch provider {
	case "openai":
		if apiKey == "" {
			return nil, ErrNotConfigured
		}
		return NewOpenAIProvider(apiKey, model, baseURL, timeout), nil
	case "mock":
		return NewMockProvider(""), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}

// OptionsFromSettings reads generation parameters from app_settings.
func OptionsFromSettings(db *sql.DB) Options {
	return Options{
		Temperature: models.GetSettingFloat(db, "llm.temperature"),
		MaxTokens:   models.GetSettingInt(db, "llm.max_tokens"),
		JSONOnly:    true,
	}
}
