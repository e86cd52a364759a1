// Package llm builds generation call functions for the configured backend.
//
// A nil CallFunc means no backend is configured; callers take their
// deterministic fallback path instead. Generation is never a required
// dependency of the core.
package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	providerOpenAI = "openai"
	providerOllama = "ollama"
)

// CallFunc is the signature for a single LLM inference call.
type CallFunc func(ctx context.Context, prompt string) (string, error)

// CallerConfig holds configuration for creating generation callers.
type CallerConfig struct {
	Provider string // "openai" or "ollama"; empty disables generation
	Model    string // e.g. "gpt-4o-mini", "llama3.2"
	APIKey   string // required for openai
	BaseURL  string // override base URL
}

// NewJSONCaller creates a CallFunc whose output is constrained to a JSON
// object. Used by the intent router.
func NewJSONCaller(cfg CallerConfig) (CallFunc, error) {
	return newCaller(cfg, true)
}

// NewTextCaller creates a free-text CallFunc. Used by the response generator.
func NewTextCaller(cfg CallerConfig) (CallFunc, error) {
	return newCaller(cfg, false)
}

func newCaller(cfg CallerConfig, jsonMode bool) (CallFunc, error) {
	switch strings.ToLower(cfg.Provider) {
	case providerOpenAI:
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com"
		}
		return newOpenAICaller(cfg.APIKey, model, baseURL, jsonMode), nil

	case providerOllama:
		model := cfg.Model
		if model == "" {
			model = "llama3.2"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return newOllamaCaller(model, baseURL, jsonMode), nil

	case "":
		// No backend configured; deterministic paths only.
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
