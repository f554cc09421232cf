// Package llm adapts external model providers behind a single Generate
// interface. The concrete backend is chosen once at startup from the
// environment; the rest of the application never sees a vendor SDK type.
package llm

import (
	"context"
	"fmt"
	"os"
)

// Provider is a text-in, text-out model backend. Generate is expected to
// honor ctx cancellation and return *ProviderError on failure.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

const (
	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-2.5-flash"
)

// NewProviderFromEnv selects and constructs the provider from LLM_PROVIDER
// (openai or gemini, default openai) and the matching API key variable.
func NewProviderFromEnv(ctx context.Context) (Provider, error) {
	name := os.Getenv("LLM_PROVIDER")
	if name == "" {
		name = "openai"
	}
	switch name {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIProvider(apiKey, model), nil
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			model = defaultGeminiModel
		}
		return NewGeminiProvider(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want openai or gemini)", name)
	}
}
