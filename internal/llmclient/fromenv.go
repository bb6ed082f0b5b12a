package llmclient

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// FromEnv builds the provider named by provider, falling back to the
// LLM_PROVIDER environment variable and then to Gemini. API keys come
// from GEMINI_API_KEY / GROQ_API_KEY. model and tokenCap of zero pick
// the provider defaults.
func FromEnv(ctx context.Context, provider, model string, tokenCap int) (LLMClient, error) {
	if provider == "" {
		provider = os.Getenv("LLM_PROVIDER")
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "gemini":
		return NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"), model, tokenCap)
	case "groq":
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("llmclient: GROQ_API_KEY is not set")
		}
		return NewGroqClient(key, model, tokenCap), nil
	case "fake":
		return NewFakeClient(tokenCap), nil
	default:
		return nil, fmt.Errorf("llmclient: unknown provider %q", provider)
	}
}
