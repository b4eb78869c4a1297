package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// NewProvider creates the configured provider wrapped with retries and metrics
func NewProvider(config Config, logger *zap.Logger) (Provider, error) {
	var (
		base Provider
		err  error
	)

	switch strings.ToLower(config.Provider) {
	case "anthropic", "claude":
		base, err = NewAnthropicProvider(config)

	case "openai":
		base, err = NewOpenAIProvider(config)

	case "gemini", "google":
		base, err = NewGeminiProvider(config)

	case "ollama":
		base, err = NewOllamaProvider(config)

	case "":
		return nil, fmt.Errorf("no LLM provider configured (supported: anthropic, openai, gemini, ollama)")

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: anthropic, openai, gemini, ollama)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return WithRetry(base, config.MaxRetries, logger), nil
}
