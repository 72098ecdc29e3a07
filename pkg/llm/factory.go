package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a provider client for the given kind ("openai" or "anthropic").
func New(kind string, cfg *ClientConfig, logger *zap.Logger) (Client, error) {
	switch kind {
	case "openai":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown provider kind %q", kind)
	}
}
