package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/config"
)

// NewFromConfig builds the configured text-analysis client.
func NewFromConfig(cfg *config.ClassifierConfig, logger *zap.Logger) (LLMClient, error) {
	clientCfg := &Config{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
	}

	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(clientCfg, logger)
	case "anthropic":
		return NewAnthropicClient(clientCfg, logger)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}
