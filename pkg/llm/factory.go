package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/config"
)

// NewFromConfig builds the completion client the configuration selects.
// Returns the Client interface to enable dependency injection of mocks.
func NewFromConfig(cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	clientCfg := &ClientConfig{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
	}

	switch cfg.Provider {
	case "openai", "":
		client, err := NewOpenAIClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return client, nil
	case "anthropic":
		client, err := NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
