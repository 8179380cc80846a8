// Package llm provides the completion clients used for SQL generation.
package llm

import (
	"context"
)

// Client defines the interface for LLM operations: chat completion for
// SQL generation plus embeddings for context retrieval. Use this
// interface for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateResponse generates a chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// CreateEmbedding generates an embedding vector for the input text.
	CreateEmbedding(ctx context.Context, input string, model string) ([]float32, error)

	// GetModel returns the configured model name.
	GetModel() string
}
