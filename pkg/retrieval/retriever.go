// Package retrieval supplies schema and usage context snippets for SQL
// generation prompts.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/llm"
)

// ContextRetriever returns the snippets most relevant to a request.
type ContextRetriever interface {
	Retrieve(ctx context.Context, request string, limit int) ([]string, error)
}

// EmbeddingStore is an in-memory vector store over context snippets.
// Snippets are embedded once on Add and ranked by cosine similarity at
// retrieval time. The corpus is small (schema notes, sample queries),
// so a linear scan is fine.
type EmbeddingStore struct {
	client llm.Client
	model  string
	logger *zap.Logger

	mu      sync.RWMutex
	entries []storeEntry
}

type storeEntry struct {
	text   string
	vector []float32
}

var _ ContextRetriever = (*EmbeddingStore)(nil)

// NewEmbeddingStore creates a store that embeds with the given client.
func NewEmbeddingStore(client llm.Client, embeddingModel string, logger *zap.Logger) *EmbeddingStore {
	return &EmbeddingStore{
		client: client,
		model:  embeddingModel,
		logger: logger.Named("retrieval"),
	}
}

// Add embeds a snippet and stores it.
func (s *EmbeddingStore) Add(ctx context.Context, text string) error {
	vector, err := s.client.CreateEmbedding(ctx, text, s.model)
	if err != nil {
		return fmt.Errorf("embed snippet: %w", err)
	}

	s.mu.Lock()
	s.entries = append(s.entries, storeEntry{text: text, vector: vector})
	s.mu.Unlock()
	return nil
}

// Retrieve returns up to limit snippets ranked by similarity to the
// request. An empty store returns no snippets and no error; generation
// works without context, just with less guidance.
func (s *EmbeddingStore) Retrieve(ctx context.Context, request string, limit int) ([]string, error) {
	s.mu.RLock()
	empty := len(s.entries) == 0
	s.mu.RUnlock()
	if empty || limit <= 0 {
		return nil, nil
	}

	queryVector, err := s.client.CreateEmbedding(ctx, request, s.model)
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}

	type scored struct {
		text  string
		score float64
	}

	s.mu.RLock()
	ranked := make([]scored, 0, len(s.entries))
	for _, entry := range s.entries {
		ranked = append(ranked, scored{text: entry.text, score: cosineSimilarity(queryVector, entry.vector)})
	}
	s.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if limit > len(ranked) {
		limit = len(ranked)
	}

	snippets := make([]string, 0, limit)
	for _, r := range ranked[:limit] {
		snippets = append(snippets, r.text)
	}
	return snippets, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NopRetriever returns no context. Used when no embedding provider is
// configured, such as with the anthropic provider.
type NopRetriever struct{}

var _ ContextRetriever = (*NopRetriever)(nil)

func (NopRetriever) Retrieve(_ context.Context, _ string, _ int) ([]string, error) {
	return nil, nil
}
