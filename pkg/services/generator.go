package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/apperrors"
	"github.com/querygate/engine/pkg/llm"
	"github.com/querygate/engine/pkg/models"
	"github.com/querygate/engine/pkg/prompts"
	"github.com/querygate/engine/pkg/retrieval"
	"github.com/querygate/engine/pkg/retry"
)

// GeneratorService produces SQL candidates for natural-language
// requests via the completion collaborator.
type GeneratorService interface {
	// Generate translates a request into a candidate. A vague request
	// yields a candidate with IsVague=true and empty SQL.
	Generate(ctx context.Context, request string, schema *models.SchemaDescriptor) (*models.QueryCandidate, error)

	// Regenerate retries after a structural execution failure, feeding
	// the prior SQL and failure detail back to the model.
	Regenerate(ctx context.Context, request string, schema *models.SchemaDescriptor, attempt *models.RegenerationAttempt) (*models.QueryCandidate, error)
}

type generatorService struct {
	client      llm.Client
	retriever   retrieval.ContextRetriever
	temperature float64
	retryCfg    *retry.Config
	logger      *zap.Logger
}

// NewGeneratorService creates a generator with the given collaborators.
func NewGeneratorService(client llm.Client, retriever retrieval.ContextRetriever, temperature float64, logger *zap.Logger) GeneratorService {
	return &generatorService{
		client:      client,
		retriever:   retriever,
		temperature: temperature,
		retryCfg:    retry.DefaultConfig(),
		logger:      logger.Named("generator"),
	}
}

const contextSnippetLimit = 5

func (s *generatorService) Generate(ctx context.Context, request string, schema *models.SchemaDescriptor) (*models.QueryCandidate, error) {
	snippets, err := s.retriever.Retrieve(ctx, request, contextSnippetLimit)
	if err != nil {
		// Context is an enrichment, not a requirement.
		s.logger.Warn("context retrieval failed", zap.Error(err))
		snippets = nil
	}

	prompt := prompts.BuildGenerationPrompt(request, schema, snippets)
	return s.complete(ctx, request, prompt)
}

func (s *generatorService) Regenerate(ctx context.Context, request string, schema *models.SchemaDescriptor, attempt *models.RegenerationAttempt) (*models.QueryCandidate, error) {
	prompt := prompts.BuildRegenerationPrompt(request, schema, attempt)
	return s.complete(ctx, request, prompt)
}

func (s *generatorService) complete(ctx context.Context, request, prompt string) (*models.QueryCandidate, error) {
	response, err := retry.DoWithResult(ctx, s.retryCfg, func() (string, error) {
		return s.client.GenerateResponse(ctx, prompt, prompts.GenerationSystemPrompt(), s.temperature)
	})
	if err != nil {
		return nil, fmt.Errorf("generate sql: %w", err)
	}

	if llm.IsVagueSignal(response) {
		s.logger.Info("generator declared request vague")
		return &models.QueryCandidate{Request: request, IsVague: true}, nil
	}

	sqlText := llm.ExtractSQL(response)
	if sqlText == "" {
		return nil, apperrors.ErrEmptyCandidate
	}

	s.logger.Debug("generated candidate", zap.Int("sql_len", len(sqlText)))
	return &models.QueryCandidate{Request: request, SQL: sqlText}, nil
}
