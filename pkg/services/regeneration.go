package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/apperrors"
	"github.com/querygate/engine/pkg/models"
	"github.com/querygate/engine/pkg/observability"
)

// RegenerationController re-invokes SQL generation with failure
// feedback, bounded by a fixed attempt ceiling.
type RegenerationController interface {
	// Next produces a fresh candidate for the given attempt. Returns
	// apperrors.ErrRegenerationExhausted once the ceiling is reached;
	// the generation collaborator is not invoked in that case.
	Next(ctx context.Context, request string, schema *models.SchemaDescriptor, attempt *models.RegenerationAttempt) (*models.QueryCandidate, error)

	// Ceiling returns the configured maximum number of attempts.
	Ceiling() int
}

type regenerationController struct {
	generator   GeneratorService
	maxAttempts int
	logger      *zap.Logger
}

// NewRegenerationController creates a controller over the generator.
func NewRegenerationController(generator GeneratorService, maxAttempts int, logger *zap.Logger) RegenerationController {
	return &regenerationController{
		generator:   generator,
		maxAttempts: maxAttempts,
		logger:      logger.Named("regeneration"),
	}
}

func (c *regenerationController) Ceiling() int { return c.maxAttempts }

func (c *regenerationController) Next(ctx context.Context, request string, schema *models.SchemaDescriptor, attempt *models.RegenerationAttempt) (*models.QueryCandidate, error) {
	if attempt.AttemptNumber > c.maxAttempts {
		observability.ObserveRegeneration("exhausted")
		c.logger.Warn("regeneration ceiling reached",
			zap.Int("ceiling", c.maxAttempts))
		return nil, apperrors.ErrRegenerationExhausted
	}

	c.logger.Info("regenerating candidate",
		zap.Int("attempt", attempt.AttemptNumber),
		zap.Int("ceiling", c.maxAttempts))

	candidate, err := c.generator.Regenerate(ctx, request, schema, attempt)
	if err != nil {
		observability.ObserveRegeneration("generation_failed")
		return nil, err
	}

	observability.ObserveRegeneration("generated")
	return candidate, nil
}
