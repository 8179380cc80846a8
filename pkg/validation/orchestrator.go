package validation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/models"
	"github.com/querygate/engine/pkg/observability"
)

// Orchestrator classifies a candidate, selects a validation strategy,
// runs the checks, and folds their verdicts into one aggregated result.
// Sequential and concurrent runs reach the same outcome for the same
// candidate; the strategy only changes scheduling and cost.
type Orchestrator struct {
	security   Check
	schema     Check
	clarity    *ClarityScorer
	guardrail  Check
	classifier *ComplexityClassifier

	checkTimeout time.Duration
	logger       *zap.Logger
}

// OrchestratorConfig carries the tunables the orchestrator needs.
type OrchestratorConfig struct {
	ClarityThreshold float64
	MediumBoundary   int
	ComplexBoundary  int
	CheckTimeout     time.Duration
}

func NewOrchestrator(cfg OrchestratorConfig, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		security:     NewSecurityScreener(),
		schema:       NewSchemaChecker(),
		clarity:      NewClarityScorer(cfg.ClarityThreshold),
		guardrail:    NewStatementGuardrail(),
		classifier:   NewComplexityClassifier(cfg.MediumBoundary, cfg.ComplexBoundary),
		checkTimeout: cfg.CheckTimeout,
		logger:       logger.Named("validation"),
	}
}

// checkOrder is the canonical ordering for running checks sequentially
// and for reporting verdicts, whatever order they actually finished in.
func (o *Orchestrator) checkOrder() []Check {
	return []Check{o.security, o.schema, o.clarity, o.guardrail}
}

// Validate runs the full pipeline for one candidate.
func (o *Orchestrator) Validate(ctx context.Context, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) *models.AggregatedVerdict {
	start := time.Now()
	score, class, strategy := o.classifier.Classify(candidate)

	o.logger.Debug("classified candidate",
		zap.Int("score", score),
		zap.String("complexity", string(class)),
		zap.String("strategy", string(strategy)))

	var verdicts []models.CheckVerdict
	switch strategy {
	case models.StrategyConcurrent:
		verdicts = o.runConcurrent(ctx, candidate, schema)
	case models.StrategySequential:
		verdicts = o.runSequential(ctx, candidate, schema)
	default:
		verdicts = o.runMinimal(ctx, candidate, schema)
	}

	result := o.aggregate(verdicts, class, strategy)
	result.Clarity = o.clarity.Score(candidate.Request, schema)

	observability.ObserveValidation(string(result.Outcome), string(strategy), time.Since(start))
	o.logger.Info("validation complete",
		zap.String("outcome", string(result.Outcome)),
		zap.Duration("elapsed", time.Since(start)))
	return result
}

// runMinimal runs the security screen and the guardrail. Simple
// candidates skip the schema and clarity passes only when both cheap
// checks pass; any fast failure still surfaces normally.
func (o *Orchestrator) runMinimal(ctx context.Context, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) []models.CheckVerdict {
	verdicts := []models.CheckVerdict{o.runOne(ctx, o.security, candidate, schema)}
	if verdicts[0].Status != models.VerdictPass {
		return verdicts
	}
	verdicts = append(verdicts, o.runOne(ctx, o.schema, candidate, schema))
	if verdicts[1].Status != models.VerdictPass {
		return verdicts
	}
	verdicts = append(verdicts, o.runOne(ctx, o.guardrail, candidate, schema))
	return verdicts
}

// runSequential runs every check in canonical order, stopping at the
// first non-pass verdict.
func (o *Orchestrator) runSequential(ctx context.Context, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) []models.CheckVerdict {
	var verdicts []models.CheckVerdict
	for _, check := range o.checkOrder() {
		v := o.runOne(ctx, check, candidate, schema)
		verdicts = append(verdicts, v)
		if v.Status != models.VerdictPass {
			break
		}
	}
	return verdicts
}

// runConcurrent fans every check out on its own goroutine and collects
// all verdicts. Results are re-ordered into the canonical check order
// before aggregation so scheduling cannot change the reported failure.
func (o *Orchestrator) runConcurrent(ctx context.Context, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) []models.CheckVerdict {
	checks := o.checkOrder()
	results := make([]models.CheckVerdict, len(checks))

	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(slot int, c Check) {
			defer wg.Done()
			results[slot] = o.runOne(ctx, c, candidate, schema)
		}(i, check)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) runOne(ctx context.Context, check Check, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) models.CheckVerdict {
	if o.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.checkTimeout)
		defer cancel()
	}
	verdict := check.Run(ctx, candidate, schema)
	observability.ObserveCheck(check.Name(), string(verdict.Status))
	return verdict
}

// aggregate folds check verdicts into one outcome. Security failures
// dominate everything else; among the rest, a hard fail beats a
// clarification request, and verdicts keep canonical order.
func (o *Orchestrator) aggregate(verdicts []models.CheckVerdict, class models.ComplexityClass, strategy models.ValidationStrategy) *models.AggregatedVerdict {
	outcome := models.OutcomeAccept
	for _, v := range verdicts {
		if v.Check == CheckSecurity && v.Status == models.VerdictFail {
			outcome = models.OutcomeReject
			break
		}
	}
	if outcome == models.OutcomeAccept {
		sawClarify := false
		for _, v := range verdicts {
			switch v.Status {
			case models.VerdictFail:
				outcome = models.OutcomeClarify
			case models.VerdictNeedsClarification:
				sawClarify = true
			}
		}
		if outcome == models.OutcomeAccept && sawClarify {
			outcome = models.OutcomeClarify
		}
	}

	return &models.AggregatedVerdict{
		Outcome:    outcome,
		Verdicts:   verdicts,
		Complexity: class,
		Strategy:   strategy,
	}
}
