// Package validation implements the candidate validation pipeline: the
// individual checks (security screening, schema compliance, intent
// clarity, statement guardrail), the complexity classifier that selects
// a strategy, and the orchestrator that runs the checks and aggregates
// their verdicts deterministically.
package validation

import (
	"context"

	"github.com/querygate/engine/pkg/models"
)

// Check is a single validation check. Implementations are pure over
// their inputs: the same (candidate, schema) pair always yields the same
// verdict, and malformed input produces a failing verdict, never an
// error or panic. The interface exists so scoring implementations can be
// swapped (rule-based today, model-assisted later) without touching the
// orchestrator.
type Check interface {
	Name() string
	Run(ctx context.Context, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) models.CheckVerdict
}

// Check names, used as verdict tags and metric labels.
const (
	CheckSecurity  = "security_screen"
	CheckSchema    = "schema_compliance"
	CheckClarity   = "intent_clarity"
	CheckGuardrail = "statement_guardrail"
)
