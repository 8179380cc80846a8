package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/models"
)

func testOrchestrator() *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		ClarityThreshold: 0.6,
		MediumBoundary:   3,
		ComplexBoundary:  6,
	}, zap.NewNop())
}

func TestOrchestrator_Validate(t *testing.T) {
	orch := testOrchestrator()
	schema := testSchema()

	tests := []struct {
		name        string
		request     string
		sql         string
		wantOutcome models.Outcome
	}{
		{
			name:        "clean simple select accepts",
			request:     "list the customers in the west region",
			sql:         "SELECT name FROM customers WHERE region = 'west'",
			wantOutcome: models.OutcomeAccept,
		},
		{
			name:        "injection rejects",
			request:     "list users",
			sql:         "SELECT name FROM customers WHERE region = 'west' OR 1=1",
			wantOutcome: models.OutcomeReject,
		},
		{
			name:        "unknown table needs clarification",
			request:     "list the orders from the east region",
			sql:         "SELECT total FROM orders WHERE region = 'east'",
			wantOutcome: models.OutcomeClarify,
		},
		{
			name:        "specific aggregation accepts under sequential strategy",
			request:     "show the invoice amounts per customer grouped by name region",
			sql:         "SELECT c.name, SUM(i.amount) FROM customers c JOIN invoices i ON c.id = i.customer_id GROUP BY c.name",
			wantOutcome: models.OutcomeAccept,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := &models.QueryCandidate{Request: tt.request, SQL: tt.sql}
			result := orch.Validate(context.Background(), candidate, schema)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.NotNil(t, result.Clarity)
		})
	}
}

// A security failure must dominate whatever else the statement does,
// whichever strategy its complexity selects.
func TestOrchestrator_SecurityDominatesEveryStrategy(t *testing.T) {
	orch := testOrchestrator()
	schema := testSchema()

	tests := []struct {
		name         string
		sql          string
		wantStrategy models.ValidationStrategy
	}{
		{
			name:         "simple injection",
			sql:          "SELECT name FROM customers WHERE id = 1 OR 1=1",
			wantStrategy: models.StrategyMinimal,
		},
		{
			name: "medium injection",
			sql: "SELECT c.name FROM customers c JOIN invoices i ON c.id = i.customer_id " +
				"GROUP BY c.name ORDER BY c.name, (SELECT 1 WHERE 1=1 OR 1=1)",
			wantStrategy: models.StrategyConcurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := &models.QueryCandidate{Request: "list customer names", SQL: tt.sql}
			result := orch.Validate(context.Background(), candidate, schema)
			assert.Equal(t, tt.wantStrategy, result.Strategy)
			assert.Equal(t, models.OutcomeReject, result.Outcome)

			failure, ok := result.FirstFailure()
			require.True(t, ok)
			assert.Equal(t, CheckSecurity, failure.Check)
			assert.Equal(t, models.ReasonSecurity, failure.Reason)
		})
	}
}

// Sequential and concurrent runs of the same candidate must agree.
func TestOrchestrator_StrategyEquivalence(t *testing.T) {
	orch := testOrchestrator()
	schema := testSchema()

	candidates := []*models.QueryCandidate{
		{
			Request: "total invoice amount per customer in the west region",
			SQL:     "SELECT c.name, SUM(i.amount) FROM customers c JOIN invoices i ON c.id = i.customer_id GROUP BY c.name",
		},
		{
			Request: "list orders",
			SQL:     "SELECT total FROM orders JOIN shipments ON orders.id = shipments.order_id GROUP BY total",
		},
	}

	for _, candidate := range candidates {
		seq := orch.runSequential(context.Background(), candidate, schema)
		conc := orch.runConcurrent(context.Background(), candidate, schema)

		seqResult := orch.aggregate(seq, models.ComplexityMedium, models.StrategySequential)
		concResult := orch.aggregate(conc, models.ComplexityComplex, models.StrategyConcurrent)
		assert.Equal(t, seqResult.Outcome, concResult.Outcome, "sql: %s", candidate.SQL)
	}
}

// Re-validating the identical candidate must reproduce the identical
// outcome and verdicts.
func TestOrchestrator_Idempotent(t *testing.T) {
	orch := testOrchestrator()
	schema := testSchema()
	candidate := &models.QueryCandidate{
		Request: "list the customers in the west region",
		SQL:     "SELECT name FROM customers WHERE region = 'west'",
	}

	first := orch.Validate(context.Background(), candidate, schema)
	for i := 0; i < 3; i++ {
		again := orch.Validate(context.Background(), candidate, schema)
		assert.Equal(t, first.Outcome, again.Outcome)
		assert.Equal(t, first.Verdicts, again.Verdicts)
	}
}

func TestOrchestrator_ConcurrentVerdictsKeepCanonicalOrder(t *testing.T) {
	orch := testOrchestrator()
	schema := testSchema()
	candidate := &models.QueryCandidate{
		Request: "compare active and archived customers by name and region",
		SQL: "SELECT name FROM customers WHERE id IN (SELECT customer_id FROM invoices) " +
			"UNION SELECT name FROM customers ORDER BY name",
	}

	result := orch.Validate(context.Background(), candidate, schema)
	require.Equal(t, models.StrategyConcurrent, result.Strategy)
	require.Len(t, result.Verdicts, 4)
	assert.Equal(t, CheckSecurity, result.Verdicts[0].Check)
	assert.Equal(t, CheckSchema, result.Verdicts[1].Check)
	assert.Equal(t, CheckClarity, result.Verdicts[2].Check)
	assert.Equal(t, CheckGuardrail, result.Verdicts[3].Check)
}
