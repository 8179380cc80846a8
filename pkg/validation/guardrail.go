package validation

import (
	"context"
	"strings"

	"github.com/querygate/engine/pkg/models"
	enginesql "github.com/querygate/engine/pkg/sql"
)

// StatementGuardrail catches structurally unsafe statements that the
// other checks do not own: statements whose kind cannot be determined,
// and destructive writes with no row predicate.
type StatementGuardrail struct{}

func NewStatementGuardrail() *StatementGuardrail {
	return &StatementGuardrail{}
}

var _ Check = (*StatementGuardrail)(nil)

func (g *StatementGuardrail) Name() string { return CheckGuardrail }

func (g *StatementGuardrail) Run(_ context.Context, candidate *models.QueryCandidate, _ *models.SchemaDescriptor) models.CheckVerdict {
	sqlQuery := strings.TrimSpace(candidate.SQL)
	if sqlQuery == "" {
		return models.Pass(CheckGuardrail)
	}

	kind := enginesql.DetectStatementKind(sqlQuery)
	if kind == enginesql.KindUnknown {
		return models.Fail(CheckGuardrail, models.ReasonSchemaMismatch, "unrecognized statement type")
	}

	if missingWhere(sqlQuery, kind) {
		return models.NeedsClarification(CheckGuardrail,
			"UPDATE or DELETE with no WHERE clause affects every row; confirm that is intended")
	}

	return models.Pass(CheckGuardrail)
}

func missingWhere(sqlQuery string, kind enginesql.StatementKind) bool {
	if kind != enginesql.KindWrite {
		return false
	}
	upper := strings.ToUpper(sqlQuery)
	if !strings.HasPrefix(upper, "UPDATE") && !strings.HasPrefix(upper, "DELETE") {
		return false
	}
	return !strings.Contains(upper, " WHERE ")
}
