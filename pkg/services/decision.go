package services

import (
	"fmt"
	"strings"

	"github.com/querygate/engine/pkg/models"
	"github.com/querygate/engine/pkg/observability"
	enginesql "github.com/querygate/engine/pkg/sql"
)

// DecisionGate maps an aggregated verdict, the statement kind, and the
// caller's privilege to the action taken this turn.
type DecisionGate interface {
	Decide(verdict *models.AggregatedVerdict, candidate *models.QueryCandidate, privilege models.Privilege) *models.Decision
}

type decisionGate struct{}

// NewDecisionGate creates the gate. It holds no state; decisions are a
// pure function of their inputs.
func NewDecisionGate() DecisionGate {
	return &decisionGate{}
}

func (g *decisionGate) Decide(verdict *models.AggregatedVerdict, candidate *models.QueryCandidate, privilege models.Privilege) *models.Decision {
	decision := g.decide(verdict, candidate, privilege)
	observability.ObserveDecision(string(decision.Action))
	return decision
}

func (g *decisionGate) decide(verdict *models.AggregatedVerdict, candidate *models.QueryCandidate, privilege models.Privilege) *models.Decision {
	switch verdict.Outcome {
	case models.OutcomeReject:
		failure, _ := verdict.FirstFailure()
		return &models.Decision{
			Action:   models.ActionReject,
			SQL:      candidate.SQL,
			Feedback: rejectionFeedback(failure),
		}

	case models.OutcomeClarify:
		failure, _ := verdict.FirstFailure()
		return &models.Decision{
			Action:                models.ActionHumanVerification,
			SQL:                   "",
			Feedback:              clarificationFeedback(failure),
			RequiresClarification: true,
		}
	}

	// Accepted. Reads execute directly; writes and DDL need either
	// admin privilege or explicit confirmation.
	kind := enginesql.DetectStatementKind(candidate.SQL)
	if kind == enginesql.KindRead || privilege == models.PrivilegeAdmin {
		return &models.Decision{
			Action:   models.ActionAccept,
			SQL:      candidate.SQL,
			Feedback: "Query validated successfully.",
		}
	}

	return &models.Decision{
		Action:                models.ActionHumanVerification,
		SQL:                   candidate.SQL,
		Feedback:              fmt.Sprintf("This %s statement modifies data and needs your confirmation before it runs.", strings.ToUpper(firstWord(candidate.SQL))),
		RequiresClarification: false,
	}
}

func rejectionFeedback(failure models.CheckVerdict) string {
	if failure.Detail != "" {
		return fmt.Sprintf("Query rejected for security reasons: %s.", failure.Detail)
	}
	return "Query rejected for security reasons."
}

func clarificationFeedback(failure models.CheckVerdict) string {
	if failure.Detail != "" {
		return fmt.Sprintf("The query could not be verified: %s.", failure.Detail)
	}
	return "The request needs clarification before a query can run."
}

func firstWord(sqlQuery string) string {
	fields := strings.Fields(sqlQuery)
	if len(fields) == 0 {
		return "write"
	}
	return fields[0]
}
