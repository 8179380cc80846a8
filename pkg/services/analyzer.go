package services

import (
	"regexp"
	"strings"

	"github.com/querygate/engine/pkg/models"
)

// FailureClass partitions execution errors by what recovery they allow.
type FailureClass string

const (
	// FailureStructural means the SQL itself is malformed or references
	// the schema wrongly. Eligible for regeneration.
	FailureStructural FailureClass = "structural"
	// FailureData means the statement is well formed but the data
	// disagrees with it. Terminal.
	FailureData FailureClass = "data"
	// FailurePermission means the engine denied access. Terminal.
	FailurePermission FailureClass = "permission"
)

// ExecutionAnalysis is the analyzer's report on one failed execution.
type ExecutionAnalysis struct {
	Class               FailureClass
	EligibleForRegen    bool
	UserFriendlyMessage string
	TechnicalDetails    string
}

// ExecutionAnalyzer classifies execution failures to decide whether
// regeneration is warranted.
type ExecutionAnalyzer interface {
	Analyze(execErr error) *ExecutionAnalysis
}

type executionAnalyzer struct{}

// NewExecutionAnalyzer creates the analyzer. Classification is a pure
// function over the error text and a fixed pattern table.
func NewExecutionAnalyzer() ExecutionAnalyzer {
	return &executionAnalyzer{}
}

type failurePattern struct {
	pattern *regexp.Regexp
	class   FailureClass
	message string
}

// Permission patterns run first: "permission denied for table x" also
// contains "table", which the structural patterns would claim.
var failurePatterns = []failurePattern{
	{regexp.MustCompile(`(?i)permission denied|access denied|not authorized|insufficient privilege|read-?only`), FailurePermission,
		"The database refused access for this query."},
	{regexp.MustCompile(`(?i)syntax error|parse error|parser error|unexpected token|incomplete input`), FailureStructural,
		"The generated SQL was malformed."},
	{regexp.MustCompile(`(?i)(?:table|relation|column|view)\s+"?[\w.]*"?\s+does not exist`), FailureStructural,
		"The query referenced something that does not exist in the database."},
	{regexp.MustCompile(`(?i)no such (?:table|column)|unknown (?:table|column)|undefined (?:table|column)`), FailureStructural,
		"The query referenced something that does not exist in the database."},
	{regexp.MustCompile(`(?i)ambiguous (?:column|reference)`), FailureStructural,
		"The query contained an ambiguous reference."},
	{regexp.MustCompile(`(?i)type mismatch|invalid input syntax|could not convert|conversion (?:error|failed)|out of range`), FailureData,
		"A value in the query did not match the column's type."},
	{regexp.MustCompile(`(?i)division by zero`), FailureData,
		"The query divided by zero."},
	{regexp.MustCompile(`(?i)constraint|violates|duplicate key|null value in column`), FailureData,
		"The change conflicts with a database constraint."},
}

func (a *executionAnalyzer) Analyze(execErr error) *ExecutionAnalysis {
	text := execErr.Error()

	for _, p := range failurePatterns {
		if p.pattern.MatchString(text) {
			return &ExecutionAnalysis{
				Class:               p.class,
				EligibleForRegen:    p.class == FailureStructural,
				UserFriendlyMessage: p.message,
				TechnicalDetails:    text,
			}
		}
	}

	// An unrecognized failure is terminal. Regenerating against an
	// unknown cause would just burn the attempt budget.
	return &ExecutionAnalysis{
		Class:               FailureData,
		EligibleForRegen:    false,
		UserFriendlyMessage: "The query failed to execute.",
		TechnicalDetails:    text,
	}
}

// FeedbackFor renders the analysis as regeneration feedback.
func (a *ExecutionAnalysis) FeedbackFor(attempt *models.RegenerationAttempt) string {
	var b strings.Builder
	b.WriteString(a.TechnicalDetails)
	if attempt != nil && attempt.FailureFeedback != "" {
		b.WriteString("; previous failure: ")
		b.WriteString(attempt.FailureFeedback)
	}
	return b.String()
}
