package validation

import (
	"regexp"
	"strings"

	"github.com/querygate/engine/pkg/models"
)

// ComplexityClassifier scores a candidate by additive structural
// features of the SQL and request text, then maps the score onto a
// class and a validation strategy. Classification only selects the
// strategy; it never changes any check's outcome.
type ComplexityClassifier struct {
	mediumBoundary  int
	complexBoundary int
}

func NewComplexityClassifier(mediumBoundary, complexBoundary int) *ComplexityClassifier {
	return &ComplexityClassifier{mediumBoundary: mediumBoundary, complexBoundary: complexBoundary}
}

var (
	joinPattern     = regexp.MustCompile(`(?i)\bjoin\b`)
	subqueryPattern = regexp.MustCompile(`(?i)\(\s*select\b`)
	setOpPattern    = regexp.MustCompile(`(?i)\b(union|intersect|except)\b`)
	groupPattern    = regexp.MustCompile(`(?i)\b(group\s+by|having)\b`)
	orderPattern    = regexp.MustCompile(`(?i)\border\s+by\b`)
	writePattern    = regexp.MustCompile(`(?i)^\s*(update|delete)\b`)
	insertPattern   = regexp.MustCompile(`(?i)^\s*insert\b`)
)

// Classify returns the score, class, and strategy for a candidate.
func (c *ComplexityClassifier) Classify(candidate *models.QueryCandidate) (int, models.ComplexityClass, models.ValidationStrategy) {
	score := c.score(candidate)
	switch {
	case score >= c.complexBoundary:
		return score, models.ComplexityComplex, models.StrategyConcurrent
	case score >= c.mediumBoundary:
		return score, models.ComplexityMedium, models.StrategySequential
	default:
		return score, models.ComplexitySimple, models.StrategyMinimal
	}
}

func (c *ComplexityClassifier) score(candidate *models.QueryCandidate) int {
	sqlQuery := candidate.SQL
	score := 0

	score += 2 * len(joinPattern.FindAllString(sqlQuery, -1))
	score += 2 * len(subqueryPattern.FindAllString(sqlQuery, -1))
	score += 3 * len(setOpPattern.FindAllString(sqlQuery, -1))
	if groupPattern.MatchString(sqlQuery) {
		score++
	}
	if orderPattern.MatchString(sqlQuery) {
		score++
	}

	switch sqlWords := len(strings.Fields(sqlQuery)); {
	case sqlWords > 50:
		score += 2
	case sqlWords > 20:
		score++
	}
	if len(strings.Fields(candidate.Request)) > 20 {
		score++
	}

	if writePattern.MatchString(sqlQuery) {
		score += 2
	} else if insertPattern.MatchString(sqlQuery) {
		score++
	}

	return score
}
