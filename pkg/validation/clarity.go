package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/querygate/engine/pkg/models"
)

// ClarityScorer estimates how actionable a natural-language request is.
// The score starts at zero and accumulates evidence of specificity;
// vague referents subtract. Requests below the threshold get targeted
// clarification questions rather than a hard reject.
type ClarityScorer struct {
	threshold float64
}

func NewClarityScorer(threshold float64) *ClarityScorer {
	return &ClarityScorer{threshold: threshold}
}

var _ Check = (*ClarityScorer)(nil)

func (c *ClarityScorer) Name() string { return CheckClarity }

var (
	actionVerbPattern = regexp.MustCompile(`(?i)\b(show|list|get|find|count|give|display|fetch|select|calculate|compare|summarize|total|average|retrieve)\b`)
	filterPattern     = regexp.MustCompile(`(?i)\b(where|with|from|in|between|after|before|since|during|by|for|over|under|above|below|last|first|top|recent|latest|highest|lowest|more than|less than|greater|per)\b`)
	vaguePronouns     = regexp.MustCompile(`(?i)\b(it|that|those|them|this|these|stuff|things|some|everything|anything|whatever)\b`)
)

func (c *ClarityScorer) Run(_ context.Context, candidate *models.QueryCandidate, schema *models.SchemaDescriptor) models.CheckVerdict {
	report := c.Score(candidate.Request, schema)
	if report.NeedsClarification(c.threshold) {
		return models.NeedsClarification(CheckClarity,
			fmt.Sprintf("clarity score %.2f below threshold %.2f", report.Score, c.threshold))
	}
	return models.Pass(CheckClarity)
}

// Score builds a full clarity report for the request, independent of
// the pass/fail threshold. The conversation layer uses the report's
// questions when a turn enters the clarification phase.
func (c *ClarityScorer) Score(request string, schema *models.SchemaDescriptor) *models.ClarityReport {
	report := &models.ClarityReport{}
	trimmed := strings.TrimSpace(request)
	if trimmed == "" {
		report.VagueAspects = append(report.VagueAspects, "empty request")
		report.Questions = append(report.Questions, "What data would you like to see?")
		return report
	}

	lower := strings.ToLower(trimmed)
	words := strings.Fields(lower)

	matched := matchSchemaEntities(lower, schema)
	if len(matched) > 0 {
		report.Score += 0.4
		report.SuggestedTables = append(report.SuggestedTables, matched...)
	} else {
		report.VagueAspects = append(report.VagueAspects, "no recognizable table or column named")
		report.Questions = append(report.Questions, questionForEntities(schema))
	}

	if filterPattern.MatchString(lower) {
		report.Score += 0.3
	} else {
		report.VagueAspects = append(report.VagueAspects, "no filter or scope given")
		report.Questions = append(report.Questions, "Should the results be filtered, for example by date range or category?")
	}

	if actionVerbPattern.MatchString(lower) {
		report.Score += 0.1
	} else {
		report.VagueAspects = append(report.VagueAspects, "no clear action stated")
		report.Questions = append(report.Questions, "What would you like to do with the data: list it, count it, or summarize it?")
	}

	if len(words) >= 5 {
		report.Score += 0.2
	} else {
		report.VagueAspects = append(report.VagueAspects, "request is very short")
	}

	if vaguePronouns.MatchString(lower) {
		report.Score -= 0.3
		report.VagueAspects = append(report.VagueAspects, "vague referent (it/that/those)")
		report.Questions = append(report.Questions, "Which specific records are you referring to?")
	}

	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 1 {
		report.Score = 1
	}
	return report
}

// matchSchemaEntities returns the schema tables whose name, or one of
// whose column names, appears in the request text. A trailing "s" on
// either side is tolerated so "order" matches the orders table.
func matchSchemaEntities(lower string, schema *models.SchemaDescriptor) []string {
	if schema == nil {
		return nil
	}
	var matched []string
	for _, table := range schema.Tables() {
		name := strings.ToLower(table.Name)
		if containsWord(lower, name) || containsWord(lower, strings.TrimSuffix(name, "s")) || containsWord(lower, name+"s") {
			matched = append(matched, table.Name)
			continue
		}
		for _, col := range table.Columns {
			if containsWord(lower, strings.ToLower(col.Name)) {
				matched = append(matched, table.Name)
				break
			}
		}
	}
	return matched
}

func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func questionForEntities(schema *models.SchemaDescriptor) string {
	if schema == nil || schema.IsEmpty() {
		return "Which table or kind of data are you interested in?"
	}
	names := schema.TableNames()
	if len(names) > 5 {
		names = names[:5]
	}
	return fmt.Sprintf("Which data are you interested in? Available tables include: %s.", strings.Join(names, ", "))
}
