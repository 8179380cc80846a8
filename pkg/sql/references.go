package sql

import (
	"regexp"
	"strings"
)

// References holds the table and column identifiers a statement mentions.
// Extraction is structural token matching, not parsing; it is tuned to the
// statement shapes an LLM generator produces.
type References struct {
	Tables  []string
	Columns []string
}

// Empty reports whether no identifiers were extracted at all.
func (r References) Empty() bool {
	return len(r.Tables) == 0 && len(r.Columns) == 0
}

var tablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfrom\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)`),
	regexp.MustCompile(`(?i)\bjoin\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)`),
	regexp.MustCompile(`(?i)\bupdate\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)`),
	regexp.MustCompile(`(?i)\binsert\s+into\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)`),
	regexp.MustCompile(`(?i)\bdelete\s+from\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)`),
}

var clauseColumnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwhere\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)\s*(?:[=<>!]|like\b|ilike\b|in\b|between\b|is\b)`),
	regexp.MustCompile(`(?i)\b(?:and|or)\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)\s*(?:[=<>!]|like\b|ilike\b|in\b|between\b|is\b)`),
	regexp.MustCompile(`(?i)\bgroup\s+by\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)`),
	regexp.MustCompile(`(?i)\border\s+by\s+([a-z_][a-z0-9_]*(?:\.[a-z_][a-z0-9_]*)?)`),
	regexp.MustCompile(`(?i)\bset\s+([a-z_][a-z0-9_]*)\s*=`),
}

// sqlKeywords are tokens the clause patterns can capture that are never
// column names.
var sqlKeywords = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "and": {}, "or": {}, "not": {},
	"null": {}, "true": {}, "false": {}, "case": {}, "when": {}, "then": {},
	"else": {}, "end": {}, "exists": {}, "distinct": {}, "as": {},
	"asc": {}, "desc": {}, "limit": {}, "offset": {}, "having": {},
	"between": {}, "like": {}, "ilike": {}, "in": {}, "is": {},
}

// aggregateFunctions are expression prefixes skipped during SELECT-list
// extraction; their arguments are not bare column references we can
// reliably attribute.
var aggregateFunctions = []string{"count", "sum", "avg", "max", "min"}

// ExtractReferences pulls the table and column identifiers out of a SQL
// statement. Table identifiers come from FROM/JOIN/UPDATE/INSERT/DELETE
// clauses; column identifiers from the SELECT list and WHERE/GROUP BY/
// ORDER BY/SET clauses. Schema qualifiers and table aliases are stripped
// so results compare directly against the flat catalog.
func ExtractReferences(sqlQuery string) References {
	var refs References
	seenTables := make(map[string]struct{})
	seenColumns := make(map[string]struct{})

	addTable := func(name string) {
		name = stripQualifier(name)
		if name == "" {
			return
		}
		if _, ok := seenTables[name]; ok {
			return
		}
		seenTables[name] = struct{}{}
		refs.Tables = append(refs.Tables, name)
	}

	addColumn := func(name string) {
		name = stripQualifier(name)
		if name == "" || name == "*" {
			return
		}
		if _, keyword := sqlKeywords[name]; keyword {
			return
		}
		if _, ok := seenColumns[name]; ok {
			return
		}
		seenColumns[name] = struct{}{}
		refs.Columns = append(refs.Columns, name)
	}

	for _, pattern := range tablePatterns {
		for _, match := range pattern.FindAllStringSubmatch(sqlQuery, -1) {
			addTable(match[1])
		}
	}

	for _, col := range selectListColumns(sqlQuery) {
		addColumn(col)
	}
	for _, pattern := range clauseColumnPatterns {
		for _, match := range pattern.FindAllStringSubmatch(sqlQuery, -1) {
			addColumn(match[1])
		}
	}

	return refs
}

// stripQualifier lowercases an identifier and removes a schema or table
// qualifier ("main.orders" -> "orders", "u.name" -> "name").
func stripQualifier(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// selectListColumns extracts bare column identifiers from the SELECT list.
// Function calls and aggregate expressions are skipped: their result is an
// expression, not a schema reference we can check.
func selectListColumns(sqlQuery string) []string {
	sqlLower := strings.ToLower(sqlQuery)
	selectIdx := strings.Index(sqlLower, "select")
	if selectIdx == -1 {
		return nil
	}

	endKeywords := []string{" from ", " where ", " group ", " order ", " limit ", ";"}
	endIdx := len(sqlQuery)
	for _, keyword := range endKeywords {
		if idx := strings.Index(sqlLower[selectIdx:], keyword); idx != -1 && selectIdx+idx < endIdx {
			endIdx = selectIdx + idx
		}
	}

	selectClause := strings.TrimSpace(sqlQuery[selectIdx+len("select") : endIdx])
	if strings.HasPrefix(selectClause, "*") {
		return nil
	}

	var columns []string
	for _, expr := range splitRespectingParens(selectClause) {
		expr = strings.ToLower(strings.TrimSpace(expr))
		if expr == "" || strings.Contains(expr, "(") {
			continue
		}
		if hasAggregatePrefix(expr) {
			continue
		}
		// Drop an alias: "name as customer_name" references column "name".
		if idx := strings.Index(expr, " as "); idx >= 0 {
			expr = strings.TrimSpace(expr[:idx])
		}
		if identPattern.MatchString(expr) {
			columns = append(columns, expr)
		}
	}
	return columns
}

func hasAggregatePrefix(expr string) bool {
	for _, fn := range aggregateFunctions {
		if strings.HasPrefix(expr, fn) {
			return true
		}
	}
	return false
}

// splitRespectingParens splits a column list on commas that are not inside
// parentheses, so function arguments stay attached to their call.
func splitRespectingParens(clause string) []string {
	var parts []string
	var current strings.Builder
	parenDepth := 0

	for _, ch := range clause {
		switch ch {
		case '(':
			parenDepth++
			current.WriteRune(ch)
		case ')':
			parenDepth--
			current.WriteRune(ch)
		case ',':
			if parenDepth == 0 {
				parts = append(parts, current.String())
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
