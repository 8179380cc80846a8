package sql

import (
	"regexp"
	"strings"
)

// StatementKind groups SQL statements by their effect on the database.
type StatementKind string

const (
	KindRead    StatementKind = "read"    // SELECT, WITH (pure CTEs)
	KindWrite   StatementKind = "write"   // INSERT, UPDATE, DELETE, data-modifying CTEs
	KindDDL     StatementKind = "ddl"     // CREATE, ALTER, DROP, TRUNCATE
	KindUnknown StatementKind = "unknown" // Unrecognized statement types
)

// modifyingCTEPattern matches CTEs that contain data-modifying operations.
// Example: WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE)\b`)

// DetectStatementKind determines the kind of SQL statement from its first
// keyword. A WITH clause wrapping a data-modifying operation counts as a
// write, since consent rules key off the effect, not the leading keyword.
func DetectStatementKind(sqlQuery string) StatementKind {
	normalized := strings.ToUpper(strings.TrimSpace(sqlQuery))
	normalized = strings.TrimLeft(normalized, "(")
	normalized = strings.TrimSpace(normalized)

	switch {
	case strings.HasPrefix(normalized, "SELECT"),
		strings.HasPrefix(normalized, "SHOW"),
		strings.HasPrefix(normalized, "DESCRIBE"),
		strings.HasPrefix(normalized, "EXPLAIN"):
		return KindRead

	case strings.HasPrefix(normalized, "WITH"):
		if modifyingCTEPattern.MatchString(sqlQuery) {
			return KindWrite
		}
		return KindRead

	case strings.HasPrefix(normalized, "INSERT"),
		strings.HasPrefix(normalized, "UPDATE"),
		strings.HasPrefix(normalized, "DELETE"),
		strings.HasPrefix(normalized, "MERGE"),
		strings.HasPrefix(normalized, "CALL"):
		return KindWrite

	case strings.HasPrefix(normalized, "CREATE"),
		strings.HasPrefix(normalized, "ALTER"),
		strings.HasPrefix(normalized, "DROP"),
		strings.HasPrefix(normalized, "TRUNCATE"):
		return KindDDL

	default:
		return KindUnknown
	}
}

// IsModifying reports whether the statement kind can change data or schema.
func IsModifying(kind StatementKind) bool {
	return kind == KindWrite || kind == KindDDL
}
