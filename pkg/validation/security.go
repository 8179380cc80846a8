package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/querygate/engine/pkg/models"
	enginesql "github.com/querygate/engine/pkg/sql"
)

// SecurityScreener detects injection, privilege-escalation, file-I/O,
// and system-catalog access attempts in a SQL candidate. It is a pure
// function over the SQL text and a fixed pattern table; it never
// consults the schema.
type SecurityScreener struct{}

// NewSecurityScreener creates the screener.
func NewSecurityScreener() *SecurityScreener {
	return &SecurityScreener{}
}

var _ Check = (*SecurityScreener)(nil)

func (s *SecurityScreener) Name() string { return CheckSecurity }

// securityPattern pairs a compiled pattern with the reason reported on a
// match. Patterns run against the statement with string literal contents
// masked out, so a value like 'a--b' cannot trip the comment check.
type securityPattern struct {
	pattern *regexp.Regexp
	detail  string
}

var securityPatterns = []securityPattern{
	{regexp.MustCompile(`(?i)\bunion\s+(?:all\s+)?select\b`), "UNION-based injection"},
	{regexp.MustCompile(`(?i)\b(?:or|and)\s+true\b`), "tautological boolean condition"},
	{regexp.MustCompile(`(?i)\b(?:information_schema|pg_catalog|sqlite_master|duckdb_tables|duckdb_columns)\b`), "system catalog access"},
	{regexp.MustCompile(`(?i)\bsys\.[a-z_]+`), "system catalog access"},
	{regexp.MustCompile(`(?i)\bshow\s+(?:tables|databases|schemas|columns|grants)\b`), "schema discovery statement"},
	{regexp.MustCompile(`(?i)\b(?:grant|revoke)\b`), "privilege statement"},
	{regexp.MustCompile(`(?i)\b(?:create|alter|drop)\s+user\b`), "user management statement"},
	{regexp.MustCompile(`(?i)\binto\s+(?:outfile|dumpfile)\b`), "file write attempt"},
	{regexp.MustCompile(`(?i)\bload\s+data\s+infile\b`), "file read attempt"},
	{regexp.MustCompile(`(?i)\bload_file\s*\(`), "file read attempt"},
	{regexp.MustCompile(`(?i)\bcopy\s+.+\s+(?:to|from)\s+'`), "file I/O attempt"},
	{regexp.MustCompile(`(?i)\b(?:xp_cmdshell|sp_executesql|xp_regread)\b`), "dynamic execution function"},
	{regexp.MustCompile(`(?i)\bexecute\s+immediate\b`), "dynamic execution statement"},
	{regexp.MustCompile(`(?i)\b(?:sleep|benchmark|pg_sleep)\s*\(`), "time-based injection function"},
	{regexp.MustCompile(`(?i)\bwaitfor\s+delay\b`), "time-based injection statement"},
}

// tautologyPattern captures literal-vs-literal comparisons attached to a
// boolean connective, e.g. OR 1=1, OR '1'='1', AND 'x' LIKE 'x'.
var tautologyPattern = regexp.MustCompile(`(?i)\b(?:or|and)\s+('[^']*'|\d+)\s*(?:=|like)\s*('[^']*'|\d+)`)

// dangerousFunctions always fail, whatever follows the call. Benign
// scalar functions (CONCAT, SUBSTRING, UPPER, COALESCE, CAST and the
// like) are safe by omission: only a listed name trips the check.
var dangerousFunctions = map[string]string{
	"xp_cmdshell": "dynamic execution function",
	"exec":        "dynamic execution function",
	"eval":        "dynamic execution function",
	"system":      "OS command function",
	"load_file":   "file read function",
}

var functionCallPattern = regexp.MustCompile(`(?i)\b([a-z_][a-z0-9_]*)\s*\(`)

// Run screens the candidate SQL against the pattern table. Empty SQL
// passes: there is nothing to screen, and the schema checker owns the
// empty-candidate verdict.
func (s *SecurityScreener) Run(_ context.Context, candidate *models.QueryCandidate, _ *models.SchemaDescriptor) models.CheckVerdict {
	sqlQuery := strings.TrimSpace(candidate.SQL)
	if sqlQuery == "" {
		return models.Pass(CheckSecurity)
	}

	// Stacked statements are an injection vector regardless of what each
	// statement does; a whitelisted function immediately followed by a
	// second statement is not benign.
	if enginesql.HasStackedStatements(sqlQuery) {
		return models.Fail(CheckSecurity, models.ReasonSecurity, "multiple statements detected; stacked queries are not allowed")
	}

	masked := maskLiterals(sqlQuery)

	if loc := commentStart(masked); loc != "" {
		return models.Fail(CheckSecurity, models.ReasonSecurity, fmt.Sprintf("SQL comment (%s) can truncate the intended predicate", loc))
	}

	for _, m := range tautologyPattern.FindAllStringSubmatch(sqlQuery, -1) {
		if literalValue(m[1]) == literalValue(m[2]) {
			return models.Fail(CheckSecurity, models.ReasonSecurity, fmt.Sprintf("tautological condition %s = %s always holds", m[1], m[2]))
		}
	}

	for _, p := range securityPatterns {
		if p.pattern.MatchString(masked) {
			return models.Fail(CheckSecurity, models.ReasonSecurity, p.detail)
		}
	}

	for _, m := range functionCallPattern.FindAllStringSubmatch(masked, -1) {
		name := strings.ToLower(m[1])
		if detail, bad := dangerousFunctions[name]; bad {
			return models.Fail(CheckSecurity, models.ReasonSecurity, fmt.Sprintf("%s: %s", detail, name))
		}
	}

	// Literals are the attacker-controllable surface; fingerprint them
	// separately since the masked pass cannot see inside them.
	if findings := enginesql.CheckLiteralsForInjection(sqlQuery); len(findings) > 0 {
		return models.Fail(CheckSecurity, models.ReasonSecurity,
			fmt.Sprintf("injection pattern in string literal (fingerprint %s)", findings[0].Fingerprint))
	}

	return models.Pass(CheckSecurity)
}

// literalValue strips quotes so '1' and 1 compare equal, matching how a
// database would evaluate the tautology.
func literalValue(token string) string {
	return strings.Trim(token, "'")
}

// commentStart reports the kind of SQL comment found in the masked
// statement, or "" when none is present.
func commentStart(masked string) string {
	switch {
	case strings.Contains(masked, "--"):
		return "--"
	case strings.Contains(masked, "/*"):
		return "/*"
	case strings.Contains(masked, "#"):
		return "#"
	default:
		return ""
	}
}

// maskLiterals blanks the contents of single-quoted string literals so
// statement-level patterns cannot match text inside a value.
func maskLiterals(sqlQuery string) string {
	var b strings.Builder
	b.Grow(len(sqlQuery))
	inString := false
	prevChar := rune(0)

	for _, char := range sqlQuery {
		if inString {
			if char == '\'' && prevChar != '\\' {
				inString = false
				b.WriteRune(char)
			} else {
				b.WriteRune(' ')
			}
		} else {
			if char == '\'' {
				inString = true
			}
			b.WriteRune(char)
		}
		prevChar = char
	}

	return b.String()
}
