package llm

import (
	"regexp"
	"strings"
)

// VagueSignal is the sentinel a generation prompt instructs the model to
// emit when the request is too vague to translate into SQL.
const VagueSignal = "VAGUE_QUERY"

var (
	fencedSQLPattern = regexp.MustCompile("(?is)```sql\\s*(.*?)```")
	fencedAnyPattern = regexp.MustCompile("(?is)```\\s*(.*?)```")
)

// ExtractSQL pulls the SQL statement out of a model response. The prompt
// asks for a fenced ```sql block; models that ignore the instruction get
// a best-effort fallback of a bare fence, then the raw trimmed response.
func ExtractSQL(response string) string {
	if m := fencedSQLPattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := fencedAnyPattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}

// IsVagueSignal reports whether the response is the vagueness sentinel
// rather than SQL.
func IsVagueSignal(response string) bool {
	return strings.Contains(strings.ToUpper(response), VagueSignal)
}
