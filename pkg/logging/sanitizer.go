package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength caps how much of a SQL candidate is logged.
	MaxQueryLogLength = 100
	// RedactedText replaces any value matched by a secret pattern.
	RedactedText = "[REDACTED]"
)

// Secret-bearing key=value pairs. Each replacement keeps the key
// (capture group 1) and redacts the value.
var secretPairPatterns = []*regexp.Regexp{
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`),
	// api_key=xxx and friends; a 20-char floor avoids redacting
	// ordinary short values that happen to follow "key="
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`),
}

// user:pass@host credentials embedded in a URL-form DSN
var urlCredentialsPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)

func redactPairs(s string) string {
	for _, p := range secretPairPatterns {
		s = p.ReplaceAllString(s, "${1}="+RedactedText)
	}
	return s
}

// SanitizeConnectionString removes credentials from a DSN before it is
// logged, covering both key=value and URL forms.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := redactPairs(connStr)
	return urlCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeError scrubs an error message before logging. Driver and
// provider errors routinely echo the DSN or the API key that failed.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := redactPairs(err.Error())
	return urlCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeQuery truncates and scrubs a SQL candidate for logging.
// Candidate SQL comes from an LLM, so a string literal may echo back
// whatever the user typed, secrets included.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	sanitized := query
	if len(sanitized) > MaxQueryLogLength {
		sanitized = sanitized[:MaxQueryLogLength] + "..."
	}
	return redactPairs(sanitized)
}

// TruncateString shortens s to maxLen with an ellipsis marker.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
