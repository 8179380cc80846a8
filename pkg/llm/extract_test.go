package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "fenced sql block",
			response: "Here is the query:\n```sql\nSELECT name FROM customers\n```\nLet me know.",
			want:     "SELECT name FROM customers",
		},
		{
			name:     "bare fence fallback",
			response: "```\nSELECT 1\n```",
			want:     "SELECT 1",
		},
		{
			name:     "raw sql without fences",
			response: "  SELECT id FROM invoices  ",
			want:     "SELECT id FROM invoices",
		},
		{
			name:     "uppercase fence tag",
			response: "```SQL\nSELECT 2\n```",
			want:     "SELECT 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSQL(tt.response))
		})
	}
}

func TestIsVagueSignal(t *testing.T) {
	assert.True(t, IsVagueSignal("VAGUE_QUERY"))
	assert.True(t, IsVagueSignal("vague_query: please clarify"))
	assert.False(t, IsVagueSignal("SELECT name FROM customers"))
}

func TestClassifyError_Retryable(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		wantType      ErrorType
		wantRetryable bool
	}{
		{"unauthorized", "401 unauthorized", ErrorTypeAuth, false},
		{"rate limited", "429 rate limit exceeded", ErrorTypeUnknown, true},
		{"timeout", "context deadline exceeded", ErrorTypeEndpoint, true},
		{"server error", "502 bad gateway", ErrorTypeEndpoint, true},
		{"connection refused", "dial tcp: connection refused", ErrorTypeEndpoint, true},
		{"unknown", "something odd", ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyError(assertableError(tt.message))
			assert.Equal(t, tt.wantType, classified.Type)
			assert.Equal(t, tt.wantRetryable, classified.Retryable)
			assert.Equal(t, tt.wantRetryable, IsRetryable(classified))
		})
	}
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
