package audit

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestLogger creates a test logger with an observer to capture log entries.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	return logger, recorded
}

func TestNewSecurityAuditor(t *testing.T) {
	logger, _ := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	assert.NotNil(t, auditor)
	assert.NotNil(t, auditor.logger)
}

func TestLogQueryRejected(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	sessionID := uuid.New()
	auditor.LogQueryRejected(sessionID,
		"SELECT * FROM customers WHERE id = 1 OR 1=1",
		"rejected by security screening",
		"192.168.1.100")

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, sessionID.String(), fields["session_id"])
	assert.Equal(t, "192.168.1.100", fields["client_ip"])
	assert.Equal(t, "critical", fields["severity"])

	var event SecurityEvent
	require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
	assert.Equal(t, EventQueryRejected, event.EventType)
	assert.Equal(t, sessionID, event.SessionID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestLogQueryRejected_RedactsSecrets(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	auditor.LogQueryRejected(uuid.New(),
		"UPDATE accounts SET password=hunter2 WHERE id = 1",
		"rejected",
		"")

	require.Equal(t, 1, recorded.Len())
	logged := recorded.All()[0].ContextMap()["sql"].(string)
	assert.NotContains(t, logged, "hunter2")
	assert.Contains(t, logged, "[REDACTED]")
}

func TestLogWriteConfirmed(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	sessionID := uuid.New()
	auditor.LogWriteConfirmed(sessionID, "DELETE FROM invoices WHERE id = 7", "10.0.0.5")

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	var event SecurityEvent
	fields := entry.ContextMap()
	require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
	assert.Equal(t, EventWriteConfirmed, event.EventType)
	assert.Equal(t, sessionID, event.SessionID)
}

func TestLogWriteCancelled(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	auditor.LogWriteCancelled(uuid.New(), "DELETE FROM invoices", "")

	require.Equal(t, 1, recorded.Len())

	var event SecurityEvent
	fields := recorded.All()[0].ContextMap()
	require.NoError(t, json.Unmarshal([]byte(fields["event_json"].(string)), &event))
	assert.Equal(t, EventWriteCancelled, event.EventType)
}

func TestNilAuditorIsSilent(t *testing.T) {
	var auditor *SecurityAuditor

	// Must not panic.
	auditor.LogQueryRejected(uuid.New(), "SELECT 1", "feedback", "")
	auditor.LogWriteConfirmed(uuid.New(), "DELETE FROM x", "")
	auditor.LogWriteCancelled(uuid.New(), "DELETE FROM x", "")
}
