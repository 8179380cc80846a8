// Package audit provides security audit logging for SIEM consumption.
// It logs security-relevant events in structured JSON format for easy parsing
// and integration with security information and event management systems.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventQueryRejected is logged when the security screen rejects a candidate.
	EventQueryRejected SecurityEventType = "query_rejected"
	// EventWriteConfirmed is logged when a user approves a pending write statement.
	EventWriteConfirmed SecurityEventType = "write_confirmed"
	// EventWriteCancelled is logged when a user declines a pending write statement.
	EventWriteCancelled SecurityEventType = "write_cancelled"
)

// SecurityEvent represents an auditable security event with all relevant context
// for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	SessionID uuid.UUID         `json:"session_id"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// RejectionDetails contains specifics of a rejected candidate statement.
type RejectionDetails struct {
	SQL      string `json:"sql"`
	Feedback string `json:"feedback"`
}

// SecurityAuditor logs security events for SIEM consumption.
// Events are logged in structured JSON format with appropriate severity levels.
// A nil *SecurityAuditor is valid and logs nothing.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger
// namespace for easy filtering in SIEM systems.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogQueryRejected records a candidate statement the security screen refused.
// Logged at ERROR level with "critical" severity for immediate alerting: a
// rejection means the generated SQL carried an injection or exfiltration
// pattern, which usually traces back to the user's request text.
func (a *SecurityAuditor) LogQueryRejected(sessionID uuid.UUID, sqlText, feedback, clientIP string) {
	if a == nil {
		return
	}

	details := RejectionDetails{
		SQL:      logging.SanitizeQuery(sqlText),
		Feedback: feedback,
	}
	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventQueryRejected,
		SessionID: sessionID,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  "critical",
	}

	// Serialize event to JSON for SIEM ingestion
	// Ignoring error as marshaling known types should never fail
	eventJSON, _ := json.Marshal(event)

	a.logger.Error("candidate statement rejected",
		zap.String("event_json", string(eventJSON)),
		zap.String("session_id", sessionID.String()),
		zap.String("sql", details.SQL),
		zap.String("client_ip", clientIP),
		zap.String("severity", "critical"),
	)
}

// LogWriteConfirmed records a write statement the user explicitly approved.
// Logged at INFO level to build the approval audit trail.
func (a *SecurityAuditor) LogWriteConfirmed(sessionID uuid.UUID, sqlText, clientIP string) {
	if a == nil {
		return
	}

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventWriteConfirmed,
		SessionID: sessionID,
		ClientIP:  clientIP,
		Details: map[string]string{
			"sql": logging.SanitizeQuery(sqlText),
		},
		Severity: "info",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Info("write statement confirmed",
		zap.String("event_json", string(eventJSON)),
		zap.String("session_id", sessionID.String()),
		zap.String("client_ip", clientIP),
		zap.String("severity", "info"),
	)
}

// LogWriteCancelled records a pending write the user declined.
// Logged at INFO level; a cancellation is a normal outcome, not an incident.
func (a *SecurityAuditor) LogWriteCancelled(sessionID uuid.UUID, sqlText, clientIP string) {
	if a == nil {
		return
	}

	event := SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventWriteCancelled,
		SessionID: sessionID,
		ClientIP:  clientIP,
		Details: map[string]string{
			"sql": logging.SanitizeQuery(sqlText),
		},
		Severity: "info",
	}

	eventJSON, _ := json.Marshal(event)

	a.logger.Info("write statement cancelled",
		zap.String("event_json", string(eventJSON)),
		zap.String("session_id", sessionID.String()),
		zap.String("client_ip", clientIP),
		zap.String("severity", "info"),
	)
}
