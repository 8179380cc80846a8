package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/apperrors"
	"github.com/querygate/engine/pkg/audit"
	"github.com/querygate/engine/pkg/models"
	"github.com/querygate/engine/pkg/services"
)

// CreateSessionRequest is the body for POST /api/sessions.
type CreateSessionRequest struct {
	// Privilege is "user" or "admin". Defaults to "user" when omitted.
	Privilege string `json:"privilege"`
}

// SessionResponse describes a conversation session.
type SessionResponse struct {
	ID        string `json:"id"`
	Privilege string `json:"privilege"`
}

// MessageRequest is the body for POST /api/sessions/{sid}/messages.
type MessageRequest struct {
	Message string `json:"message"`
}

// SessionHandler exposes the conversation API: create a session, send
// turns into it, and tear it down.
type SessionHandler struct {
	sessions services.SessionStore
	chat     services.ChatService
	auditor  *audit.SecurityAuditor
	logger   *zap.Logger
}

// NewSessionHandler creates a SessionHandler. The auditor may be nil to
// disable security audit logging.
func NewSessionHandler(sessions services.SessionStore, chat services.ChatService, auditor *audit.SecurityAuditor, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		chat:     chat,
		auditor:  auditor,
		logger:   logger.Named("sessions"),
	}
}

// RegisterRoutes registers the session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("DELETE /api/sessions/{sid}", h.DeleteSession)
	mux.HandleFunc("POST /api/sessions/{sid}/messages", h.PostMessage)
}

// CreateSession handles POST /api/sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
			return
		}
	}

	privilege, ok := parsePrivilege(req.Privilege)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "invalid_privilege", "Privilege must be \"user\" or \"admin\"")
		return
	}

	session := h.sessions.Create(privilege)
	h.logger.Info("session created",
		zap.String("session_id", session.ID.String()),
		zap.String("privilege", string(privilege)))

	response := SessionResponse{
		ID:        session.ID.String(),
		Privilege: string(session.Privilege),
	}
	if err := WriteJSON(w, http.StatusCreated, response); err != nil {
		h.logger.Error("Failed to encode session response", zap.Error(err))
	}
}

// DeleteSession handles DELETE /api/sessions/{sid}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	h.sessions.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// PostMessage handles POST /api/sessions/{sid}/messages. The message is
// one conversation turn; the response payload shape depends on where the
// turn ended up (terminal decision, clarification, or confirmation).
func (h *SessionHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeError(w, http.StatusBadRequest, "empty_message", "Message must not be empty")
		return
	}

	response, err := h.chat.HandleTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			h.writeError(w, http.StatusNotFound, "session_not_found", "No session with that ID")
			return
		}
		h.logger.Error("turn failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "turn_failed", "Failed to process the message")
		return
	}

	h.auditTurn(sessionID, response, r.RemoteAddr)

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode turn response", zap.Error(err))
	}
}

// auditTurn records security-relevant turn outcomes.
func (h *SessionHandler) auditTurn(sessionID uuid.UUID, response *models.TurnResponse, clientIP string) {
	switch response.Decision {
	case models.DecisionReject:
		h.auditor.LogQueryRejected(sessionID, response.SQL, response.Feedback, clientIP)
	case models.DecisionExecutedAfterApproval:
		h.auditor.LogWriteConfirmed(sessionID, response.SQL, clientIP)
	case models.DecisionCancelledByUser:
		h.auditor.LogWriteCancelled(sessionID, response.SQL, clientIP)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func parsePrivilege(raw string) (models.Privilege, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(models.PrivilegeUser):
		return models.PrivilegeUser, true
	case string(models.PrivilegeAdmin):
		return models.PrivilegeAdmin, true
	default:
		return "", false
	}
}
