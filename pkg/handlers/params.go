package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseSessionID reads the {sid} path parameter and validates it as a
// UUID. On failure it writes a 400 response and returns ok=false.
func ParseSessionID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("sid"))
	if err != nil {
		if werr := ErrorResponse(w, http.StatusBadRequest, "invalid_session_id", "Session ID must be a UUID"); werr != nil {
			logger.Error("Failed to write error response", zap.Error(werr))
		}
		return uuid.Nil, false
	}
	return id, true
}
