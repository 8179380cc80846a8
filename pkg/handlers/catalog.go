package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/querygate/engine/pkg/models"
	"github.com/querygate/engine/pkg/services"
)

// CatalogResponse lists the schema tables validation runs against.
type CatalogResponse struct {
	Tables []models.TableDescriptor `json:"tables"`
}

// CatalogHandler exposes the schema catalog: inspect the current
// snapshot and trigger a re-introspection of the datastore.
type CatalogHandler struct {
	catalog services.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger.Named("catalog")}
}

// RegisterRoutes registers the catalog routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schema", h.GetSchema)
	mux.HandleFunc("POST /api/schema/refresh", h.Refresh)
}

// GetSchema handles GET /api/schema.
func (h *CatalogHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	snapshot := h.catalog.Snapshot()
	response := CatalogResponse{Tables: snapshot.Tables()}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode schema response", zap.Error(err))
	}
}

// Refresh handles POST /api/schema/refresh.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		h.logger.Error("schema refresh failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusBadGateway, "refresh_failed", "Could not introspect the datastore schema"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	h.GetSchema(w, r)
}
