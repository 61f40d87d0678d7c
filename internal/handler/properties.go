package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/venueworks/av-concierge/internal/middleware"
	"github.com/venueworks/av-concierge/internal/store"
	"github.com/venueworks/av-concierge/pkg/logger"
)

// PropertyHandler serves read-only property data.
type PropertyHandler struct {
	store  *store.PropertyStore
	logger *logger.Logger
}

// NewPropertyHandler creates a new property handler.
func NewPropertyHandler(s *store.PropertyStore, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		store:  s,
		logger: log,
	}
}

func (h *PropertyHandler) propertyID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidatePropertyID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if !middleware.CanAccessProperty(r.Context(), id) {
		writeError(w, http.StatusForbidden, "property not covered by token")
		return "", false
	}
	return id, true
}

// Get handles GET /api/v1/properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	property, err := h.store.GetProperty(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get property", zap.String("property_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get property")
		return
	}

	writeJSON(w, http.StatusOK, property)
}

// Rooms handles GET /api/v1/properties/{id}/rooms
func (h *PropertyHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	rooms, err := h.store.ListRooms(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list rooms", zap.String("property_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// Inventory handles GET /api/v1/properties/{id}/inventory
func (h *PropertyHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.propertyID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	items, err := h.store.ListAvailableInventory(r.Context(), id, store.InventoryFilter{
		Category:    q.Get("category"),
		SubCategory: q.Get("sub_category"),
		SearchTerm:  q.Get("search"),
	})
	if err != nil {
		h.logger.Error("failed to list inventory", zap.String("property_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}
