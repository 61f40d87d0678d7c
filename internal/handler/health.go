package handler

import (
	"database/sql"
	"net/http"

	"github.com/venueworks/av-concierge/internal/events"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db        *sql.DB
	publisher *events.Publisher
}

// NewHealthHandler creates a new health handler. The publisher may be nil.
func NewHealthHandler(db *sql.DB, publisher *events.Publisher) *HealthHandler {
	return &HealthHandler{
		db:        db,
		publisher: publisher,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database not reachable",
		})
		return
	}

	natsStatus := "disabled"
	if h.publisher != nil {
		natsStatus = "disconnected"
		if h.publisher.IsConnected() {
			natsStatus = "connected"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"nats":   natsStatus,
	})
}
