package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// InitialEventFunc builds the event a new viewer receives on connect
type InitialEventFunc func(ctx context.Context, encounterID string) (*TimerEvent, error)

// WebSocketHandler handles WebSocket upgrade requests for encounter viewers
type WebSocketHandler struct {
	connectionManager *ConnectionManager
	initial           InitialEventFunc
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager, initial InitialEventFunc) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
		initial:           initial,
	}
}

// HandleEncounterConnection handles GET /ws/encounter?encounter_id=
func (h *WebSocketHandler) HandleEncounterConnection(w http.ResponseWriter, r *http.Request) {
	encounterID := r.URL.Query().Get("encounter_id")
	if encounterID == "" {
		http.Error(w, "encounter_id is required", http.StatusBadRequest)
		return
	}

	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		viewerID = "anonymous"
	}

	var initial *TimerEvent
	if h.initial != nil {
		event, err := h.initial(r.Context(), encounterID)
		if err != nil {
			log.Error().Err(err).Str("encounter_id", encounterID).Msg("failed to build initial snapshot")
		} else {
			initial = event
		}
	}

	// The upgrader has already written an HTTP error on failure
	if err := h.connectionManager.UpgradeConnection(w, r, viewerID, encounterID, initial); err != nil {
		log.Error().
			Err(err).
			Str("encounter_id", encounterID).
			Str("viewer_id", viewerID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/encounter", h.HandleEncounterConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
