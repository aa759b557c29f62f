package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mcdev12/turntimer/go/internal/ledger"
	"github.com/rs/zerolog/log"
)

// StateHandler serves encounter snapshots and the feature setting over REST
type StateHandler struct {
	provider  SnapshotProvider
	settings  Settings
	onChanged func(ctx context.Context, enabled bool)
}

// NewStateHandler creates a new state handler. onChanged may be nil.
func NewStateHandler(provider SnapshotProvider, settings Settings, onChanged func(ctx context.Context, enabled bool)) *StateHandler {
	return &StateHandler{
		provider:  provider,
		settings:  settings,
		onChanged: onChanged,
	}
}

// HandleGetTimers handles GET /api/encounters/{id}/timers
func (h *StateHandler) HandleGetTimers(w http.ResponseWriter, r *http.Request) {
	encounterID := r.PathValue("id")
	if encounterID == "" {
		http.Error(w, "Encounter ID is required", http.StatusBadRequest)
		return
	}

	snap, err := h.provider.Snapshot(r.Context(), ledger.EncounterID(encounterID))
	if err != nil {
		log.Error().Err(err).Str("encounter_id", encounterID).Msg("failed to build timer snapshot")
		http.Error(w, "Failed to get encounter timers", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// HandleGetSettings handles GET /api/settings/enabled
func (h *StateHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SettingsPayload{Enabled: h.settings.Enabled()})
}

// HandlePutSettings handles PUT /api/settings/enabled
func (h *StateHandler) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.settings.SetEnabled(req.Enabled)
	log.Info().Bool("enabled", req.Enabled).Msg("turn timer setting changed")

	if h.onChanged != nil {
		h.onChanged(r.Context(), req.Enabled)
	}
	writeJSON(w, http.StatusOK, SettingsPayload{Enabled: h.settings.Enabled()})
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/encounters/{id}/timers", h.HandleGetTimers)
	mux.HandleFunc("GET /api/settings/enabled", h.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings/enabled", h.HandlePutSettings)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
