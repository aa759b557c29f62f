package gateway

import (
	"context"
	"net/http"

	"github.com/mcdev12/turntimer/go/internal/ledger"
	"github.com/mcdev12/turntimer/go/internal/tracker"
	"github.com/rs/zerolog/log"
)

// SnapshotProvider is the read side of the tracking service
type SnapshotProvider interface {
	Snapshot(ctx context.Context, encounterID ledger.EncounterID) (*tracker.Snapshot, error)
	TotalElapsed(ctx context.Context, encounterID ledger.EncounterID) (float64, error)
	ParticipantElapsed(ctx context.Context, encounterID ledger.EncounterID, participantID ledger.ParticipantID) (float64, error)
}

// Settings is the runtime-switchable feature toggle
type Settings interface {
	Enabled() bool
	SetEnabled(enabled bool)
}

// Service serves the timer display surfaces: WebSocket snapshots, REST
// handlers and the Connect ElapsedService
type Service struct {
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
	elapsed           *ElapsedService
	provider          SnapshotProvider
}

// Config holds configuration for the gateway
type Config struct {
	ConnectionConfig ConnectionConfig
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
	}
}

// NewService creates a new gateway over provider
func NewService(config Config, provider SnapshotProvider, settings Settings) *Service {
	s := &Service{
		connectionManager: NewConnectionManager(config.ConnectionConfig),
		provider:          provider,
		elapsed:           NewElapsedService(provider),
	}
	s.wsHandler = NewWebSocketHandler(s.connectionManager, s.snapshotEvent)
	s.stateHandler = NewStateHandler(provider, settings, s.settingsChanged)
	return s
}

// Start runs the broadcast loop until ctx is cancelled
func (s *Service) Start(ctx context.Context) error {
	log.Info().Msg("starting timer gateway")
	s.connectionManager.Start(ctx)
	log.Info().Msg("timer gateway stopped")
	return nil
}

// RegisterRoutes registers the WebSocket, REST and Connect routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	mux.Handle(s.elapsed.Handler())
	log.Info().Msg("timer gateway routes registered")
}

// Refresh implements tracker.Notifier: viewers of the encounter receive a
// freshly computed snapshot
func (s *Service) Refresh(ctx context.Context, encounterID ledger.EncounterID) {
	if !s.connectionManager.HasViewers(string(encounterID)) {
		return
	}
	event, err := s.snapshotEvent(ctx, string(encounterID))
	if err != nil {
		log.Error().Err(err).Str("encounter_id", string(encounterID)).Msg("failed to build timer snapshot")
		return
	}
	s.connectionManager.BroadcastToEncounter(string(encounterID), event)
}

// Stats returns statistics about the gateway
func (s *Service) Stats() ConnectionStats {
	return s.connectionManager.Stats()
}

func (s *Service) snapshotEvent(ctx context.Context, encounterID string) (*TimerEvent, error) {
	snap, err := s.provider.Snapshot(ctx, ledger.EncounterID(encounterID))
	if err != nil {
		return nil, err
	}
	return NewTimerEvent(encounterID, EventTypeTimerSnapshot, snap)
}

func (s *Service) settingsChanged(ctx context.Context, enabled bool) {
	event, err := NewTimerEvent("", EventTypeSettingsChanged, SettingsPayload{Enabled: enabled})
	if err != nil {
		log.Error().Err(err).Msg("failed to build settings event")
		return
	}
	s.connectionManager.BroadcastToAll(event)

	// Every watched encounter redraws with the new setting
	for encounterID := range s.connectionManager.Stats().EncounterConnections {
		s.Refresh(ctx, ledger.EncounterID(encounterID))
	}
}
