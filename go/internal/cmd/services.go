package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcdev12/turntimer/go/internal/dbconfig"
	"github.com/mcdev12/turntimer/go/internal/gateway"
	"github.com/mcdev12/turntimer/go/internal/ledger"
	"github.com/mcdev12/turntimer/go/internal/tracker"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Tracker  *tracker.Service
	Gateway  *gateway.Service
	Toggle   *tracker.FeatureToggle
	Consumer *tracker.EventConsumer // nil when NATS is disabled
	Listener *ledger.Listener       // nil unless an observer runs on Postgres
	DB       *sql.DB                // nil for the memory store
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Store → Tracker → Gateway (notifier) → Consumer / Listener (inputs)
	role, err := tracker.ParseRole(config.Tracker.Role)
	if err != nil {
		return nil, err
	}

	services := &Services{
		Toggle: tracker.NewFeatureToggle(config.Tracker.Enabled),
	}

	var store ledger.Store
	switch config.Store.Kind {
	case storePostgres:
		dbCfg := dbconfig.NewConfigFromEnv()
		database, err := setupDatabase(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		services.DB = database
		store = ledger.NewPostgresStore(database, config.Store.NotifyChannel)

		if !role.IsPrivilegedWriter() {
			// Observers redraw whenever the host persists
			listenerCfg := ledger.DefaultListenerConfig()
			listenerCfg.DatabaseURL = dbCfg.DSN()
			if config.Store.NotifyChannel != "" {
				listenerCfg.NotifyChannel = config.Store.NotifyChannel
			}
			services.Listener, err = ledger.NewListener(func(ctx context.Context, id ledger.EncounterID) {
				if err := services.Tracker.RequestRender(ctx, id); err != nil {
					log.Debug().Err(err).Str("encounter_id", string(id)).Msg("dropped ledger change render")
				}
			}, listenerCfg)
			if err != nil {
				services.Close()
				return nil, fmt.Errorf("failed to create ledger listener: %w", err)
			}
		}
	default:
		if !role.IsPrivilegedWriter() {
			log.Warn().Msg("observer on a memory store never sees host writes; timers will read zero")
		}
		store = ledger.NewMemoryStore()
	}

	services.Tracker = tracker.NewService(store, role, services.Toggle, config.trackerConfig())
	services.Gateway = gateway.NewService(gateway.DefaultConfig(), services.Tracker, services.Toggle)
	services.Tracker.SetNotifier(services.Gateway)

	if config.NATS.Enabled {
		services.Consumer, err = tracker.NewEventConsumer(services.Tracker, config.jetStreamConfig())
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to create event consumer: %w", err)
		}
	}

	log.Info().
		Str("role", string(role)).
		Str("store", config.Store.Kind).
		Bool("nats", config.NATS.Enabled).
		Bool("enabled", config.Tracker.Enabled).
		Msg("services configured")

	return services, nil
}

// Close releases connections opened by setupServices
func (s *Services) Close() {
	if s.Consumer != nil {
		s.Consumer.Close()
	}
	if s.Listener != nil {
		if err := s.Listener.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop ledger listener")
		}
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
