package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL   string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel string        // Channel name to LISTEN on
	PingInterval  time.Duration // How often to ping the idle connection
	MinReconnect  time.Duration
	MaxReconnect  time.Duration
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		DatabaseURL:   "",
		NotifyChannel: DefaultNotifyChannel,
		PingInterval:  90 * time.Second,
		MinReconnect:  10 * time.Second,
		MaxReconnect:  time.Minute,
	}
}

// ChangeHandler is invoked with the encounter whose ledger was written or unset
type ChangeHandler func(ctx context.Context, id EncounterID)

// Listener turns Postgres notifications from PostgresStore into change callbacks.
// Observers use it to refresh displays when the privileged writer persists.
type Listener struct {
	listener *pq.Listener
	handler  ChangeHandler
	cfg      ListenerConfig

	stopOnce sync.Once
	stopErr  error
}

func NewListener(handler ChangeHandler, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		cfg.MinReconnect,
		cfg.MaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("ledger listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for ledger changes")

	return &Listener{
		listener: l,
		handler:  handler,
		cfg:      cfg,
	}, nil
}

func (l *Listener) Start(ctx context.Context) error {
	pingTicker := time.NewTicker(l.cfg.PingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("ledger listener shutting down")
			return l.Stop()
		case note := <-l.listener.Notify:
			if note == nil {
				// nil notification means the connection was re-established
				continue
			}
			l.handler(ctx, EncounterID(note.Extra))
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping ledger listener")
			}
		}
	}
}

// Stop closes the connection; later calls return the first result
func (l *Listener) Stop() error {
	l.stopOnce.Do(func() {
		l.stopErr = l.listener.Close()
	})
	return l.stopErr
}
