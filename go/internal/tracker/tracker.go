package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/turntimer/go/internal/ledger"
	"github.com/mcdev12/turntimer/go/internal/turnclock"
	"github.com/rs/zerolog/log"
)

// WriterCheck answers whether this instance is the privileged writer allowed
// to persist ledger mutations
type WriterCheck interface {
	IsPrivilegedWriter() bool
}

// Toggle is the feature switch read before every tick and display recompute
type Toggle interface {
	Enabled() bool
}

// Notifier is told when an encounter's displayed values should be recomputed
type Notifier interface {
	Refresh(ctx context.Context, encounterID ledger.EncounterID)
}

// Config holds the tracking service settings
type Config struct {
	// TickInterval is the live tick period
	TickInterval time.Duration
	// CheckpointEvery is how many ticks pass between persisted flushes.
	// 1 flushes every tick; larger values trade durability for fewer writes.
	CheckpointEvery int
	// EventBufferSize bounds the queue of host events awaiting the loop
	EventBufferSize int
}

// DefaultConfig returns a one-second tick that persists on every tick
func DefaultConfig() Config {
	return Config{
		TickInterval:    time.Second,
		CheckpointEvery: 1,
		EventBufferSize: 100,
	}
}

type queuedEvent struct {
	encounterID ledger.EncounterID
	event       turnclock.Event // nil means refresh only
}

// ErrNoEncounter is returned for a turn change that names no encounter while
// nothing is tracked
var ErrNoEncounter = errors.New("turn change without encounter")

// Service is the encounter tracking service. Host events and live ticks are
// applied serially by Run; queries may be called from any goroutine.
type Service struct {
	store    ledger.Store
	locks    *ledger.Locker
	clock    clockwork.Clock
	turns    *turnclock.TurnClock
	writer   WriterCheck
	toggle   Toggle
	notifier Notifier
	cfg      Config

	eventCh    chan queuedEvent
	instanceID string // unique ID for this tracker instance

	ticks int // only touched by Run
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the real clock, mainly for tests
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithNotifier sets the display refresh target
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// NewService creates a tracking service over store
func NewService(store ledger.Store, writer WriterCheck, toggle Toggle, cfg Config, opts ...Option) *Service {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = 1
	}
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = 100
	}

	s := &Service{
		store:      store,
		locks:      ledger.NewLocker(),
		clock:      clockwork.NewRealClock(),
		writer:     writer,
		toggle:     toggle,
		cfg:        cfg,
		instanceID: uuid.New().String()[:8], // short ID for logging
	}
	for _, opt := range opts {
		opt(s)
	}
	s.turns = turnclock.New(s.clock)
	s.eventCh = make(chan queuedEvent, cfg.EventBufferSize)
	return s
}

// SetNotifier sets the display refresh target after construction
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Run processes queued host events and live ticks until ctx is cancelled.
// On return the in-memory state is dropped without a final flush.
func (s *Service) Run(ctx context.Context) error {
	log.Info().
		Str("instance", s.instanceID).
		Dur("tick_interval", s.cfg.TickInterval).
		Int("checkpoint_every", s.cfg.CheckpointEvery).
		Bool("privileged_writer", s.writer.IsPrivilegedWriter()).
		Msg("turn tracker started")

	ticker := s.clock.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	defer s.turns.Reset()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("instance", s.instanceID).Msg("turn tracker shutting down")
			return nil
		case qe := <-s.eventCh:
			s.dispatch(ctx, qe)
		case <-ticker.Chan():
			s.onTick(ctx)
		}
	}
}

// Submit queues a host event for the loop
func (s *Service) Submit(ctx context.Context, encounterID ledger.EncounterID, ev turnclock.Event) error {
	select {
	case s.eventCh <- queuedEvent{encounterID: encounterID, event: ev}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestRender queues a display refresh that does not touch any state
func (s *Service) RequestRender(ctx context.Context, encounterID ledger.EncounterID) error {
	select {
	case s.eventCh <- queuedEvent{encounterID: encounterID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) dispatch(ctx context.Context, qe queuedEvent) {
	if qe.event == nil {
		s.refresh(ctx, qe.encounterID)
		return
	}
	if err := s.Apply(ctx, qe.encounterID, qe.event); err != nil {
		log.Error().
			Err(err).
			Str("encounter_id", string(qe.encounterID)).
			Str("event_type", qe.event.Kind()).
			Str("instance", s.instanceID).
			Msg("transition failed")
	}
}

func (s *Service) onTick(ctx context.Context) {
	if !s.toggle.Enabled() {
		return
	}
	encounterID := s.turns.Encounter()
	if encounterID == "" {
		return
	}

	s.ticks++
	if s.ticks%s.cfg.CheckpointEvery == 0 {
		if err := s.transition(ctx, encounterID, turnclock.Tick{}); err != nil {
			log.Error().
				Err(err).
				Str("encounter_id", string(encounterID)).
				Str("instance", s.instanceID).
				Msg("live tick flush failed")
		}
	}
	s.refresh(ctx, encounterID)
}

// Apply runs one transition synchronously: load the ledger, apply the event,
// write the result back when this instance is the privileged writer.
// An empty encounterID targets the encounter currently tracked. Pause and tick
// are global and always target the tracked encounter when there is one.
// Apply is not safe for concurrent use; Run is its only caller outside tests.
func (s *Service) Apply(ctx context.Context, encounterID ledger.EncounterID, ev turnclock.Event) error {
	current := s.turns.Encounter()
	switch ev.(type) {
	case turnclock.PauseToggled, turnclock.Tick:
		if current != "" && encounterID != current {
			if encounterID != "" {
				log.Debug().
					Str("encounter_id", string(encounterID)).
					Str("tracked_encounter", string(current)).
					Str("event_type", ev.Kind()).
					Msg("routing global event to tracked encounter")
			}
			encounterID = current
		}
	}
	if encounterID == "" {
		encounterID = current
	}
	if _, ok := ev.(turnclock.TurnChanged); ok && encounterID == "" {
		return ErrNoEncounter
	}

	// A turn in another encounter takes over; close the old segment first
	if _, ok := ev.(turnclock.TurnChanged); ok && current != "" && current != encounterID {
		log.Warn().
			Str("from_encounter", string(current)).
			Str("to_encounter", string(encounterID)).
			Msg("switching tracked encounter")
		if err := s.transition(ctx, current, turnclock.Suspend{}); err != nil {
			log.Error().Err(err).Str("encounter_id", string(current)).Msg("failed to suspend encounter")
		}
		s.refresh(ctx, current)
	}

	err := s.transition(ctx, encounterID, ev)
	s.refresh(ctx, encounterID)
	return err
}

func (s *Service) transition(ctx context.Context, encounterID ledger.EncounterID, ev turnclock.Event) error {
	if encounterID == "" {
		s.turns.Apply("", ev, nil)
		return nil
	}

	unlock := s.locks.Lock(encounterID)
	defer unlock()

	l, err := s.load(ctx, encounterID)
	if err != nil {
		// Keep the in-memory pointers moving; this interval records no time
		s.turns.Apply(encounterID, ev, nil)
		return err
	}

	out := s.turns.Apply(encounterID, ev, l)

	log.Debug().
		Str("encounter_id", string(encounterID)).
		Str("event_type", ev.Kind()).
		Str("outcome", out.String()).
		Msg("applied transition")

	switch out {
	case turnclock.OutcomePersist:
		return s.save(ctx, encounterID, l)
	case turnclock.OutcomeUnset:
		return s.unset(ctx, encounterID)
	default:
		return nil
	}
}

// load returns the stored ledger or a fresh one when none exists yet
func (s *Service) load(ctx context.Context, encounterID ledger.EncounterID) (*ledger.Ledger, error) {
	l, err := s.store.Get(ctx, encounterID)
	if errors.Is(err, ledger.ErrNotFound) {
		return ledger.New(s.clock.Now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return l, nil
}

func (s *Service) save(ctx context.Context, encounterID ledger.EncounterID, l *ledger.Ledger) error {
	if !s.writer.IsPrivilegedWriter() {
		log.Debug().Str("encounter_id", string(encounterID)).Msg("not the privileged writer, discarding ledger")
		return nil
	}
	if err := s.store.Set(ctx, encounterID, l); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

func (s *Service) unset(ctx context.Context, encounterID ledger.EncounterID) error {
	if !s.writer.IsPrivilegedWriter() {
		log.Debug().Str("encounter_id", string(encounterID)).Msg("not the privileged writer, leaving ledger in place")
		return nil
	}
	if err := s.store.Unset(ctx, encounterID); err != nil {
		return fmt.Errorf("failed to unset ledger: %w", err)
	}
	log.Info().Str("encounter_id", string(encounterID)).Msg("encounter ledger removed")
	return nil
}

func (s *Service) refresh(ctx context.Context, encounterID ledger.EncounterID) {
	if s.notifier == nil || encounterID == "" {
		return
	}
	s.notifier.Refresh(ctx, encounterID)
}

// State exposes the live in-memory state, mostly for diagnostics
func (s *Service) State() turnclock.State {
	return s.turns.State()
}
