package turnclock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/turntimer/go/internal/ledger"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
}

// State is the in-memory live timing state. It is never persisted.
type State struct {
	Encounter         ledger.EncounterID
	ActiveParticipant ledger.ParticipantID
	SegmentStart      *time.Time
	PauseStartedAt    *time.Time
}

// Tracking reports whether a participant's turn segment is open
func (s State) Tracking() bool {
	return s.ActiveParticipant != "" && s.SegmentStart != nil
}

// Paused reports whether the game is currently paused
func (s State) Paused() bool {
	return s.PauseStartedAt != nil
}

// TurnClock owns the live timing state and converts turn, pause and tick
// events into ledger updates. Ledger loading and saving is the caller's job.
type TurnClock struct {
	mu    sync.RWMutex
	clock Clock
	state State
}

// New creates an idle TurnClock
func New(clock Clock) *TurnClock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TurnClock{clock: clock}
}

// State returns a copy of the current in-memory state
func (c *TurnClock) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Encounter returns the encounter currently being tracked, if any
func (c *TurnClock) Encounter() ledger.EncounterID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Encounter
}

// Reset drops all in-memory state without touching any ledger
func (c *TurnClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
}

// Apply runs one transition for encounter id against l and reports what the
// caller should do with the ledger. l may be nil when no encounter is known,
// in which case only in-memory state changes.
func (c *TurnClock) Apply(id ledger.EncounterID, ev Event, l *ledger.Ledger) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()

	switch e := ev.(type) {
	case TurnChanged:
		return c.turnChanged(now, id, e.Participant, l)
	case EncounterEnded:
		return c.encounterEnded(id)
	case PauseToggled:
		if e.Paused {
			return c.pauseStarted(now, l)
		}
		return c.pauseEnded(now, l)
	case Tick:
		return c.tick(now, l)
	case Suspend:
		return c.suspend(now, l)
	default:
		return OutcomeNone
	}
}

func (c *TurnClock) turnChanged(now time.Time, id ledger.EncounterID, next ledger.ParticipantID, l *ledger.Ledger) Outcome {
	c.accrue(now, l)

	c.state.Encounter = id
	c.state.ActiveParticipant = next
	if next == "" {
		c.state.SegmentStart = nil
	} else {
		start := now
		c.state.SegmentStart = &start
	}

	if l == nil {
		return OutcomeNone
	}
	// A turn taken during a pause inherits the pause debit
	if c.state.Paused() {
		l.LastPausedParticipant = next
	}
	return OutcomePersist
}

func (c *TurnClock) encounterEnded(id ledger.EncounterID) Outcome {
	if c.state.Encounter == "" || c.state.Encounter == id {
		c.state = State{}
	}
	return OutcomeUnset
}

func (c *TurnClock) pauseStarted(now time.Time, l *ledger.Ledger) Outcome {
	if c.state.Paused() {
		return OutcomeNone
	}

	start := now
	c.state.PauseStartedAt = &start

	if l == nil {
		return OutcomeNone
	}
	l.LastPausedParticipant = c.state.ActiveParticipant
	return OutcomePersist
}

func (c *TurnClock) pauseEnded(now time.Time, l *ledger.Ledger) Outcome {
	if !c.state.Paused() {
		// Unpause without a matching pause: nothing to measure, drop any stale marker
		if l != nil && l.LastPausedParticipant != "" {
			l.LastPausedParticipant = ""
			return OutcomePersist
		}
		return OutcomeNone
	}

	pauseStart := *c.state.PauseStartedAt
	c.state.PauseStartedAt = nil

	if l == nil {
		c.restartSegment(now)
		return OutcomeNone
	}

	// Flush the open segment, which still spans the pause
	debitFrom := pauseStart
	if c.state.Tracking() {
		segStart := *c.state.SegmentStart
		l.Credit(c.state.ActiveParticipant, ledger.Seconds(segStart, now))
		if segStart.After(debitFrom) {
			debitFrom = segStart
		}
	}

	// Then reverse the paused share for whoever held the turn when the pause began
	if l.LastPausedParticipant != "" {
		l.Credit(l.LastPausedParticipant, -ledger.Seconds(debitFrom, now))
	}

	l.PausedSeconds += ledger.Seconds(pauseStart, now)
	l.LastPausedParticipant = ""
	c.restartSegment(now)
	return OutcomePersist
}

func (c *TurnClock) tick(now time.Time, l *ledger.Ledger) Outcome {
	if !c.state.Tracking() || c.state.Paused() || l == nil {
		return OutcomeNone
	}

	l.Credit(c.state.ActiveParticipant, ledger.Seconds(*c.state.SegmentStart, now))
	c.restartSegment(now)
	return OutcomePersist
}

func (c *TurnClock) suspend(now time.Time, l *ledger.Ledger) Outcome {
	c.accrue(now, l)

	paused := c.state.PauseStartedAt
	c.state = State{PauseStartedAt: paused}

	if l == nil {
		return OutcomeNone
	}
	l.LastPausedParticipant = ""
	return OutcomePersist
}

// accrue credits the open segment's active share to its participant.
// While paused only the time before the pause began counts.
func (c *TurnClock) accrue(now time.Time, l *ledger.Ledger) {
	if l == nil || !c.state.Tracking() {
		return
	}
	l.Credit(c.state.ActiveParticipant, c.liveSeconds(now))
}

func (c *TurnClock) restartSegment(now time.Time) {
	if c.state.ActiveParticipant == "" {
		c.state.SegmentStart = nil
		return
	}
	start := now
	c.state.SegmentStart = &start
}

// liveSeconds is the active, not yet flushed share of the open segment
func (c *TurnClock) liveSeconds(now time.Time) float64 {
	if !c.state.Tracking() {
		return 0
	}
	end := now
	if c.state.Paused() && c.state.PauseStartedAt.Before(end) {
		end = *c.state.PauseStartedAt
	}
	return ledger.Seconds(*c.state.SegmentStart, end)
}
