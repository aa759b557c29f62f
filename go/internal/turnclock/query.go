package turnclock

import (
	"github.com/mcdev12/turntimer/go/internal/ledger"
)

// Queries are pure reads over a ledger plus the live in-memory state.
// They never mutate either and are safe to call on every render.

// ParticipantElapsed returns the recorded seconds for p plus, when p holds the
// open segment of this encounter, the live share not yet flushed.
func (c *TurnClock) ParticipantElapsed(id ledger.EncounterID, l *ledger.Ledger, p ledger.ParticipantID) float64 {
	if l == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	total := l.Timer(p)
	if c.state.Encounter == id && c.state.ActiveParticipant == p {
		total += c.liveSeconds(c.clock.Now())
	}
	return ledger.Clamp0(total)
}

// TotalElapsed returns the accrued active time of the encounter: the sum of
// every participant timer plus the live share of the open segment.
func (c *TurnClock) TotalElapsed(id ledger.EncounterID, l *ledger.Ledger) float64 {
	if l == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	total := l.RecordedSeconds()
	if c.state.Encounter == id {
		total += c.liveSeconds(c.clock.Now())
	}
	return ledger.Clamp0(total)
}

// WallClockElapsed returns the time since the encounter started minus every
// paused interval, including a pause still in progress.
func (c *TurnClock) WallClockElapsed(id ledger.EncounterID, l *ledger.Ledger) float64 {
	if l == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.clock.Now()
	total := ledger.Seconds(l.StartTime, now) - l.PausedSeconds
	if c.state.Encounter == id && c.state.Paused() {
		total -= ledger.Seconds(*c.state.PauseStartedAt, now)
	}
	return ledger.Clamp0(total)
}

// IsLive reports whether p's timer is currently running: p holds the open
// segment of this encounter and the game is not paused.
func (c *TurnClock) IsLive(id ledger.EncounterID, p ledger.ParticipantID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state.Encounter == id &&
		c.state.ActiveParticipant == p &&
		c.state.Tracking() &&
		!c.state.Paused()
}
