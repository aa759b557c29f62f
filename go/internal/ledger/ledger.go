package ledger

import (
	"time"
)

// EncounterID identifies the encounter a ledger belongs to
type EncounterID string

// ParticipantID identifies a turn-taker inside an encounter
type ParticipantID string

// Ledger is the persisted time-accounting record for one encounter
type Ledger struct {
	StartTime             time.Time                 `json:"startTime"`
	ParticipantTimers     map[ParticipantID]float64 `json:"participantTimers"`
	PausedSeconds         float64                   `json:"pausedSeconds"`
	LastPausedParticipant ParticipantID             `json:"lastPausedParticipant,omitempty"`
}

// New creates an empty ledger whose encounter started at startTime
func New(startTime time.Time) *Ledger {
	return &Ledger{
		StartTime:         startTime,
		ParticipantTimers: make(map[ParticipantID]float64),
	}
}

// Credit adds seconds to a participant's timer. The stored value never drops below zero.
func (l *Ledger) Credit(id ParticipantID, seconds float64) {
	if id == "" {
		return
	}
	if l.ParticipantTimers == nil {
		l.ParticipantTimers = make(map[ParticipantID]float64)
	}
	l.ParticipantTimers[id] = Clamp0(l.ParticipantTimers[id] + seconds)
}

// Timer returns the recorded seconds for a participant
func (l *Ledger) Timer(id ParticipantID) float64 {
	return l.ParticipantTimers[id]
}

// RecordedSeconds sums every participant timer
func (l *Ledger) RecordedSeconds() float64 {
	var total float64
	for _, secs := range l.ParticipantTimers {
		total += secs
	}
	return total
}

// Clone returns a deep copy so callers can mutate without touching the original
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.ParticipantTimers = make(map[ParticipantID]float64, len(l.ParticipantTimers))
	for id, secs := range l.ParticipantTimers {
		c.ParticipantTimers[id] = secs
	}
	return &c
}

// Clamp0 clamps negative values to zero
func Clamp0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Seconds converts a duration between two instants to clamped seconds
func Seconds(from, to time.Time) float64 {
	return Clamp0(to.Sub(from).Seconds())
}
