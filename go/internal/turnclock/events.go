package turnclock

import "github.com/mcdev12/turntimer/go/internal/ledger"

// Event is one of the fixed set of inputs the TurnClock reacts to
type Event interface {
	// Kind names the event for logging
	Kind() string
	isEvent()
}

// TurnChanged is fired on a round or turn index change.
// An empty Participant means no participant resolved (e.g. an empty roster).
type TurnChanged struct {
	Participant ledger.ParticipantID
}

// EncounterEnded is fired when the host ends or deletes the encounter
type EncounterEnded struct{}

// PauseToggled carries the new global pause state
type PauseToggled struct {
	Paused bool
}

// Tick is the periodic live-update event
type Tick struct{}

// Suspend closes the open segment and drops the tracked encounter without
// ending it. Used when events for a different encounter take over.
type Suspend struct{}

func (TurnChanged) Kind() string    { return "TurnChanged" }
func (EncounterEnded) Kind() string { return "EncounterEnded" }
func (PauseToggled) Kind() string   { return "PauseToggled" }
func (Tick) Kind() string           { return "Tick" }
func (Suspend) Kind() string        { return "Suspend" }

func (TurnChanged) isEvent()    {}
func (EncounterEnded) isEvent() {}
func (PauseToggled) isEvent()   {}
func (Tick) isEvent()           {}
func (Suspend) isEvent()        {}

// Outcome tells the caller what to do with the ledger after a transition
type Outcome int

const (
	// OutcomeNone means the ledger was not touched
	OutcomeNone Outcome = iota
	// OutcomePersist means the ledger was mutated and should be saved
	OutcomePersist
	// OutcomeUnset means the ledger should be deleted
	OutcomeUnset
)

func (o Outcome) String() string {
	switch o {
	case OutcomePersist:
		return "persist"
	case OutcomeUnset:
		return "unset"
	default:
		return "none"
	}
}
