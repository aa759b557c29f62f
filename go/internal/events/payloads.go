package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event payload types shared between the tracker consumer and publishers

// EventType names a host event on the wire
type EventType string

const (
	EventTypeTurnChanged     EventType = "TurnChanged"
	EventTypeEncounterEnded  EventType = "EncounterEnded"
	EventTypePauseChanged    EventType = "PauseChanged"
	EventTypeRenderRequested EventType = "RenderRequested"
)

// Envelope wraps every host event published to the ENCOUNTER_EVENTS stream
type Envelope struct {
	EventID     string          `json:"eventId"`
	EventType   EventType       `json:"eventType"`
	EncounterID string          `json:"encounterId"`
	Timestamp   time.Time       `json:"timestamp"`
	Payload     json.RawMessage `json:"payload"`
}

// TurnChangedPayload is the payload for a TurnChanged event.
// ParticipantID is empty when no participant resolves for the new turn.
type TurnChangedPayload struct {
	ParticipantID string    `json:"participant_id,omitempty"`
	Round         int       `json:"round"`
	Turn          int       `json:"turn"`
	ChangedAt     time.Time `json:"changed_at"`
}

// EncounterEndedPayload is the payload for an EncounterEnded event
type EncounterEndedPayload struct {
	EndedAt time.Time `json:"ended_at"`
}

// PauseChangedPayload is the payload for a PauseChanged event
type PauseChangedPayload struct {
	Paused    bool      `json:"paused"`
	ChangedAt time.Time `json:"changed_at"`
}

// RenderRequestedPayload is the payload for a RenderRequested event
type RenderRequestedPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// SubjectPrefix is the NATS subject root for host events
const SubjectPrefix = "encounter.events."

// Subject returns the NATS subject an event type is published on
func Subject(eventType EventType) string {
	return SubjectPrefix + string(eventType)
}

// NewEnvelope marshals payload into an envelope for encounterID
func NewEnvelope(eventType EventType, encounterID string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Envelope{
		EventID:     uuid.New().String(),
		EventType:   eventType,
		EncounterID: encounterID,
		Timestamp:   time.Now().UTC(),
		Payload:     data,
	}, nil
}
