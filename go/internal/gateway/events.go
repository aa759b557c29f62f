package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TimerEvent is the envelope pushed to WebSocket clients
type TimerEvent struct {
	ID          string          `json:"id"`           // Event UUID
	EncounterID string          `json:"encounter_id"` // Encounter the event belongs to
	Type        EventType       `json:"type"`         // Event type
	Timestamp   time.Time       `json:"timestamp"`    // Event creation time
	Data        json.RawMessage `json:"data"`         // Event-specific payload
}

// EventType represents the type of timer event sent to clients
type EventType string

const (
	EventTypeTimerSnapshot   EventType = "TimerSnapshot"
	EventTypeSettingsChanged EventType = "SettingsChanged"
)

// SettingsPayload reports the feature toggle state
type SettingsPayload struct {
	Enabled bool `json:"enabled"`
}

// NewTimerEvent wraps payload into an event for encounterID
func NewTimerEvent(encounterID string, eventType EventType, payload any) (*TimerEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &TimerEvent{
		ID:          uuid.New().String(),
		EncounterID: encounterID,
		Type:        eventType,
		Timestamp:   time.Now(),
		Data:        data,
	}, nil
}
