package tracker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/turntimer/go/internal/events"
	"github.com/mcdev12/turntimer/go/internal/ledger"
	"github.com/mcdev12/turntimer/go/internal/turnclock"
	"github.com/rs/zerolog/log"
)

// HandleDomainEvent decodes a host event and queues the matching transition
func (s *Service) HandleDomainEvent(ctx context.Context, eventType events.EventType, encounterID string, payload []byte) error {
	log.Debug().
		Str("event_type", string(eventType)).
		Str("encounter_id", encounterID).
		Msg("handling host event")

	id := ledger.EncounterID(encounterID)

	switch eventType {
	case events.EventTypeTurnChanged:
		var p events.TurnChangedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: TurnChanged payload: %v", ErrMalformedEvent, err)
		}
		if id == "" {
			return fmt.Errorf("%w: TurnChanged has no encounter id", ErrMalformedEvent)
		}
		return s.Submit(ctx, id, turnclock.TurnChanged{Participant: ledger.ParticipantID(p.ParticipantID)})

	case events.EventTypeEncounterEnded:
		return s.Submit(ctx, id, turnclock.EncounterEnded{})

	case events.EventTypePauseChanged:
		var p events.PauseChangedPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("%w: PauseChanged payload: %v", ErrMalformedEvent, err)
		}
		return s.Submit(ctx, id, turnclock.PauseToggled{Paused: p.Paused})

	case events.EventTypeRenderRequested:
		if id == "" {
			id = s.turns.Encounter()
		}
		return s.RequestRender(ctx, id)

	default:
		log.Warn().
			Str("event_type", string(eventType)).
			Str("encounter_id", encounterID).
			Msg("unknown event type - ignoring")
		return nil
	}
}
