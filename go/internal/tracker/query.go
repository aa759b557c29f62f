package tracker

import (
	"context"
	"sort"
	"time"

	"github.com/mcdev12/turntimer/go/internal/ledger"
	"github.com/mcdev12/turntimer/go/internal/turnclock"
)

// ParticipantTime is one participant's row in a snapshot
type ParticipantTime struct {
	ParticipantID string  `json:"participant_id"`
	Seconds       float64 `json:"seconds"`
	Formatted     string  `json:"formatted"`
	Active        bool    `json:"active"`
}

// Snapshot is the display-ready view of one encounter's timers
type Snapshot struct {
	EncounterID       string            `json:"encounter_id"`
	Enabled           bool              `json:"enabled"`
	Paused            bool              `json:"paused"`
	ActiveParticipant string            `json:"active_participant,omitempty"`
	TotalSeconds      float64           `json:"total_seconds"`
	TotalFormatted    string            `json:"total_formatted"`
	WallClockSeconds  float64           `json:"wall_clock_seconds"`
	Participants      []ParticipantTime `json:"participants"`
	GeneratedAt       time.Time         `json:"generated_at"`
}

// TotalElapsed returns the accrued active seconds of the encounter
func (s *Service) TotalElapsed(ctx context.Context, encounterID ledger.EncounterID) (float64, error) {
	l, err := s.load(ctx, encounterID)
	if err != nil {
		return 0, err
	}
	return s.turns.TotalElapsed(encounterID, l), nil
}

// ParticipantElapsed returns the seconds recorded for a participant including
// the live share of an open segment
func (s *Service) ParticipantElapsed(ctx context.Context, encounterID ledger.EncounterID, participantID ledger.ParticipantID) (float64, error) {
	l, err := s.load(ctx, encounterID)
	if err != nil {
		return 0, err
	}
	return s.turns.ParticipantElapsed(encounterID, l, participantID), nil
}

// WallClockElapsed returns seconds since the encounter started, minus pauses
func (s *Service) WallClockElapsed(ctx context.Context, encounterID ledger.EncounterID) (float64, error) {
	l, err := s.load(ctx, encounterID)
	if err != nil {
		return 0, err
	}
	return s.turns.WallClockElapsed(encounterID, l), nil
}

// Snapshot builds the display view of an encounter. When the feature toggle
// is off nothing is computed and the snapshot only reports that.
func (s *Service) Snapshot(ctx context.Context, encounterID ledger.EncounterID) (*Snapshot, error) {
	snap := &Snapshot{
		EncounterID:  string(encounterID),
		Participants: []ParticipantTime{},
		GeneratedAt:  s.clock.Now(),
	}
	if !s.toggle.Enabled() {
		snap.TotalFormatted = turnclock.FormatTime(0)
		return snap, nil
	}
	snap.Enabled = true

	l, err := s.load(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	st := s.turns.State()
	if st.Encounter == encounterID {
		snap.Paused = st.Paused()
		snap.ActiveParticipant = string(st.ActiveParticipant)
	}

	ids := make(map[ledger.ParticipantID]struct{}, len(l.ParticipantTimers)+1)
	for id := range l.ParticipantTimers {
		ids[id] = struct{}{}
	}
	if snap.ActiveParticipant != "" {
		ids[ledger.ParticipantID(snap.ActiveParticipant)] = struct{}{}
	}

	for id := range ids {
		secs := s.turns.ParticipantElapsed(encounterID, l, id)
		snap.Participants = append(snap.Participants, ParticipantTime{
			ParticipantID: string(id),
			Seconds:       secs,
			Formatted:     turnclock.FormatTime(secs),
			Active:        s.turns.IsLive(encounterID, id),
		})
	}
	sort.Slice(snap.Participants, func(i, j int) bool {
		return snap.Participants[i].ParticipantID < snap.Participants[j].ParticipantID
	})

	snap.TotalSeconds = s.turns.TotalElapsed(encounterID, l)
	snap.TotalFormatted = turnclock.FormatTime(snap.TotalSeconds)
	snap.WallClockSeconds = s.turns.WallClockElapsed(encounterID, l)
	return snap, nil
}
