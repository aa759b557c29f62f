package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcdev12/turntimer/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// DefaultNotifyChannel is the channel ledger writes are announced on
const DefaultNotifyChannel = "encounter_ledger_changes"

const (
	selectLedgerSQL = `
		SELECT started_at, participant_timers, paused_seconds, last_paused_participant
		FROM encounter_ledgers
		WHERE encounter_id = $1`

	upsertLedgerSQL = `
		INSERT INTO encounter_ledgers (
		  encounter_id, started_at, participant_timers, paused_seconds, last_paused_participant, updated_at
		) VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (encounter_id) DO UPDATE SET
		  participant_timers = EXCLUDED.participant_timers,
		  paused_seconds = EXCLUDED.paused_seconds,
		  last_paused_participant = EXCLUDED.last_paused_participant,
		  updated_at = now()`

	deleteLedgerSQL = `DELETE FROM encounter_ledgers WHERE encounter_id = $1`

	notifySQL = `SELECT pg_notify($1, $2)`
)

// PostgresStore persists ledgers in the encounter_ledgers table.
// started_at is written on insert only so the encounter start stays immutable.
type PostgresStore struct {
	db            *sql.DB
	notifyChannel string
}

// NewPostgresStore creates a store on top of an open lib/pq connection pool
func NewPostgresStore(db *sql.DB, notifyChannel string) *PostgresStore {
	if notifyChannel == "" {
		notifyChannel = DefaultNotifyChannel
	}
	return &PostgresStore{
		db:            db,
		notifyChannel: notifyChannel,
	}
}

func (s *PostgresStore) Get(ctx context.Context, id EncounterID) (*Ledger, error) {
	var (
		startedAt     time.Time
		timers        pqtype.NullRawMessage
		pausedSeconds float64
		lastPaused    sql.NullString
	)

	err := s.db.QueryRowContext(ctx, selectLedgerSQL, string(id)).Scan(&startedAt, &timers, &pausedSeconds, &lastPaused)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	l := New(startedAt)
	l.PausedSeconds = pausedSeconds
	l.LastPausedParticipant = ParticipantID(sqlutil.FromSqlString(lastPaused, ""))

	if raw := sqlutil.FromNullRawMessage(timers); raw != nil {
		if err := json.Unmarshal(raw, &l.ParticipantTimers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal participant timers: %w", err)
		}
		if l.ParticipantTimers == nil {
			l.ParticipantTimers = make(map[ParticipantID]float64)
		}
	}

	return l, nil
}

func (s *PostgresStore) Set(ctx context.Context, id EncounterID, l *Ledger) error {
	timers, err := json.Marshal(l.ParticipantTimers)
	if err != nil {
		return fmt.Errorf("failed to marshal participant timers: %w", err)
	}

	return sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, upsertLedgerSQL,
			string(id),
			l.StartTime,
			sqlutil.ToNullRawMessage(timers),
			l.PausedSeconds,
			sqlutil.ToSqlString(string(l.LastPausedParticipant)),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert ledger: %w", err)
		}
		return s.notify(ctx, tx, id)
	})
}

func (s *PostgresStore) Unset(ctx context.Context, id EncounterID) error {
	return sqlutil.Run(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteLedgerSQL, string(id)); err != nil {
			return fmt.Errorf("failed to delete ledger: %w", err)
		}
		return s.notify(ctx, tx, id)
	})
}

func (s *PostgresStore) notify(ctx context.Context, tx *sql.Tx, id EncounterID) error {
	if _, err := tx.ExecContext(ctx, notifySQL, s.notifyChannel, string(id)); err != nil {
		return fmt.Errorf("failed to notify ledger change: %w", err)
	}
	return nil
}
