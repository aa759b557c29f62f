package ledger

// Schema creates the encounter_ledgers table used by PostgresStore
const Schema = `
CREATE TABLE IF NOT EXISTS encounter_ledgers (
    encounter_id            TEXT PRIMARY KEY,
    started_at              TIMESTAMPTZ NOT NULL,
    participant_timers      JSONB,
    paused_seconds          DOUBLE PRECISION NOT NULL DEFAULT 0,
    last_paused_participant TEXT,
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
