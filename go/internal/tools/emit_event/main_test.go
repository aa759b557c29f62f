package main

import (
	"encoding/json"
	"testing"

	"github.com/mcdev12/turntimer/go/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvelope(t *testing.T) {
	env, err := buildEnvelope("enc-1", "turn", "p7")
	require.NoError(t, err)
	assert.Equal(t, events.EventTypeTurnChanged, env.EventType)
	var turn events.TurnChangedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &turn))
	assert.Equal(t, "p7", turn.ParticipantID)

	env, err = buildEnvelope("enc-1", "resume", "")
	require.NoError(t, err)
	var pause events.PauseChangedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &pause))
	assert.False(t, pause.Paused)

	env, err = buildEnvelope("enc-1", "end", "")
	require.NoError(t, err)
	assert.Equal(t, events.EventTypeEncounterEnded, env.EventType)

	_, err = buildEnvelope("enc-1", "kick", "")
	assert.Error(t, err)
}
