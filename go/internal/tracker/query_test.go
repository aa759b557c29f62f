package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/mcdev12/turntimer/go/internal/turnclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Queries(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown encounter reads zero", func(t *testing.T) {
		f := newFixture(t, RoleHost, DefaultConfig())

		total, err := f.svc.TotalElapsed(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, total)

		p, err := f.svc.ParticipantElapsed(ctx, "missing", "nobody")
		require.NoError(t, err)
		assert.Zero(t, p)
	})

	t.Run("live share is included", func(t *testing.T) {
		f := newFixture(t, RoleHost, DefaultConfig())
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "a"}))
		f.clock.Advance(6 * time.Second)
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "b"}))
		f.clock.Advance(4 * time.Second)

		total, err := f.svc.TotalElapsed(ctx, encA)
		require.NoError(t, err)
		assert.Equal(t, 10.0, total)

		b, err := f.svc.ParticipantElapsed(ctx, encA, "b")
		require.NoError(t, err)
		assert.Equal(t, 4.0, b)

		wall, err := f.svc.WallClockElapsed(ctx, encA)
		require.NoError(t, err)
		assert.Equal(t, 10.0, wall)
	})

	t.Run("pause in progress is excluded from wall clock", func(t *testing.T) {
		f := newFixture(t, RoleHost, DefaultConfig())
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "a"}))
		f.clock.Advance(5 * time.Second)
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.PauseToggled{Paused: true}))
		f.clock.Advance(20 * time.Second)

		wall, err := f.svc.WallClockElapsed(ctx, encA)
		require.NoError(t, err)
		assert.Equal(t, 5.0, wall)

		a, err := f.svc.ParticipantElapsed(ctx, encA, "a")
		require.NoError(t, err)
		assert.Equal(t, 5.0, a)
	})
}

func TestService_Snapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled toggle reports nothing", func(t *testing.T) {
		f := newFixture(t, RoleHost, DefaultConfig())
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "a"}))
		f.clock.Advance(3 * time.Second)
		f.toggle.SetEnabled(false)

		snap, err := f.svc.Snapshot(ctx, encA)

		require.NoError(t, err)
		assert.False(t, snap.Enabled)
		assert.Empty(t, snap.Participants)
		assert.Equal(t, "00:00:00", snap.TotalFormatted)
	})

	t.Run("rows sorted with the live participant highlighted", func(t *testing.T) {
		f := newFixture(t, RoleHost, DefaultConfig())
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "zed"}))
		f.clock.Advance(75 * time.Second)
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "amy"}))
		f.clock.Advance(3 * time.Second)

		snap, err := f.svc.Snapshot(ctx, encA)

		require.NoError(t, err)
		assert.True(t, snap.Enabled)
		assert.False(t, snap.Paused)
		assert.Equal(t, "amy", snap.ActiveParticipant)
		require.Len(t, snap.Participants, 2)

		assert.Equal(t, ParticipantTime{ParticipantID: "amy", Seconds: 3, Formatted: "00:00:03", Active: true}, snap.Participants[0])
		assert.Equal(t, ParticipantTime{ParticipantID: "zed", Seconds: 75, Formatted: "00:01:15", Active: false}, snap.Participants[1])
		assert.Equal(t, 78.0, snap.TotalSeconds)
		assert.Equal(t, "00:01:18", snap.TotalFormatted)
		assert.True(t, snap.GeneratedAt.Equal(epoch.Add(78*time.Second)))
	})

	t.Run("paused participant is not highlighted", func(t *testing.T) {
		f := newFixture(t, RoleHost, DefaultConfig())
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "a"}))
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.PauseToggled{Paused: true}))

		snap, err := f.svc.Snapshot(ctx, encA)

		require.NoError(t, err)
		assert.True(t, snap.Paused)
		require.Len(t, snap.Participants, 1)
		assert.False(t, snap.Participants[0].Active)
	})

	t.Run("snapshot of another encounter has no live row", func(t *testing.T) {
		f := newFixture(t, RoleHost, DefaultConfig())
		require.NoError(t, f.svc.Apply(ctx, encA, turnclock.TurnChanged{Participant: "a"}))

		snap, err := f.svc.Snapshot(ctx, encB)

		require.NoError(t, err)
		assert.Empty(t, snap.ActiveParticipant)
		assert.Empty(t, snap.Participants)
	})
}
