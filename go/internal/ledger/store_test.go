package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing ledger", func(t *testing.T) {
		store := NewMemoryStore()

		_, err := store.Get(ctx, "enc-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		store := NewMemoryStore()
		l := New(time.Now())
		l.Credit("a", 5)

		require.NoError(t, store.Set(ctx, "enc-1", l))

		got, err := store.Get(ctx, "enc-1")
		require.NoError(t, err)
		assert.Equal(t, 5.0, got.Timer("a"))
	})

	t.Run("stored copy is isolated from caller", func(t *testing.T) {
		store := NewMemoryStore()
		l := New(time.Now())
		require.NoError(t, store.Set(ctx, "enc-1", l))

		l.Credit("a", 99)
		got, err := store.Get(ctx, "enc-1")
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.Timer("a"))

		got.Credit("b", 1)
		again, err := store.Get(ctx, "enc-1")
		require.NoError(t, err)
		assert.Equal(t, 0.0, again.Timer("b"))
	})

	t.Run("unset removes", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Set(ctx, "enc-1", New(time.Now())))
		require.NoError(t, store.Unset(ctx, "enc-1"))

		_, err := store.Get(ctx, "enc-1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, store.Unset(ctx, "enc-1"), "unset of missing ledger is not an error")
	})
}
