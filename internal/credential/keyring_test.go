package credential

import (
	"context"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/store"
)

func TestKeyringSetGetDelete(t *testing.T) {
	k := New(keyring.NewArrayKeyring(nil))
	ctx := context.Background()

	require.NoError(t, k.Set(ctx, "taskapp.token", "T1"))

	got, err := k.Get(ctx, "taskapp.token")
	require.NoError(t, err)
	assert.Equal(t, "T1", got)

	require.NoError(t, k.Delete(ctx, "taskapp.token"))
	require.NoError(t, k.Delete(ctx, "taskapp.token"))

	_, err = k.Get(ctx, "taskapp.token")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestKeyringClearRemovesEverything(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "taskapp.legacy", Data: []byte("old")},
	})
	k := New(ring)
	ctx := context.Background()

	require.NoError(t, k.Set(ctx, "taskapp.user", "{}"))
	require.NoError(t, k.Set(ctx, "taskapp.token", "T1"))
	require.NoError(t, k.Clear(ctx))

	keys, err := ring.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = k.Get(ctx, "taskapp.user")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestKeyringHonoursCancelledContext(t *testing.T) {
	k := New(keyring.NewArrayKeyring(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, k.Set(ctx, "taskapp.token", "T1"), context.Canceled)
}
