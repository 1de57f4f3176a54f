package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/session"
	"github.com/nhle/taskapp/internal/store"
	"github.com/nhle/taskapp/tests/testutil"
)

var ana = model.UserProfile{ID: "u1", Name: "Ana", Email: "ana@x.com", Role: model.RoleUser}

// failingKV wraps a KV and fails writes to a single key.
type failingKV struct {
	store.KV
	failKey string
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.KV.Set(ctx, key, value)
}

func TestTokenStoreSaveLoad(t *testing.T) {
	ts := session.NewTokenStore(testutil.NewTestStore(t))
	ctx := context.Background()

	require.NoError(t, ts.Save(ctx, ana, "T1"))

	got := ts.Load(ctx)
	assert.Equal(t, ana, got.User)
	assert.Equal(t, "T1", got.Token)
	assert.True(t, got.ExpiresAt.IsZero())

	token, err := ts.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestTokenStoreLoadEmpty(t *testing.T) {
	ts := session.NewTokenStore(testutil.NewTestStore(t))

	assert.True(t, ts.Load(context.Background()).IsEmpty())

	token, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestTokenStoreClear(t *testing.T) {
	ts := session.NewTokenStore(testutil.NewTestStore(t))
	ctx := context.Background()

	require.NoError(t, ts.Save(ctx, ana, "T1"))
	require.NoError(t, ts.Clear(ctx))

	assert.Equal(t, session.Session{}, ts.Load(ctx))
}

func TestTokenStorePartialEntriesLoadEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("profile only", func(t *testing.T) {
		kv := testutil.NewTestStore(t)
		require.NoError(t, kv.Set(ctx, session.UserKey, `{"id":"u1","nome":"Ana"}`))
		assert.True(t, session.NewTokenStore(kv).Load(ctx).IsEmpty())
	})

	t.Run("token only", func(t *testing.T) {
		kv := testutil.NewTestStore(t)
		require.NoError(t, kv.Set(ctx, session.TokenKey, "T1"))
		assert.True(t, session.NewTokenStore(kv).Load(ctx).IsEmpty())
	})

	t.Run("unparsable profile", func(t *testing.T) {
		kv := testutil.NewTestStore(t)
		require.NoError(t, kv.Set(ctx, session.UserKey, "{not json"))
		require.NoError(t, kv.Set(ctx, session.TokenKey, "T1"))
		assert.True(t, session.NewTokenStore(kv).Load(ctx).IsEmpty())
	})

	t.Run("profile without id", func(t *testing.T) {
		kv := testutil.NewTestStore(t)
		require.NoError(t, kv.Set(ctx, session.UserKey, `{"nome":"Ana"}`))
		require.NoError(t, kv.Set(ctx, session.TokenKey, "T1"))
		assert.True(t, session.NewTokenStore(kv).Load(ctx).IsEmpty())
	})
}

func TestTokenStoreFailedTokenWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewTestStore(t)
	ts := session.NewTokenStore(&failingKV{KV: kv, failKey: session.TokenKey})

	require.Error(t, ts.Save(ctx, ana, "T1"))

	_, err := kv.Get(ctx, session.UserKey)
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.True(t, ts.Load(ctx).IsEmpty())
}

func TestTokenStoreRejectsEmptyToken(t *testing.T) {
	ts := session.NewTokenStore(testutil.NewTestStore(t))
	require.Error(t, ts.Save(context.Background(), ana, "  "))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.True(t, exp.Equal(session.TokenExpiry(signed)))
	assert.True(t, exp.Equal(session.TokenExpiry(`"`+signed+`"`)))
	assert.True(t, session.TokenExpiry("opaque-token").IsZero())
	assert.True(t, session.TokenExpiry("a.b.c").IsZero())
}
