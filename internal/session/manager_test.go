package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/session"
	"github.com/nhle/taskapp/tests/testutil"
)

type fakeAuth struct {
	resp  *model.LoginResponse
	err   error
	calls int
}

func (f *fakeAuth) Login(_ context.Context, _ model.LoginRequest) (*model.LoginResponse, error) {
	f.calls++
	return f.resp, f.err
}

type recorder struct {
	mu     sync.Mutex
	states []session.State
}

func (r *recorder) watch(s session.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s.State)
}

func (r *recorder) seen() []session.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]session.State(nil), r.states...)
}

var login = model.LoginRequest{Email: "ana@x.com", Password: "pw"}

func TestManagerStartsLoading(t *testing.T) {
	m := session.NewManager(testutil.NewTokenStore(t), &fakeAuth{})
	assert.Equal(t, session.StateLoading, m.Snapshot().State)
}

func TestManagerRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		m := session.NewManager(testutil.NewTokenStore(t), &fakeAuth{})
		snap := m.Restore(ctx)
		assert.Equal(t, session.StateUnauthenticated, snap.State)
		assert.True(t, snap.Session.IsEmpty())
	})

	t.Run("stored session", func(t *testing.T) {
		ts := testutil.NewTokenStore(t)
		require.NoError(t, ts.Save(ctx, ana, "T1"))

		m := session.NewManager(ts, &fakeAuth{})
		snap := m.Restore(ctx)
		assert.Equal(t, session.StateAuthenticated, snap.State)
		assert.Equal(t, ana, snap.Session.User)
		assert.Equal(t, "T1", snap.Session.Token)
		assert.Equal(t, uint64(1), snap.Generation)
	})
}

func TestManagerSignInSuccess(t *testing.T) {
	ctx := context.Background()
	ts := testutil.NewTokenStore(t)
	auth := &fakeAuth{resp: &model.LoginResponse{AccessToken: "T1", ExpiresIn: 3600, User: ana}}
	m := session.NewManager(ts, auth)
	m.Restore(ctx)

	rec := &recorder{}
	m.Watch(rec.watch)

	require.NoError(t, m.SignIn(ctx, login))

	snap := m.Snapshot()
	assert.Equal(t, session.StateAuthenticated, snap.State)
	assert.Equal(t, ana, snap.Session.User)
	assert.False(t, snap.Session.ExpiresAt.IsZero())
	assert.Equal(t, []session.State{session.StateLoading, session.StateAuthenticated}, rec.seen())

	stored := ts.Load(ctx)
	assert.Equal(t, ana, stored.User)
	assert.Equal(t, "T1", stored.Token)
}

func TestManagerSignInFailure(t *testing.T) {
	ctx := context.Background()
	ts := testutil.NewTokenStore(t)
	loginErr := errors.New("invalid credentials")
	m := session.NewManager(ts, &fakeAuth{err: loginErr})
	m.Restore(ctx)

	err := m.SignIn(ctx, login)
	require.ErrorIs(t, err, loginErr)
	assert.Equal(t, session.StateUnauthenticated, m.Snapshot().State)
	assert.True(t, ts.Load(ctx).IsEmpty())
}

func TestManagerSignInValidatesBeforeCalling(t *testing.T) {
	auth := &fakeAuth{}
	m := session.NewManager(testutil.NewTokenStore(t), auth)
	m.Restore(context.Background())

	err := m.SignIn(context.Background(), model.LoginRequest{Email: "ana@x.com"})
	require.True(t, model.IsValidationError(err))
	assert.Zero(t, auth.calls)
	assert.Equal(t, session.StateUnauthenticated, m.Snapshot().State)
}

func TestManagerSignInFailedSave(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewTestStore(t)
	ts := session.NewTokenStore(&failingKV{KV: kv, failKey: session.TokenKey})
	m := session.NewManager(ts, &fakeAuth{resp: &model.LoginResponse{AccessToken: "T1", User: ana}})
	m.Restore(ctx)

	require.Error(t, m.SignIn(ctx, login))
	assert.Equal(t, session.StateUnauthenticated, m.Snapshot().State)
}

func TestManagerSignInMalformedResponse(t *testing.T) {
	m := session.NewManager(
		testutil.NewTokenStore(t),
		&fakeAuth{resp: &model.LoginResponse{AccessToken: "T1"}},
	)
	m.Restore(context.Background())

	require.Error(t, m.SignIn(context.Background(), login))
	assert.Equal(t, session.StateUnauthenticated, m.Snapshot().State)
}

func TestManagerSignInWhileAuthenticated(t *testing.T) {
	ctx := context.Background()
	ts := testutil.NewTokenStore(t)
	testutil.SeedSession(t, ts, ana, "T1")
	m := session.NewManager(ts, &fakeAuth{})
	m.Restore(ctx)

	require.ErrorIs(t, m.SignIn(ctx, login), session.ErrAlreadySignedIn)
	assert.Equal(t, session.StateAuthenticated, m.Snapshot().State)
}

func TestManagerSignOutOrdering(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewTestStore(t)
	ts := session.NewTokenStore(kv)
	require.NoError(t, ts.Save(ctx, ana, "T1"))

	m := session.NewManager(ts, &fakeAuth{})
	authed := m.Restore(ctx)
	genCtx := authed.Context()

	var loadingSawStoredToken, loadingSawCancelled, unauthSawEmpty bool
	m.Watch(func(s session.Snapshot) {
		switch s.State {
		case session.StateLoading:
			loadingSawStoredToken = !ts.Load(ctx).IsEmpty()
			loadingSawCancelled = genCtx.Err() != nil
		case session.StateUnauthenticated:
			unauthSawEmpty = ts.Load(ctx).IsEmpty()
		}
	})

	m.SignOut(ctx)

	assert.True(t, loadingSawStoredToken)
	assert.True(t, loadingSawCancelled)
	assert.True(t, unauthSawEmpty)
	assert.Equal(t, session.StateUnauthenticated, m.Snapshot().State)
	assert.ErrorIs(t, genCtx.Err(), context.Canceled)
}

func TestManagerGenerationsIncrease(t *testing.T) {
	ctx := context.Background()
	ts := testutil.NewTokenStore(t)
	auth := &fakeAuth{resp: &model.LoginResponse{AccessToken: "T1", User: ana}}
	m := session.NewManager(ts, auth)
	m.Restore(ctx)

	require.NoError(t, m.SignIn(ctx, login))
	first := m.Snapshot()
	m.SignOut(ctx)
	require.NoError(t, m.SignIn(ctx, login))
	second := m.Snapshot()

	assert.Greater(t, second.Generation, first.Generation)
	assert.Error(t, first.Context().Err())
	assert.NoError(t, second.Context().Err())
}

func TestManagerUnwatch(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager(testutil.NewTokenStore(t), &fakeAuth{})

	rec := &recorder{}
	unwatch := m.Watch(rec.watch)
	m.Restore(ctx)
	unwatch()
	m.SignOut(ctx)

	assert.Equal(t, []session.State{session.StateLoading, session.StateUnauthenticated}, rec.seen())
}

func TestSnapshotContextOutsideSession(t *testing.T) {
	m := session.NewManager(testutil.NewTokenStore(t), &fakeAuth{})
	snap := m.Restore(context.Background())
	assert.NoError(t, snap.Context().Err())
	assert.False(t, snap.Authenticated())
}
