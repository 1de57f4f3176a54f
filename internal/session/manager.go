package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nhle/taskapp/internal/model"
)

// ErrAlreadySignedIn is returned by SignIn while a session is active.
var ErrAlreadySignedIn = errors.New("already signed in")

// Authenticator performs the identity service's login operation.
type Authenticator interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
}

// Snapshot is an immutable view of the Manager at one point in time.
type Snapshot struct {
	State   State
	Session Session

	// Generation identifies the authenticated period the snapshot belongs
	// to. It increases on every transition into StateAuthenticated.
	Generation uint64

	ctx context.Context
}

// Context returns the context of the snapshot's generation. It is
// cancelled as soon as that generation ends. Snapshots taken outside an
// authenticated period return context.Background().
func (s Snapshot) Context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Authenticated reports whether the snapshot holds an active session.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Watcher observes state transitions. Watchers run synchronously on the
// goroutine performing the transition, in registration order, and must
// not call Restore, SignIn or SignOut.
type Watcher func(Snapshot)

// Manager is the single owner of the process-wide Session. It is the only
// writer of the TokenStore.
type Manager struct {
	tokens *TokenStore
	auth   Authenticator
	now    func() time.Time

	// op serializes Restore, SignIn and SignOut so that storage writes
	// and transitions never interleave.
	op sync.Mutex

	mu       sync.Mutex
	state    State
	session  Session
	gen      uint64
	genCtx   context.Context
	cancel   context.CancelFunc
	watchers map[int]Watcher
	order    []int
	nextID   int
}

// NewManager returns a Manager in StateLoading. Call Restore to leave it.
func NewManager(tokens *TokenStore, auth Authenticator) *Manager {
	return &Manager{
		tokens:   tokens,
		auth:     auth,
		now:      time.Now,
		state:    StateLoading,
		watchers: make(map[int]Watcher),
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state, Generation: m.gen}
	if m.state == StateAuthenticated {
		snap.Session = m.session
		snap.ctx = m.genCtx
	}
	return snap
}

// Watch registers w and returns a function that unregisters it.
func (m *Manager) Watch(w Watcher) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.watchers[id] = w
	m.order = append(m.order, id)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

// Restore loads a persisted session from the TokenStore and becomes
// Authenticated when one exists, Unauthenticated otherwise.
func (m *Manager) Restore(ctx context.Context) Snapshot {
	m.op.Lock()
	defer m.op.Unlock()

	m.transition(StateLoading, Session{})

	s := m.tokens.Load(ctx)
	if s.IsEmpty() {
		return m.transition(StateUnauthenticated, Session{})
	}
	return m.transition(StateAuthenticated, s)
}

// SignIn authenticates against the identity service and persists the
// returned credentials. Any failure leaves the Manager Unauthenticated and
// is returned unchanged.
func (m *Manager) SignIn(ctx context.Context, req model.LoginRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	m.op.Lock()
	defer m.op.Unlock()

	if m.Snapshot().State == StateAuthenticated {
		return ErrAlreadySignedIn
	}

	m.transition(StateLoading, Session{})

	resp, err := m.auth.Login(ctx, req)
	if err != nil {
		m.transition(StateUnauthenticated, Session{})
		return err
	}
	if err := resp.Validate(); err != nil {
		m.transition(StateUnauthenticated, Session{})
		return fmt.Errorf("login response: %w", err)
	}

	if err := m.tokens.Save(ctx, resp.User, resp.AccessToken); err != nil {
		m.transition(StateUnauthenticated, Session{})
		return err
	}

	m.transition(StateAuthenticated, Session{
		User:      resp.User,
		Token:     resp.AccessToken,
		ExpiresAt: m.expiry(resp),
	})
	return nil
}

// SignOut ends the current session. The outgoing generation is cancelled
// and watchers are told (so subscriptions are torn down) before the
// TokenStore is cleared. It always ends Unauthenticated.
func (m *Manager) SignOut(ctx context.Context) {
	m.op.Lock()
	defer m.op.Unlock()

	m.transition(StateLoading, Session{})

	if err := m.tokens.Clear(ctx); err != nil {
		log.Printf("session: clearing token store: %v", err)
	}

	m.transition(StateUnauthenticated, Session{})
}

// transition moves to state, ending the current generation when leaving
// StateAuthenticated and starting a new one when entering it, then
// notifies watchers outside the lock.
func (m *Manager) transition(state State, s Session) Snapshot {
	m.mu.Lock()
	if m.state == StateAuthenticated && m.cancel != nil {
		m.cancel()
		m.cancel = nil
		m.genCtx = nil
	}

	m.state = state
	m.session = Session{}
	if state == StateAuthenticated {
		m.gen++
		m.session = s
		m.genCtx, m.cancel = context.WithCancel(context.Background())
	}

	snap := m.snapshotLocked()
	watchers := make([]Watcher, 0, len(m.watchers))
	for _, id := range m.order {
		if w, ok := m.watchers[id]; ok {
			watchers = append(watchers, w)
		}
	}
	m.mu.Unlock()

	for _, w := range watchers {
		w(snap)
	}
	return snap
}

func (m *Manager) expiry(resp *model.LoginResponse) time.Time {
	if resp.ExpiresIn > 0 {
		return m.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return TokenExpiry(resp.AccessToken)
}
