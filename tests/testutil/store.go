package testutil

import (
	"context"
	"testing"

	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/session"
	"github.com/nhle/taskapp/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with the kv table migrated.
// It is closed when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTokenStore returns an empty TokenStore over a fresh in-memory store.
func NewTokenStore(t *testing.T) *session.TokenStore {
	t.Helper()
	return session.NewTokenStore(NewTestStore(t))
}

// SeedSession persists profile and token as if a sign-in had happened.
func SeedSession(t *testing.T, ts *session.TokenStore, profile model.UserProfile, token string) {
	t.Helper()
	if err := ts.Save(context.Background(), profile, token); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
}
