package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/store"
)

// Storage keys for the two session entries.
const (
	UserKey  = "taskapp.user"
	TokenKey = "taskapp.token"
)

// TokenStore persists the session's profile and bearer token in durable
// local storage. Only the Manager writes to it.
type TokenStore struct {
	kv store.KV
}

// NewTokenStore returns a TokenStore over kv.
func NewTokenStore(kv store.KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// Save persists profile and token. The token is written last, and a failed
// token write removes the profile again, so Load observes both or neither.
func (s *TokenStore) Save(ctx context.Context, profile model.UserProfile, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("saving session: empty token")
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}

	if err := s.kv.Set(ctx, UserKey, string(data)); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		if delErr := s.kv.Delete(context.WithoutCancel(ctx), UserKey); delErr != nil {
			log.Printf("session: rolling back profile after failed token write: %v", delErr)
		}
		return fmt.Errorf("saving token: %w", err)
	}

	return nil
}

// Load reads the persisted session. Any missing, unreadable or unparsable
// entry yields the empty Session; storage errors are never surfaced.
func (s *TokenStore) Load(ctx context.Context) Session {
	rawUser, err := s.kv.Get(ctx, UserKey)
	if err != nil {
		logLoadFailure("profile", err)
		return Session{}
	}

	token, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		logLoadFailure("token", err)
		return Session{}
	}
	if strings.TrimSpace(token) == "" {
		return Session{}
	}

	var profile model.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &profile); err != nil {
		log.Printf("session: stored profile is not valid JSON: %v", err)
		return Session{}
	}
	if err := profile.Validate(); err != nil {
		log.Printf("session: stored profile rejected: %v", err)
		return Session{}
	}

	return Session{
		User:      profile,
		Token:     token,
		ExpiresAt: TokenExpiry(token),
	}
}

// Token returns the raw stored bearer token, or "" when none is stored.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.kv.Get(ctx, TokenKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Clear removes all session data.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func logLoadFailure(entry string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	log.Printf("session: reading stored %s: %v", entry, err)
}
