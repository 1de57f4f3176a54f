// Package session owns the signed-in user's credentials: their durable
// storage and the sign-in/sign-out lifecycle.
package session

import (
	"time"

	"github.com/nhle/taskapp/internal/model"
)

// Session is the client-side record of who is logged in and with which
// bearer token. The zero value is the empty (logged out) session.
// User and Token are either both set or both empty.
type Session struct {
	User  model.UserProfile
	Token string

	// ExpiresAt is informational only; zero when unknown.
	ExpiresAt time.Time
}

// IsEmpty reports whether s holds no credentials.
func (s Session) IsEmpty() bool {
	return s.Token == ""
}

// State is the Session Manager's lifecycle state.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}
