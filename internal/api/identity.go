package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/taskapp/internal/model"
)

// DefaultUsersPath is where the identity service serves its user listing.
const DefaultUsersPath = "/usuario/login"

// Identity is the client for the identity service. Its calls are not
// authenticated.
type Identity struct {
	client    *Client
	usersPath string
}

// NewIdentity returns an identity client. An empty usersPath selects
// DefaultUsersPath.
func NewIdentity(client *Client, usersPath string) *Identity {
	if usersPath == "" {
		usersPath = DefaultUsersPath
	}
	return &Identity{client: client, usersPath: usersPath}
}

// Login exchanges credentials for a bearer token and profile.
func (i *Identity) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := i.client.Post(ctx, "/usuario/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, fmt.Errorf("login: %w: %v", ErrMalformedResponse, err)
	}
	return &resp, nil
}

// Register creates an account. The returned profile is whatever the
// service echoes back and may be partially filled.
func (i *Identity) Register(ctx context.Context, req model.RegisterRequest) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := i.client.Post(ctx, "/usuario/register", req, &profile); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &profile, nil
}

// ListUsers returns every registered user.
func (i *Identity) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	var page model.Page[model.UserRecord]
	query := url.Values{"unPaged": {"true"}}
	if err := i.client.Get(ctx, i.usersPath, query, &page); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if err := model.ValidatePage(page); err != nil {
		return nil, fmt.Errorf("listing users: %w: %v", ErrMalformedResponse, err)
	}

	users := make([]model.UserProfile, 0, len(page.Records))
	for _, rec := range page.Records {
		users = append(users, rec.User)
	}
	return users, nil
}
