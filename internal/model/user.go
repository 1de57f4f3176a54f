package model

import "strings"

// Role is the permission level the identity service assigns to a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Label returns the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleUser:
		return "User"
	default:
		return string(r)
	}
}

// UserProfile is the identity of the signed-in user as issued by the
// identity service. It is never mutated while a session is active.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Validate checks the fields every profile received from the backend
// must carry.
func (u UserProfile) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return &ValidationError{Field: "usuario.id", Message: "is missing"}
	}
	return nil
}

// UserRecord is a single entry of the user listing envelope.
type UserRecord struct {
	User UserProfile `json:"usuario"`
}

// LoginRequest is the body of the identity login call.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// Validate rejects empty credentials before any network call.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	if strings.TrimSpace(r.Password) == "" {
		return &ValidationError{Field: "senha", Message: "is required"}
	}
	return nil
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresIn   int64       `json:"expiresIn"`
	User        UserProfile `json:"usuario"`
}

// Validate checks that the response carries a usable session.
func (r LoginResponse) Validate() error {
	if strings.TrimSpace(r.AccessToken) == "" {
		return &ValidationError{Field: "accessToken", Message: "is missing"}
	}
	return r.User.Validate()
}

// RegisterRequest is the body of the identity register call.
type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
	Role     Role   `json:"role"`
}

// Validate checks required fields and that confirm matches the password.
func (r RegisterRequest) Validate(confirm string) error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return &ValidationError{Field: "nome", Message: "is required"}
	case strings.TrimSpace(r.Email) == "":
		return &ValidationError{Field: "email", Message: "is required"}
	case strings.TrimSpace(r.Password) == "":
		return &ValidationError{Field: "senha", Message: "is required"}
	case r.Password != confirm:
		return &ValidationError{Field: "senha", Message: "passwords do not match"}
	case !r.Role.Valid():
		return &ValidationError{Field: "role", Message: "must be ADMIN or USER"}
	}
	return nil
}

// Validate checks the wrapped profile.
func (r UserRecord) Validate() error {
	return r.User.Validate()
}
