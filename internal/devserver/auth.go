package devserver

import (
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/taskapp/internal/model"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

type claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

func randomSecret() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}

func (s *Server) issueToken(p model.UserProfile) (string, error) {
	now := s.now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	}).SignedString(s.opts.Secret)
}

func (s *Server) parseToken(raw string) (*claims, error) {
	out := &claims{}
	_, err := jwt.ParseWithClaims(raw, out, func(t *jwt.Token) (any, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if out.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return out, nil
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, "missing_token", "Authorization header is required")
			return
		}

		tok, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, http.StatusUnauthorized, "expired_token", "Token has expired")
				return
			}
			abort(c, http.StatusUnauthorized, "invalid_token", "Token validation failed")
			return
		}

		s.mu.RLock()
		_, known := s.accounts[tok.Subject]
		s.mu.RUnlock()
		if !known {
			abort(c, http.StatusUnauthorized, "invalid_token", "Unknown user")
			return
		}

		c.Set(ctxUserID, tok.Subject)
		c.Set(ctxRole, tok.Role)
		c.Next()
	}
}

// mayAccess reports whether the caller can act on records owned by ownerID.
func mayAccess(c *gin.Context, ownerID string) bool {
	if role, _ := c.Get(ctxRole); role == model.RoleAdmin {
		return true
	}
	return c.GetString(ctxUserID) == ownerID
}

func (s *Server) expiresIn() int64 {
	return int64(s.opts.TokenTTL / time.Second)
}
