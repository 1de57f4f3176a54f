package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/taskapp/internal/model"
)

func (s *Server) mountIdentity(g *gin.RouterGroup) {
	g.POST("/usuario/login", s.login)
	g.POST("/usuario/register", s.register)
	g.GET("/usuario", s.listUsers)
	if s.opts.UsersPath != "/usuario" {
		g.GET(s.opts.UsersPath, s.listUsers)
	}
}

// AddUser registers an account directly, bypassing HTTP.
func (s *Server) AddUser(req model.RegisterRequest) (model.UserProfile, error) {
	if err := req.Validate(req.Password); err != nil {
		return model.UserProfile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.PasswordCost)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("hashing password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[email]; taken {
		return model.UserProfile{}, errEmailTaken
	}

	profile := model.UserProfile{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(req.Name),
		Email: email,
		Role:  req.Role,
	}
	s.accounts[profile.ID] = &account{profile: profile, hash: hash}
	s.emails[email] = profile.ID
	return profile, nil
}

var errEmailTaken = errors.New("email already registered")

func (s *Server) login(c *gin.Context) {
	if !s.logins.Allow() {
		abort(c, http.StatusTooManyRequests, "too_many_attempts", "Too many login attempts, try again later")
		return
	}

	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		return
	}
	if err := req.Validate(); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.mu.RLock()
	acct, ok := s.accounts[s.emails[strings.ToLower(strings.TrimSpace(req.Email))]]
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		abort(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	token, err := s.issueToken(acct.profile)
	if err != nil {
		abort(c, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.expiresIn(),
		User:        acct.profile,
	})
}

func (s *Server) register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", "Invalid request format")
		return
	}

	profile, err := s.AddUser(req)
	switch {
	case errors.Is(err, errEmailTaken):
		abort(c, http.StatusConflict, "email_taken", "Email already registered")
		return
	case model.IsValidationError(err):
		abort(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case err != nil:
		abort(c, http.StatusInternalServerError, "register_failed", err.Error())
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.RLock()
	records := make([]model.UserRecord, 0, len(s.accounts))
	for _, acct := range s.accounts {
		records = append(records, model.UserRecord{User: acct.profile})
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].User.Email < records[j].User.Email
	})
	c.JSON(http.StatusOK, pageOf(records, 0))
}
