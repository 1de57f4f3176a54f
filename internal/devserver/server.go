// Package devserver is an in-memory stand-in for the identity, task and
// notification services. It speaks the same wire format as the real
// backends and is used by tests and by `taskapp devserver`.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	gosync "sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nhle/taskapp/internal/model"
	tasksync "github.com/nhle/taskapp/internal/sync"
)

// Options configures a Server.
type Options struct {
	// Secret signs HS256 access tokens. A random secret is used when empty.
	Secret []byte

	// TokenTTL is the lifetime of issued tokens. Defaults to one hour.
	TokenTTL time.Duration

	// Publisher, when set, receives a change event on TopicFor(ownerID)
	// after every task write.
	Publisher tasksync.Publisher
	TopicFor  func(userID string) string

	// UsersPath is where the user listing is served in addition to
	// /usuario.
	UsersPath string

	// LoginRate caps login attempts per second across all accounts, with
	// bursts of LoginBurst. Zero means unlimited.
	LoginRate  float64
	LoginBurst int

	// PasswordCost is the bcrypt cost for stored passwords. Defaults to
	// bcrypt.DefaultCost.
	PasswordCost int
}

// Server holds all state in memory. It is safe for concurrent use.
type Server struct {
	opts   Options
	now    func() time.Time
	logins *rate.Limiter

	mu            gosync.RWMutex
	accounts      map[string]*account
	emails        map[string]string
	tasks         map[string]model.Task
	notifications map[string]model.Notification
}

type account struct {
	profile model.UserProfile
	hash    []byte
}

// New creates an empty Server.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = randomSecret()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.TopicFor == nil {
		opts.TopicFor = func(userID string) string { return "notifications/" + userID }
	}
	if opts.UsersPath == "" {
		opts.UsersPath = "/usuario/login"
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}

	limit := rate.Inf
	if opts.LoginRate > 0 {
		limit = rate.Limit(opts.LoginRate)
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 1
	}

	return &Server{
		opts:          opts,
		now:           time.Now,
		logins:        rate.NewLimiter(limit, opts.LoginBurst),
		accounts:      make(map[string]*account),
		emails:        make(map[string]string),
		tasks:         make(map[string]model.Task),
		notifications: make(map[string]model.Notification),
	}
}

// Handler serves all three services from a single engine rooted at /v1.
func (s *Server) Handler() http.Handler {
	r := newEngine()
	v1 := r.Group("/v1")
	s.mountIdentity(v1)
	s.mountTasks(v1)
	s.mountNotifications(v1)
	return r
}

// IdentityHandler serves only the identity service.
func (s *Server) IdentityHandler() http.Handler {
	r := newEngine()
	s.mountIdentity(r.Group("/v1"))
	return r
}

// TasksHandler serves only the task service.
func (s *Server) TasksHandler() http.Handler {
	r := newEngine()
	s.mountTasks(r.Group("/v1"))
	return r
}

// NotificationsHandler serves only the notification service.
func (s *Server) NotificationsHandler() http.Handler {
	r := newEngine()
	s.mountNotifications(r.Group("/v1"))
	return r
}

// Addrs are the listen addresses of the three services.
type Addrs struct {
	Identity      string
	Tasks         string
	Notifications string
}

// Run serves each service on its own address until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addrs Addrs) error {
	servers := []*http.Server{
		{Addr: addrs.Identity, Handler: s.IdentityHandler(), ReadHeaderTimeout: 10 * time.Second},
		{Addr: addrs.Tasks, Handler: s.TasksHandler(), ReadHeaderTimeout: 10 * time.Second},
		{Addr: addrs.Notifications, Handler: s.NotificationsHandler(), ReadHeaderTimeout: 10 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Printf("devserver: listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, srv := range servers {
			_ = srv.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), cors.Default())
	return r
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

func pageOf[T any](records []T, pageSize int) model.Page[T] {
	if records == nil {
		records = []T{}
	}
	pages := 1
	if pageSize > 0 && len(records) > 0 {
		pages = (len(records) + pageSize - 1) / pageSize
	}
	return model.Page[T]{
		Records: records,
		Info:    model.PageInfo{TotalPages: pages, TotalElements: len(records)},
	}
}
