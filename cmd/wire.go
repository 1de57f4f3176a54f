package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nhle/taskapp/internal/api"
	"github.com/nhle/taskapp/internal/credential"
	"github.com/nhle/taskapp/internal/model"
	"github.com/nhle/taskapp/internal/session"
	"github.com/nhle/taskapp/internal/store"
	tasksync "github.com/nhle/taskapp/internal/sync"
)

var errNotSignedIn = errors.New("not signed in; run `taskapp login` first")

type app struct {
	configPath string
	cfg        *model.AppConfig

	closers []func() error

	tokens        *session.TokenStore
	identity      *api.Identity
	tasks         *api.Tasks
	notifications *api.Notifications
	manager       *session.Manager
}

func (a *app) loadConfig() error {
	cfg, err := model.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return nil
}

// wire opens credential storage and builds the service clients. Commands
// that never touch a session skip it.
func (a *app) wire() error {
	if a.manager != nil {
		return nil
	}

	kv, closer, err := openStorage(a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("wire credential storage: %w", err)
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	timeout := time.Duration(a.cfg.Backend.TimeoutSec) * time.Second
	a.tokens = session.NewTokenStore(kv)
	a.identity = api.NewIdentity(api.NewClient("identity", a.cfg.Backend.IdentityURL, nil, timeout), a.cfg.Backend.UsersPath)
	a.tasks = api.NewTasks(api.NewClient("tasks", a.cfg.Backend.TaskURL, a.tokens, timeout))
	a.notifications = api.NewNotifications(api.NewClient("notifications", a.cfg.Backend.NotificationURL, a.tokens, timeout))
	a.manager = session.NewManager(a.tokens, a.identity)
	return nil
}

// requireSession wires the app and restores the persisted session.
func (a *app) requireSession(ctx context.Context) (session.Snapshot, error) {
	if err := a.wire(); err != nil {
		return session.Snapshot{}, err
	}
	snap := a.manager.Restore(ctx)
	if !snap.Authenticated() {
		return snap, errNotSignedIn
	}
	return snap, nil
}

func (a *app) subscriber() (*tasksync.Subscriber, error) {
	broker, err := tasksync.NewBroker(a.cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("wire broker: %w", err)
	}
	return tasksync.New(
		broker,
		a.cfg.Broker.TopicFor,
		time.Duration(a.cfg.Broker.ReconnectMinSec)*time.Second,
		time.Duration(a.cfg.Broker.ReconnectMaxSec)*time.Second,
	), nil
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openStorage(cfg model.StorageConfig) (store.KV, func() error, error) {
	switch cfg.Backend {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create storage directory: %w", err)
		}
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "", "keyring":
		k, err := credential.Open(filepath.Dir(cfg.Path))
		if err != nil {
			return nil, nil, err
		}
		return k, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
