package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// BackendConfig locates the three HTTP services.
type BackendConfig struct {
	// Host fills the {host} placeholder of the service URLs.
	Host string `mapstructure:"host" yaml:"host"`

	IdentityURL     string `mapstructure:"identity_url" yaml:"identity_url"`
	TaskURL         string `mapstructure:"task_url" yaml:"task_url"`
	NotificationURL string `mapstructure:"notification_url" yaml:"notification_url"`

	// UsersPath is the identity path used to enumerate users when a task
	// is assigned.
	UsersPath string `mapstructure:"users_path" yaml:"users_path"`

	// TimeoutSec bounds every HTTP call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// BrokerConfig holds the live update channel settings.
type BrokerConfig struct {
	// Kind selects the broker client ("mqtt" or "redis").
	Kind string `mapstructure:"kind" yaml:"kind"`

	// URL is the broker address, e.g. ws://host:9001 or redis://host:6379/0.
	URL string `mapstructure:"url" yaml:"url"`

	// Topic is the per-user topic template; {userId} is replaced.
	Topic string `mapstructure:"topic" yaml:"topic"`

	ReconnectMinSec int `mapstructure:"reconnect_min_sec" yaml:"reconnect_min_sec"`
	ReconnectMaxSec int `mapstructure:"reconnect_max_sec" yaml:"reconnect_max_sec"`
}

// StorageConfig selects where session credentials are persisted.
type StorageConfig struct {
	// Backend is "keyring" or "sqlite".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the sqlite database file (sqlite backend) or the keyring
	// file directory (keyring file fallback).
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Broker  BrokerConfig  `mapstructure:"broker" yaml:"broker"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

const (
	defaultHost      = "192.168.0.83"
	hostPlaceholder  = "{host}"
	userPlaceholder  = "{userId}"
	envPrefix        = "TASKAPP"
	defaultTimeout   = 30
	defaultUsersPath = "/usuario/login"
)

// ConfigDir returns ~/.config/taskapp, falling back to the working
// directory when the home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskapp")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskapp/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			Host:            defaultHost,
			IdentityURL:     "http://{host}:8080/v1",
			TaskURL:         "http://{host}:8081/v1",
			NotificationURL: "http://{host}:8082/v1",
			UsersPath:       defaultUsersPath,
			TimeoutSec:      defaultTimeout,
		},
		Broker: BrokerConfig{
			Kind:            "mqtt",
			URL:             "ws://{host}:9001",
			Topic:           "notifications/{userId}",
			ReconnectMinSec: 1,
			ReconnectMaxSec: 30,
		},
		Storage: StorageConfig{
			Backend: "keyring",
			Path:    filepath.Join(ConfigDir(), "session.db"),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// setDefaults registers every default on v so that missing keys and
// environment overrides both resolve.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("backend.host", d.Backend.Host)
	v.SetDefault("backend.identity_url", d.Backend.IdentityURL)
	v.SetDefault("backend.task_url", d.Backend.TaskURL)
	v.SetDefault("backend.notification_url", d.Backend.NotificationURL)
	v.SetDefault("backend.users_path", d.Backend.UsersPath)
	v.SetDefault("backend.timeout_sec", d.Backend.TimeoutSec)
	v.SetDefault("broker.kind", d.Broker.Kind)
	v.SetDefault("broker.url", d.Broker.URL)
	v.SetDefault("broker.topic", d.Broker.Topic)
	v.SetDefault("broker.reconnect_min_sec", d.Broker.ReconnectMinSec)
	v.SetDefault("broker.reconnect_max_sec", d.Broker.ReconnectMaxSec)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("display.theme", d.Display.Theme)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Missing files resolve to defaults; TASKAPP_* environment variables
// override both (e.g. TASKAPP_BACKEND_HOST).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expand()

	if cfg.Backend.TimeoutSec <= 0 {
		cfg.Backend.TimeoutSec = defaultTimeout
	}
	if cfg.Broker.ReconnectMinSec <= 0 {
		cfg.Broker.ReconnectMinSec = 1
	}
	if cfg.Broker.ReconnectMaxSec < cfg.Broker.ReconnectMinSec {
		cfg.Broker.ReconnectMaxSec = cfg.Broker.ReconnectMinSec
	}

	return cfg, nil
}

// expand substitutes the {host} placeholder in every URL.
func (c *AppConfig) expand() {
	r := strings.NewReplacer(hostPlaceholder, c.Backend.Host)
	c.Backend.IdentityURL = r.Replace(c.Backend.IdentityURL)
	c.Backend.TaskURL = r.Replace(c.Backend.TaskURL)
	c.Backend.NotificationURL = r.Replace(c.Backend.NotificationURL)
	c.Broker.URL = r.Replace(c.Broker.URL)
}

// TopicFor returns the live update topic for a user.
func (b BrokerConfig) TopicFor(userID string) string {
	return strings.ReplaceAll(b.Topic, userPlaceholder, userID)
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("broker", cfg.Broker)
	v.Set("storage", cfg.Storage)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
