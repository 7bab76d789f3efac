package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables holding the Jira credentials
const (
	EnvUsername = "JIRA_USERNAME"
	EnvPassword = "JIRA_PASSWORD"
	EnvURL      = "JIRA_URL"
)

// ErrMissingCredentials is returned when any credential variable is unset
var ErrMissingCredentials = errors.New("Please set JIRA_USERNAME, JIRA_PASSWORD and JIRA_URL environment variables")

const fileName = "jira-release.toml"

type Config struct {
	Jira    JiraConfig    `toml:"jira"`
	Logging LoggingConfig `toml:"logging"`

	// Where the config was loaded from (not serialized)
	path string
}

type JiraConfig struct {
	// CloseTransition is the exact transition name offered by the close step
	CloseTransition string `toml:"close_transition"`
	// DefaultResolution applies to issue types missing from Resolutions
	DefaultResolution string `toml:"default_resolution"`
	// Resolutions maps issue type name to resolution name
	Resolutions    map[string]string `toml:"resolutions"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	SentryDSN string `toml:"sentry_dsn"`
}

// Credentials are the Jira session settings, read from the environment only
type Credentials struct {
	Username string
	Password string
	URL      string
}

func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			CloseTransition:   "Close",
			DefaultResolution: "Done",
			Resolutions:       map[string]string{"Bug": "Fixed"},
			TimeoutSeconds:    30,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the config location under the user config directory
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, fileName), nil
}

// Load reads the config at path (DefaultPath when empty). A missing file
// yields the defaults, which are written back on a best-effort basis.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.path = path
			_ = cfg.Save() // Best effort save
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	// File entries extend the built-in resolutions rather than replace them
	defaults := cfg.Jira.Resolutions
	cfg.Jira.Resolutions = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.path = path
	cfg.Jira.Resolutions = mergeResolutions(defaults, cfg.Jira.Resolutions)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return cfg, nil
}

func mergeResolutions(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Jira.CloseTransition) == "" {
		return errors.New("jira.close_transition must not be empty")
	}
	if strings.TrimSpace(c.Jira.DefaultResolution) == "" {
		return errors.New("jira.default_resolution must not be empty")
	}
	if c.Jira.TimeoutSeconds < 0 {
		return errors.New("jira.timeout_seconds must not be negative")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Path returns where the config was loaded from (empty for pure defaults)
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no path")
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0644)
}

// Timeout returns the per-request Jira timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Jira.TimeoutSeconds) * time.Second
}

// LogLevel returns the configured slog level, warn if unparseable
func (c *Config) LogLevel() slog.Level {
	level := slog.LevelWarn
	if c.Logging.Level != "" {
		_ = level.UnmarshalText([]byte(c.Logging.Level))
	}
	return level
}

// LoadCredentials reads the three credential variables through getenv.
// All three are required.
func LoadCredentials(getenv func(string) string) (Credentials, error) {
	creds := Credentials{
		Username: getenv(EnvUsername),
		Password: getenv(EnvPassword),
		URL:      getenv(EnvURL),
	}
	if creds.Username == "" || creds.Password == "" || creds.URL == "" {
		return Credentials{}, ErrMissingCredentials
	}
	return creds, nil
}
