package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// DefaultBackendURL is used when neither the config file nor FITTRACK_API_URL set one.
	DefaultBackendURL = "http://localhost:3008"

	backendURLEnvVar = "FITTRACK_API_URL"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// redis (session store + rate limiting)
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// fitness REST backend
	BackendURL        string `toml:"backend_url"`
	BackendTimeoutSec int    `toml:"backend_timeout_sec"`
	// session gate
	SessionStore           string   `toml:"session_store"` // redis | memory
	SessionTTLHours        int      `toml:"session_ttl_hours"`
	SessionCheckTimeoutSec int      `toml:"session_check_timeout_sec"`
	SessionCookieName      string   `toml:"session_cookie_name"`
	SessionCookieSecure    bool     `toml:"session_cookie_secure"`
	LoginPath              string   `toml:"login_path"`
	StaticDir              string   `toml:"static_dir"`
	AllowedOrigins         []string `toml:"allowed_origins"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	return cfg, nil
}

// Load reads the TOML config file, picks the section for env and applies
// defaults and environment overrides.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)

	if backendURL := os.Getenv(backendURLEnvVar); backendURL != "" {
		cfg.BackendURL = backendURL
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads env vars from a dotenv file, a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load dotenv [%s]: %w", path, err)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	if c.BackendTimeoutSec <= 0 {
		c.BackendTimeoutSec = 5
	}
	if c.SessionStore == "" {
		c.SessionStore = "redis"
	}
	if c.SessionTTLHours <= 0 {
		c.SessionTTLHours = 24 * 7
	}
	if c.SessionCookieName == "" {
		c.SessionCookieName = "fittrack_sid"
	}
	if c.LoginPath == "" {
		c.LoginPath = "/l"
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return errors.New("port not set")
	}
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("backend url must be http(s): %s", c.BackendURL)
	}
	switch c.SessionStore {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown session store: %s", c.SessionStore)
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		return fmt.Errorf("login path must be absolute: %s", c.LoginPath)
	}
	return nil
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSec) * time.Second
}

// SessionCheckTimeout bounds a single gate verification, zero leaves it to the backend client timeout.
func (c *Config) SessionCheckTimeout() time.Duration {
	return time.Duration(c.SessionCheckTimeoutSec) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}
