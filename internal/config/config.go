// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Events    EventsConfig    `mapstructure:"events"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// HTTPConfig configures the shared provider client.
type HTTPConfig struct {
	TimeoutSeconds   int     `mapstructure:"timeout_seconds"`
	MaxRetries       int     `mapstructure:"max_retries"`
	BackoffInitialMs int     `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int     `mapstructure:"backoff_max_ms"`
	RatePerSecond    float64 `mapstructure:"rate_per_second"`
	Burst            int     `mapstructure:"burst"`
	UserAgent        string  `mapstructure:"user_agent"`
	MaxParallel      int     `mapstructure:"max_parallel"`
}

// Timeout returns the per-provider call budget.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// SchedulerConfig governs recurring aggregation passes.
type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	RunOnStartup bool          `mapstructure:"run_on_startup"`
}

// ProviderConfig is shared by every adapter; unused fields are ignored.
type ProviderConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	AppID          string `mapstructure:"app_id"`
	APIKey         string `mapstructure:"api_key"`
	Country        string `mapstructure:"country"`
	StaticFallback bool   `mapstructure:"static_fallback"`
	MaxRecords     int    `mapstructure:"max_records"`
}

// ProvidersConfig lists every known adapter.
type ProvidersConfig struct {
	Adzuna    ProviderConfig `mapstructure:"adzuna"`
	Jooble    ProviderConfig `mapstructure:"jooble"`
	Volunteer ProviderConfig `mapstructure:"volunteer"`
	Challenge ProviderConfig `mapstructure:"challenge"`
	GitHub    ProviderConfig `mapstructure:"github"`
	RemoteOK  ProviderConfig `mapstructure:"remoteok"`
	NSFREU    ProviderConfig `mapstructure:"nsf_reu"`
}

// StorageConfig selects the opportunity store backend.
type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	DSN         string `mapstructure:"dsn"`
	MaxConns    int32  `mapstructure:"max_conns"`
	MinConns    int32  `mapstructure:"min_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// CacheConfig configures the job-search cache.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ArchiveConfig sets where pass snapshots are written.
type ArchiveConfig struct {
	Backend string `mapstructure:"backend"`
	Bucket  string `mapstructure:"bucket"`
	Dir     string `mapstructure:"dir"`
	Prefix  string `mapstructure:"prefix"`
}

// EventsConfig holds metadata for pass completion notifications.
type EventsConfig struct {
	Backend   string `mapstructure:"backend"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// Load builds a Config from disk/environment. A .env file in the working
// directory is applied to the process environment first when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("DISCOVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// providerKeys lists every adapter section under providers.
var providerKeys = []string{"adzuna", "jooble", "volunteer", "challenge", "github", "remoteok", "nsf_reu"}

func setDefaults(v *viper.Viper) {
	// AutomaticEnv only resolves keys viper already knows, so every key
	// that may come from the environment alone needs a default.
	for _, p := range providerKeys {
		prefix := "providers." + p + "."
		v.SetDefault(prefix+"enabled", false)
		v.SetDefault(prefix+"base_url", "")
		v.SetDefault(prefix+"app_id", "")
		v.SetDefault(prefix+"api_key", "")
		v.SetDefault(prefix+"country", "")
		v.SetDefault(prefix+"static_fallback", false)
		v.SetDefault(prefix+"max_records", 0)
	}
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.dir", "")
	v.SetDefault("events.project_id", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 2000)
	v.SetDefault("http.rate_per_second", 2.0)
	v.SetDefault("http.burst", 2)
	v.SetDefault("http.user_agent", "opportunity-discovery/0.1")
	v.SetDefault("http.max_parallel", 8)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", 6*time.Hour)
	v.SetDefault("scheduler.run_on_startup", true)

	v.SetDefault("providers.adzuna.enabled", true)
	v.SetDefault("providers.adzuna.base_url", "https://api.adzuna.com/v1/api/jobs")
	v.SetDefault("providers.adzuna.country", "us")
	v.SetDefault("providers.jooble.enabled", true)
	v.SetDefault("providers.jooble.base_url", "https://jooble.org/api")
	v.SetDefault("providers.volunteer.enabled", true)
	v.SetDefault("providers.volunteer.base_url", "https://www.volunteerconnector.org")
	v.SetDefault("providers.volunteer.static_fallback", true)
	v.SetDefault("providers.challenge.enabled", true)
	v.SetDefault("providers.challenge.base_url", "https://www.challenge.gov/api/challenges.rss")
	v.SetDefault("providers.challenge.static_fallback", true)
	v.SetDefault("providers.github.enabled", true)
	v.SetDefault("providers.github.base_url",
		"https://raw.githubusercontent.com/SimplifyJobs/Summer2025-Internships/dev/.github/scripts/listings.json")
	v.SetDefault("providers.github.static_fallback", true)
	v.SetDefault("providers.github.max_records", 200)
	v.SetDefault("providers.remoteok.enabled", true)
	v.SetDefault("providers.remoteok.base_url", "https://remoteok.com/api")
	v.SetDefault("providers.remoteok.static_fallback", true)
	v.SetDefault("providers.nsf_reu.enabled", true)
	v.SetDefault("providers.nsf_reu.static_fallback", true)

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.max_conns", 8)
	v.SetDefault("storage.min_conns", 1)
	v.SetDefault("storage.auto_migrate", true)
	v.SetDefault("cache.ttl", 15*time.Minute)
	v.SetDefault("archive.backend", "none")
	v.SetDefault("archive.prefix", "passes")
	v.SetDefault("events.backend", "none")
	v.SetDefault("events.topic", "aggregation-events")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be > 0 when the scheduler is enabled")
	}
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	switch c.Archive.Backend {
	case "", "none", "memory":
	case "local":
		if c.Archive.Dir == "" {
			return fmt.Errorf("archive.dir must be set for the local backend")
		}
	case "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket must be set for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown archive.backend %q", c.Archive.Backend)
	}
	switch c.Events.Backend {
	case "", "none", "memory":
	case "pubsub":
		if c.Events.ProjectID == "" || c.Events.Topic == "" {
			return fmt.Errorf("events.project_id and events.topic must be set for the pubsub backend")
		}
	default:
		return fmt.Errorf("unknown events.backend %q", c.Events.Backend)
	}
	return nil
}
