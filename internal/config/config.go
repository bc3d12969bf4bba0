// Package config loads the service configuration from a YAML file with
// environment variable overrides. One Config value is constructed at process
// start and passed into each component's constructor; there is no ambient
// global state.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface of the ETL worker.
type Config struct {
	Debug         bool                `yaml:"debug"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Redis         RedisConfig         `yaml:"redis"`
	State         StateConfig         `yaml:"state"`
	Sync          SyncConfig          `yaml:"sync"`
	Backoff       BackoffConfig       `yaml:"backoff"`
}

// PostgresConfig holds relational store connection parameters.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// ElasticsearchConfig holds search index connection parameters.
type ElasticsearchConfig struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	MaxRetries int    `yaml:"max_retries"`
}

// RedisConfig holds watermark/lock store connection parameters.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StateConfig selects the watermark storage backend.
type StateConfig struct {
	// Backend is "redis" or "file".
	Backend string `yaml:"backend"`
	// FilePath is the state file location for the file backend.
	FilePath string `yaml:"file_path"`
}

// SyncConfig tunes the sync cycle.
type SyncConfig struct {
	BatchSize   int           `yaml:"batch_size"`
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
	LockName    string        `yaml:"lock_name"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
}

// BackoffConfig bounds the retry policy around index writes.
type BackoffConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	MaxElapsed  time.Duration `yaml:"max_elapsed"`
}

const (
	defaultBatchSize   = 100
	defaultMinInterval = 500 * time.Millisecond
	defaultMaxInterval = 900 * time.Millisecond
	defaultLockName    = "etl_process_flag"
	defaultLockTTL     = 30 * time.Second

	defaultMaxAttempts = 5
	defaultBaseDelay   = 100 * time.Millisecond
	defaultMaxDelay    = 10 * time.Second
	defaultMaxElapsed  = 60 * time.Second
)

// Load reads the config file, applies .env files, defaults, and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	// Missing .env is fine; explicit files are the config path's job.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnvVars(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required values and consistency.
func (c *Config) Validate() error {
	if c.Postgres.Host == "" {
		return errors.New("postgres.host is required")
	}
	if c.Postgres.DBName == "" {
		return errors.New("postgres.dbname is required")
	}
	if c.Elasticsearch.URL == "" {
		return errors.New("elasticsearch.url is required")
	}
	if c.Redis.Address == "" {
		return errors.New("redis.address is required")
	}
	switch c.State.Backend {
	case "redis":
	case "file":
		if c.State.FilePath == "" {
			return errors.New("state.file_path is required for the file backend")
		}
	default:
		return fmt.Errorf("state.backend must be %q or %q, got %q", "redis", "file", c.State.Backend)
	}
	if c.Sync.MaxInterval < c.Sync.MinInterval {
		return fmt.Errorf("sync.max_interval %v is below sync.min_interval %v",
			c.Sync.MaxInterval, c.Sync.MinInterval)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Postgres.Port == "" {
		cfg.Postgres.Port = "5432"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = "redis"
	}
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = defaultBatchSize
	}
	if cfg.Sync.MinInterval <= 0 {
		cfg.Sync.MinInterval = defaultMinInterval
	}
	if cfg.Sync.MaxInterval <= 0 {
		cfg.Sync.MaxInterval = defaultMaxInterval
	}
	if cfg.Sync.LockName == "" {
		cfg.Sync.LockName = defaultLockName
	}
	if cfg.Sync.LockTTL <= 0 {
		cfg.Sync.LockTTL = defaultLockTTL
	}
	if cfg.Backoff.MaxAttempts <= 0 {
		cfg.Backoff.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Backoff.BaseDelay <= 0 {
		cfg.Backoff.BaseDelay = defaultBaseDelay
	}
	if cfg.Backoff.MaxDelay <= 0 {
		cfg.Backoff.MaxDelay = defaultMaxDelay
	}
	if cfg.Backoff.MaxElapsed <= 0 {
		cfg.Backoff.MaxElapsed = defaultMaxElapsed
	}
}

func overrideWithEnvVars(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.Postgres.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Postgres.DBName = v
	}
	if v := os.Getenv("ES_URL"); v != "" {
		cfg.Elasticsearch.URL = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("APP_DEBUG"); v != "" {
		cfg.Debug = parseBool(v)
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
