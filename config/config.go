package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration. Ordering policy
// (cutoff mode, enforcement flags) is deliberately not here: it lives in the
// database and is read fresh on every request.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Events     EventsConfig     `yaml:"events"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Checkin    CheckinConfig    `yaml:"checkin"`
	Photos     PhotosConfig     `yaml:"photos"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	Environment     string  `yaml:"environment"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// EventsConfig holds the AMQP connection for domain event publishing. An
// empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// PushConfig holds the VAPID keys for web push notifications. Empty keys
// disable the push channel.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the push notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// CheckinConfig holds check-in related settings.
type CheckinConfig struct {
	Timezone  string `yaml:"timezone"`
	QRBaseURL string `yaml:"qr_base_url"`

	Location *time.Location `yaml:"-"`
}

// PhotosConfig holds the storage directory for check-in photos.
type PhotosConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Events.Exchange == "" {
		cfg.Events.Exchange = "orders"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Checkin.Timezone == "" {
		cfg.Checkin.Timezone = "Local"
	}
	loc, err := time.LoadLocation(cfg.Checkin.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid checkin timezone %q: %w", cfg.Checkin.Timezone, err)
	}
	cfg.Checkin.Location = loc

	if cfg.Photos.Dir == "" {
		cfg.Photos.Dir = "./data/photos"
	}

	return &cfg, nil
}
