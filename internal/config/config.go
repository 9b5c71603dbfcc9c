// File: internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ChannelConfig struct {
	Username  string `yaml:"username" json:"username"`
	InviteURL string `yaml:"invite_url" json:"invite_url"`
}

type KeepAliveConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Silent   bool          `yaml:"silent"` // log only, never message anyone
}

type BotConfig struct {
	Token            string          `yaml:"token"`
	Mode             string          `yaml:"mode"` // polling | webhook
	WebhookURL       string          `yaml:"webhook_url"`
	SecretToken      string          `yaml:"secret_token"`
	Workers          int             `yaml:"workers"` // polling workers
	AdminIDs         []int64         `yaml:"admin_ids"`
	RequiredChannels []ChannelConfig `yaml:"required_channels"`
	Credit           string          `yaml:"credit"`
	KeepAlive        KeepAliveConfig `yaml:"keep_alive"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL       string        `yaml:"url"` // optional; enables the usage ledger
	MaxConns  int32         `yaml:"max_conns"`
	Retention time.Duration `yaml:"retention"` // raw usage rows older than this are pruned
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // optional; in-memory stores are used when empty
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type LimitsConfig struct {
	MaxFileMB     int           `yaml:"max_file_mb"`
	QuietPeriod   time.Duration `yaml:"quiet_period"` // wait after the last upload before processing
	RatePerMinute int           `yaml:"rate_per_minute"`
	SendRetries   int           `yaml:"send_retries"`
	BatchWorkers  int           `yaml:"batch_workers"`
}

// MaxFileBytes is the upload ceiling in bytes.
func (l LimitsConfig) MaxFileBytes() int64 { return int64(l.MaxFileMB) * 1024 * 1024 }

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Limits   LimitsConfig   `yaml:"limits"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the optional YAML file at path, then applies .env and
// environment overrides, then defaults. A missing file is not an error.
func LoadConfig(path string, dev bool) (*Config, error) {
	// Seeded before decoding so an explicit send_retries: 0 survives.
	cfg := Config{Limits: LimitsConfig{SendRetries: defaultSendRetries}}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// .env is optional, and never overrides variables already set.
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required (or set BOT_TOKEN)")
	}
	switch cfg.Bot.Mode {
	case "polling", "webhook":
	default:
		return nil, fmt.Errorf("bot.mode %q: want polling or webhook", cfg.Bot.Mode)
	}
	if cfg.Bot.Mode == "webhook" && cfg.Bot.WebhookURL == "" {
		return nil, errors.New("bot.webhook_url is required in webhook mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Bot.WebhookURL = v
		if cfg.Bot.Mode == "" {
			cfg.Bot.Mode = "webhook"
		}
	}
	if v := os.Getenv("SECRET_TOKEN"); v != "" {
		cfg.Bot.SecretToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.HTTP.Port = port
	}
	if v := os.Getenv("REQUIRED_CHANNELS"); v != "" {
		var channels []ChannelConfig
		if err := json.Unmarshal([]byte(v), &channels); err != nil {
			return fmt.Errorf("REQUIRED_CHANNELS: %w", err)
		}
		cfg.Bot.RequiredChannels = channels
	}
	return nil
}

// DefaultChannels are the channels users must join when none are configured.
var DefaultChannels = []ChannelConfig{
	{Username: "@aurabots0", InviteURL: "https://t.me/+_RfSmS5WOOM3MGRl"},
	{Username: "@workbyaditya", InviteURL: "https://t.me/workbyaditya"},
	{Username: "@aurachatsws", InviteURL: "https://t.me/aurachatsws"},
}

const DefaultCredit = "Created by @adityat_5454"

const defaultSendRetries = 2

func applyDefaults(cfg *Config) {
	if cfg.Bot.RequiredChannels == nil {
		cfg.Bot.RequiredChannels = append([]ChannelConfig(nil), DefaultChannels...)
	}
	if cfg.Bot.Credit == "" {
		cfg.Bot.Credit = DefaultCredit
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	cfg.Bot.Mode = strings.ToLower(cfg.Bot.Mode)
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.KeepAlive.Interval <= 0 {
		cfg.Bot.KeepAlive.Interval = 3 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8000
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 60 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.Retention <= 0 {
		cfg.Database.Retention = 90 * 24 * time.Hour
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.Limits.MaxFileMB <= 0 {
		cfg.Limits.MaxFileMB = 20
	}
	if cfg.Limits.QuietPeriod <= 0 {
		cfg.Limits.QuietPeriod = 5 * time.Second
	}
	if cfg.Limits.RatePerMinute <= 0 {
		cfg.Limits.RatePerMinute = 30
	}
	if cfg.Limits.SendRetries < 0 {
		cfg.Limits.SendRetries = 0
	}
	if cfg.Limits.BatchWorkers <= 0 {
		cfg.Limits.BatchWorkers = 4
	}
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 15 * time.Minute
	}
	return d
}
