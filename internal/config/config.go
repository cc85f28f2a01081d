package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database    DatabaseConfig   `json:"database"`
	Port        int              `json:"port"`
	BaseURL     string           `json:"base_url"`
	CORSOrigins []string         `json:"cors_origins"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Mail        MailConfig       `json:"mail"`
	FileStore   FileStoreConfig  `json:"file_store"`
	RateLimit   RateLimitConfig  `json:"rate_limit"`
	Redis       RedisConfig      `json:"redis"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	UseTLS   bool   `json:"use_tls"`
	StartTLS bool   `json:"start_tls"`
}

type FileStoreConfig struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RateLimitConfig tunes magic-link issuance throttling. The memory backend is
// a single-process approximation; deployments running more than one replica
// should switch to the redis backend.
type RateLimitConfig struct {
	Backend           string `json:"backend"`
	MagicLinkMax      int    `json:"magic_link_max"`
	MagicLinkWindowS  int    `json:"magic_link_window_seconds"`
	SweepCron         string `json:"sweep_cron"`
	SweepMaxAgeSecond int    `json:"sweep_max_age_seconds"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database dsn or host/db_name is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	switch cfg.RateLimit.Backend {
	case "", "memory":
		cfg.RateLimit.Backend = "memory"
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("redis.addr is required for redis rate limiting")
		}
	default:
		return nil, fmt.Errorf("rate_limit.backend must be memory or redis")
	}
	if cfg.RateLimit.MagicLinkMax == 0 {
		cfg.RateLimit.MagicLinkMax = 5
	}
	if cfg.RateLimit.MagicLinkWindowS == 0 {
		cfg.RateLimit.MagicLinkWindowS = 15 * 60
	}
	if cfg.RateLimit.SweepCron == "" {
		cfg.RateLimit.SweepCron = "*/5 * * * *"
	}
	if cfg.RateLimit.SweepMaxAgeSecond == 0 {
		cfg.RateLimit.SweepMaxAgeSecond = 60 * 60
	}
	return &cfg, nil
}
