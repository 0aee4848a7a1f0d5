// Package config defines the top-level configuration for the arbitrage
// detector and provides loading and validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by ARBOT_* environment variables.
type Config struct {
	Binance  BinanceConfig  `toml:"binance"`
	Detector DetectorConfig `toml:"detector"`
	Sink     SinkConfig     `toml:"sink"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// BinanceConfig holds exchange endpoints and feed parameters.
type BinanceConfig struct {
	WSEndpoint    string `toml:"ws_endpoint"`
	DepthLevels   int    `toml:"depth_levels"`
	SeedDepth     bool   `toml:"seed_depth"`
	VerifySymbols bool   `toml:"verify_symbols"`
}

// DetectorConfig holds the evaluation parameters.
type DetectorConfig struct {
	ThresholdPercent   float64 `toml:"threshold_percent"`
	MaxAgeMS           int64   `toml:"max_age_ms"`
	StaleAgeMS         int64   `toml:"stale_age_ms"`
	TickIntervalMS     int64   `toml:"tick_interval_ms"`
	MaxReasonablePrice float64 `toml:"max_reasonable_price"`
}

// SinkConfig selects the opportunity sinks.
type SinkConfig struct {
	LogEnabled  bool   `toml:"log_enabled"`
	FileEnabled bool   `toml:"file_enabled"`
	FileDir     string `toml:"file_dir"`
}

// RedisConfig holds Redis connection parameters. Publishing is enabled when
// Addr is non-empty.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters. Persistence is
// enabled when DSN or Host is non-empty.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters. Archival is enabled
// when Bucket is non-empty.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds alert channel parameters. A channel is enabled when its
// credential is non-empty.
type NotifyConfig struct {
	TelegramToken     string  `toml:"telegram_token"`
	TelegramTokenFile string  `toml:"telegram_token_file"` // encrypted, see internal/crypto
	TelegramKeyPass   string  `toml:"telegram_key_password"`
	TelegramChatID    string  `toml:"telegram_chat_id"`
	DiscordWebhookURL string  `toml:"discord_webhook_url"`
	MinProfitPercent  float64 `toml:"min_profit_percent"`
}

var validModes = map[string]bool{
	"detect":   true,
	"headless": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns a Config populated with the built-in default values.
func Defaults() Config {
	return Config{
		Binance: BinanceConfig{
			WSEndpoint:    "wss://stream.binance.com:9443/stream",
			DepthLevels:   10,
			SeedDepth:     true,
			VerifySymbols: true,
		},
		Detector: DetectorConfig{
			ThresholdPercent:   0.10,
			MaxAgeMS:           500,
			StaleAgeMS:         3000,
			TickIntervalMS:     1000,
			MaxReasonablePrice: 1_000_000,
		},
		Sink: SinkConfig{
			LogEnabled:  true,
			FileEnabled: true,
			FileDir:     "opportunities",
		},
		Redis: RedisConfig{
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Port:          5432,
			Database:      "arbot",
			User:          "arbot",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Region: "us-east-1",
			UseSSL: true,
		},
		Notify: NotifyConfig{
			MinProfitPercent: 0.10,
		},
		Mode:     "detect",
		LogLevel: "info",
	}
}

// Validate checks the configuration for inconsistencies. It collects every
// problem rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: detect, headless)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Binance.WSEndpoint == "" {
		errs = append(errs, "binance: ws_endpoint must not be empty")
	}
	switch c.Binance.DepthLevels {
	case 5, 10, 20:
	default:
		errs = append(errs, fmt.Sprintf("binance: depth_levels %d not supported (valid: 5, 10, 20)", c.Binance.DepthLevels))
	}

	if c.Detector.ThresholdPercent < 0 {
		errs = append(errs, "detector: threshold_percent must not be negative")
	}
	if c.Detector.MaxAgeMS <= 0 {
		errs = append(errs, "detector: max_age_ms must be positive")
	}
	if c.Detector.StaleAgeMS < c.Detector.MaxAgeMS {
		errs = append(errs, "detector: stale_age_ms must not be below max_age_ms")
	}
	if c.Detector.TickIntervalMS <= 0 {
		errs = append(errs, "detector: tick_interval_ms must be positive")
	}
	if c.Detector.MaxReasonablePrice <= 0 {
		errs = append(errs, "detector: max_reasonable_price must be positive")
	}

	if c.Notify.TelegramToken != "" || c.Notify.TelegramTokenFile != "" {
		if c.Notify.TelegramChatID == "" {
			errs = append(errs, "notify: telegram_chat_id is required when a telegram token is configured")
		}
	}
	if c.Notify.TelegramTokenFile != "" && c.Notify.TelegramKeyPass == "" {
		errs = append(errs, "notify: telegram_key_password is required when telegram_token_file is set")
	}

	if c.S3.Bucket != "" && c.S3.Region == "" {
		errs = append(errs, "s3: region is required when bucket is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RedisEnabled reports whether the Redis sink should be wired.
func (c *Config) RedisEnabled() bool { return c.Redis.Addr != "" }

// PostgresEnabled reports whether the Postgres sink should be wired.
func (c *Config) PostgresEnabled() bool {
	return c.Postgres.DSN != "" || c.Postgres.Host != ""
}

// S3Enabled reports whether the S3 archive sink should be wired.
func (c *Config) S3Enabled() bool { return c.S3.Bucket != "" }

// TelegramEnabled reports whether the Telegram sender should be wired.
func (c *Config) TelegramEnabled() bool {
	return c.Notify.TelegramToken != "" || c.Notify.TelegramTokenFile != ""
}

// DiscordEnabled reports whether the Discord sender should be wired.
func (c *Config) DiscordEnabled() bool { return c.Notify.DiscordWebhookURL != "" }
