package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/alanyoungcy/arbot/internal/crypto"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies ARBOT_* environment variable overrides, and
// resolves encrypted secrets. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
		// No config file: run on defaults + environment.
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	if err := resolveSecrets(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides reads well-known ARBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Binance ──
	setStr(&cfg.Binance.WSEndpoint, "ARBOT_BINANCE_WS_ENDPOINT")
	setInt(&cfg.Binance.DepthLevels, "ARBOT_BINANCE_DEPTH_LEVELS")
	setBool(&cfg.Binance.SeedDepth, "ARBOT_BINANCE_SEED_DEPTH")
	setBool(&cfg.Binance.VerifySymbols, "ARBOT_BINANCE_VERIFY_SYMBOLS")

	// ── Detector ──
	setFloat64(&cfg.Detector.ThresholdPercent, "ARBOT_DETECTOR_THRESHOLD_PERCENT")
	setInt64(&cfg.Detector.MaxAgeMS, "ARBOT_DETECTOR_MAX_AGE_MS")
	setInt64(&cfg.Detector.StaleAgeMS, "ARBOT_DETECTOR_STALE_AGE_MS")
	setInt64(&cfg.Detector.TickIntervalMS, "ARBOT_DETECTOR_TICK_INTERVAL_MS")
	setFloat64(&cfg.Detector.MaxReasonablePrice, "ARBOT_DETECTOR_MAX_REASONABLE_PRICE")

	// ── Sink ──
	setBool(&cfg.Sink.LogEnabled, "ARBOT_SINK_LOG_ENABLED")
	setBool(&cfg.Sink.FileEnabled, "ARBOT_SINK_FILE_ENABLED")
	setStr(&cfg.Sink.FileDir, "ARBOT_SINK_FILE_DIR")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "ARBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "ARBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "ARBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "ARBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "ARBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "ARBOT_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "ARBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "ARBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "ARBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "ARBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "ARBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "ARBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "ARBOT_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "ARBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "ARBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "ARBOT_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "ARBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "ARBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "ARBOT_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "ARBOT_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "ARBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "ARBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "ARBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "ARBOT_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "ARBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramTokenFile, "ARBOT_NOTIFY_TELEGRAM_TOKEN_FILE")
	setStr(&cfg.Notify.TelegramKeyPass, "ARBOT_NOTIFY_TELEGRAM_KEY_PASSWORD")
	setStr(&cfg.Notify.TelegramChatID, "ARBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "ARBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setFloat64(&cfg.Notify.MinProfitPercent, "ARBOT_NOTIFY_MIN_PROFIT_PERCENT")

	// ── Top level ──
	setStr(&cfg.Mode, "ARBOT_MODE")
	setStr(&cfg.LogLevel, "ARBOT_LOG_LEVEL")
}

// resolveSecrets decrypts file-based secrets into their in-memory fields. A
// plaintext token in the config or environment wins over the encrypted file.
func resolveSecrets(cfg *Config) error {
	if cfg.Notify.TelegramToken != "" || cfg.Notify.TelegramTokenFile == "" {
		return nil
	}
	blob, err := os.ReadFile(cfg.Notify.TelegramTokenFile)
	if err != nil {
		return fmt.Errorf("config: read telegram token file: %w", err)
	}
	token, err := crypto.DecryptSecret(blob, cfg.Notify.TelegramKeyPass)
	if err != nil {
		return fmt.Errorf("config: decrypt telegram token: %w", err)
	}
	cfg.Notify.TelegramToken = token
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
