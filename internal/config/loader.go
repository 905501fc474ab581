package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies LOTTOLENS_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load. A missing file is
// not an error when path is empty: defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known LOTTOLENS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Database ──
	setStr(&cfg.Database.DSN, "LOTTOLENS_DATABASE_DSN")
	setStr(&cfg.Database.Host, "LOTTOLENS_DATABASE_HOST")
	setInt(&cfg.Database.Port, "LOTTOLENS_DATABASE_PORT")
	setStr(&cfg.Database.Database, "LOTTOLENS_DATABASE_NAME")
	setStr(&cfg.Database.User, "LOTTOLENS_DATABASE_USER")
	setStr(&cfg.Database.Password, "LOTTOLENS_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "LOTTOLENS_DATABASE_SSLMODE")
	setBool(&cfg.Database.RunMigrations, "LOTTOLENS_DATABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "LOTTOLENS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "LOTTOLENS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "LOTTOLENS_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "LOTTOLENS_REDIS_TLS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "LOTTOLENS_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "LOTTOLENS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "LOTTOLENS_S3_REGION")
	setStr(&cfg.S3.Bucket, "LOTTOLENS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "LOTTOLENS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "LOTTOLENS_S3_SECRET_KEY")

	// ── Ingest ──
	setStr(&cfg.Ingest.DrawBaseURL, "LOTTOLENS_INGEST_DRAW_BASE_URL")
	setStr(&cfg.Ingest.ScratcherURL, "LOTTOLENS_INGEST_SCRATCHER_URL")
	setDur(&cfg.Ingest.FetchInterval, "LOTTOLENS_INGEST_FETCH_INTERVAL")
	setBool(&cfg.Ingest.DisableScratcher, "LOTTOLENS_INGEST_DISABLE_SCRATCHER")

	// ── Server ──
	setInt(&cfg.Server.Port, "LOTTOLENS_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "LOTTOLENS_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "LOTTOLENS_SERVER_RATE_LIMIT")

	// ── Top level ──
	setStr(&cfg.Mode, "LOTTOLENS_MODE")
	setStr(&cfg.LogLevel, "LOTTOLENS_LOG_LEVEL")
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

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDur(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
