// Package config defines the top-level configuration for lottolens and
// provides loading, defaulting, and validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by LOTTOLENS_* environment
// variables.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Ingest   IngestConfig   `toml:"ingest"`
	Engine   EngineConfig   `toml:"engine"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
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

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for the archiver.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Enabled        bool   `toml:"enabled"`
}

// IngestConfig holds the pipeline parameters: upstream endpoints, fetch
// cadence, and archival retention.
type IngestConfig struct {
	DrawBaseURL      string            `toml:"draw_base_url"`
	DrawPaths        map[string]string `toml:"draw_paths"` // game id -> CSV path
	ScratcherURL     string            `toml:"scratcher_url"`
	FetchInterval    duration          `toml:"fetch_interval"`
	ArchiveInterval  duration          `toml:"archive_interval"`
	RetentionYears   int               `toml:"retention_years"`
	RequestTimeout   duration          `toml:"request_timeout"`
	DisableScratcher bool              `toml:"disable_scratcher"`
}

// EngineConfig holds analytics parameters: composite-score weights, the
// ticket retry budget multiplier, cache TTLs, and the worker pool size.
type EngineConfig struct {
	ScoreJackpot      float64  `toml:"score_jackpot"`
	ScorePrizes       float64  `toml:"score_prizes"`
	ScoreOdds         float64  `toml:"score_odds"`
	ScorePrice        float64  `toml:"score_price"`
	AttemptsPerTicket int      `toml:"attempts_per_ticket"`
	MaxTicketsPerCall int      `toml:"max_tickets_per_call"`
	AnalysisCacheTTL  duration `toml:"analysis_cache_ttl"`
	RankingCacheTTL   duration `toml:"ranking_cache_ttl"`
	WorkerPoolSize    int      `toml:"worker_pool_size"`
	WorkerQueueDepth  int      `toml:"worker_queue_depth"`
}

// ServerConfig holds the HTTP API parameters.
type ServerConfig struct {
	Port         int      `toml:"port"`
	CORSOrigins  []string `toml:"cors_origins"`
	APIKey       string   `toml:"api_key"`    // empty disables auth
	RateLimit    int      `toml:"rate_limit"` // requests per window, 0 disables
	RateWindow   duration `toml:"rate_window"`
	ReadTimeout  duration `toml:"read_timeout"`
	WriteTimeout duration `toml:"write_timeout"`
	EnableWS     bool     `toml:"enable_ws"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding ("6h", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration used when a field is absent
// from the TOML file.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, Database: "lottolens",
			User: "lottolens", SSLMode: "disable",
			PoolMaxConns: 8, PoolMinConns: 1, RunMigrations: true,
		},
		Redis: RedisConfig{Addr: "localhost:6379", PoolSize: 8, MaxRetries: 3},
		Ingest: IngestConfig{
			DrawBaseURL:     "https://data.ny.gov/resource",
			ScratcherURL:    "https://nylottery.ny.gov/scratch-off-games.json",
			FetchInterval:   duration{6 * time.Hour},
			ArchiveInterval: duration{24 * time.Hour},
			RetentionYears:  25,
			RequestTimeout:  duration{30 * time.Second},
		},
		Engine: EngineConfig{
			ScoreJackpot: 0.35, ScorePrizes: 0.30, ScoreOdds: 0.25, ScorePrice: 0.10,
			AttemptsPerTicket: 50, MaxTicketsPerCall: 25,
			AnalysisCacheTTL: duration{15 * time.Minute},
			RankingCacheTTL:  duration{15 * time.Minute},
			WorkerPoolSize:   4, WorkerQueueDepth: 64,
		},
		Server: ServerConfig{
			Port: 8080, RateLimit: 120, RateWindow: duration{time.Minute},
			ReadTimeout:  duration{15 * time.Second},
			WriteTimeout: duration{30 * time.Second},
			EnableWS:     true,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// Validate checks the configuration for defects that would make the
// application misbehave at runtime. It is called once at startup, after
// Load.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "serve", "ingest", "full":
	default:
		return fmt.Errorf("config: unsupported mode %q", c.Mode)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Engine.AttemptsPerTicket <= 0 {
		return fmt.Errorf("config: attempts_per_ticket must be positive")
	}
	if c.Engine.MaxTicketsPerCall <= 0 {
		return fmt.Errorf("config: max_tickets_per_call must be positive")
	}
	if c.Engine.WorkerPoolSize <= 0 {
		return fmt.Errorf("config: worker_pool_size must be positive")
	}
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"score_jackpot", c.Engine.ScoreJackpot},
		{"score_prizes", c.Engine.ScorePrizes},
		{"score_odds", c.Engine.ScoreOdds},
		{"score_price", c.Engine.ScorePrice},
	} {
		if w.value < 0 {
			return fmt.Errorf("config: %s must not be negative", w.name)
		}
	}
	if c.Ingest.FetchInterval.Duration < time.Minute {
		return fmt.Errorf("config: fetch_interval below 1m would hammer the upstream")
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		return fmt.Errorf("config: s3 enabled without a bucket")
	}
	return nil
}
