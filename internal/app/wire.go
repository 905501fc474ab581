package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/lottolens/lottolens/internal/blob/s3"
	"github.com/lottolens/lottolens/internal/cache/redis"
	"github.com/lottolens/lottolens/internal/config"
	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/rules"
	"github.com/lottolens/lottolens/internal/store/postgres"
)

// Dependencies bundles the concrete infrastructure the application modes
// build on. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Rules *rules.Table

	// Stores
	DrawStore      domain.DrawStore
	ScratcherStore domain.ScratcherStore
	AuditStore     domain.AuditStore

	// Caches and messaging
	AnalysisCache domain.AnalysisCache
	RankingCache  domain.RankingCache
	RateLimiter   domain.RateLimiter
	EventBus      *redis.EventBus

	// Blob storage (nil unless S3 is enabled)
	BlobWriter domain.BlobWriter
}

// Wire constructs the concrete dependency implementations from the
// configuration and returns them with a cleanup function to call on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{Rules: rules.Default()}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.DrawStore = postgres.NewDrawStore(pool)
	deps.ScratcherStore = postgres.NewScratcherStore(pool)
	deps.AuditStore = postgres.NewAuditStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.AnalysisCache = redis.NewAnalysisCache(redisClient, cfg.Engine.AnalysisCacheTTL.Duration)
	deps.RankingCache = redis.NewRankingCache(redisClient, cfg.Engine.RankingCacheTTL.Duration)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.EventBus = redis.NewEventBus(redisClient)

	// --- S3 blob storage (archival only) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.BlobWriter = s3blob.NewWriter(s3Client)
	}

	logger.InfoContext(ctx, "dependencies wired",
		slog.Bool("s3_enabled", cfg.S3.Enabled),
		slog.Int("games", len(deps.Rules.Games())),
	)
	return deps, cleanup, nil
}
