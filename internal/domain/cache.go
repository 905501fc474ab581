package domain

import (
	"context"
	"time"
)

// AnalysisCache stores computed GameAnalysis bundles with a TTL.
type AnalysisCache interface {
	Get(ctx context.Context, game GameID) (GameAnalysis, error)
	Set(ctx context.Context, analysis GameAnalysis) error
	Invalidate(ctx context.Context, game GameID) error
}

// RankedScratcher pairs a snapshot with its composite score and the four
// normalized contributions the score was built from.
type RankedScratcher struct {
	Game  ScratcherGame
	Score float64
	Parts ScoreParts
}

// ScoreParts are the normalized (pre-weight) metric contributions, kept
// alongside the score so a consumer can explain a game's rank.
type ScoreParts struct {
	Jackpot float64
	Prizes  float64
	Odds    float64
	Price   float64
}

// RankingCache stores the scored scratcher list with a TTL.
type RankingCache interface {
	Get(ctx context.Context) ([]RankedScratcher, error)
	Set(ctx context.Context, ranked []RankedScratcher) error
	Invalidate(ctx context.Context) error
}

// Event is a message published on the bus and relayed to WebSocket clients.
type Event struct {
	Channel string
	Payload any
}

// EventBus publishes engine and ingest events for fan-out.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// StreamMessage is one raw event received from a subscription.
type StreamMessage struct {
	Channel string
	Payload []byte
}

// EventStream subscribes to published events for fan-out to WebSocket
// clients. The returned channel closes when ctx is cancelled.
type EventStream interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan StreamMessage, error)
}

// RateLimiter enforces a per-key request budget over a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BlobWriter uploads a named object to cold storage.
type BlobWriter interface {
	Write(ctx context.Context, key string, contentType string, data []byte) error
}
