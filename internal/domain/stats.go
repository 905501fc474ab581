package domain

import "time"

// FrequencyStats aggregates per-value hit counts for a game's current era.
// Counts cover every value of the era's domain, including values that never
// hit. CVs are coefficients of variation (stddev/mean) of the count
// distributions; both are 0 when Draws is 0.
type FrequencyStats struct {
	Game          GameID
	Draws         int
	MainCounts    map[int]int
	SpecialCounts map[int]int
	MainCV        float64
	SpecialCV     float64
}

// SampleMode is the direction of the historical sampling bias.
type SampleMode string

const (
	// ModeHot weights values proportionally to their historical hit count.
	ModeHot SampleMode = "hot"
	// ModeCold weights values inversely to their historical hit count.
	ModeCold SampleMode = "cold"
)

// Valid reports whether m is one of the defined modes.
func (m SampleMode) Valid() bool { return m == ModeHot || m == ModeCold }

// WeightingRecommendation is the suggested sampling bias for one number
// class. Alpha is the blend strength between uniform (0) and fully
// historical (1) sampling, rounded to two decimals.
type WeightingRecommendation struct {
	Mode  SampleMode
	Alpha float64
}

// GeneratedTicket is one quick-pick produced by the generator. Mains is
// sorted ascending for distinct-pick games and position-ordered for digit
// games; Special is 0 when the game has no special ball.
type GeneratedTicket struct {
	Mains   []int
	Special int
}

// GameAnalysis bundles the era, statistics, and per-class recommendations
// for one game. It is the unit the analysis cache stores.
type GameAnalysis struct {
	Game        GameID
	Era         EraConfig
	Stats       FrequencyStats
	MainRec     WeightingRecommendation
	SpecialRec  WeightingRecommendation
	GeneratedAt time.Time
}
