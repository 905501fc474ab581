package engine

import (
	"math"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
)

// alphaSlope maps the CV range real draw histories produce (roughly
// 0.05-0.35 once a few hundred drawings accumulate) onto a usable blend
// strength; alpha saturates at CV >= 1/3.
const alphaSlope = 3.0

// Recommend derives the sampling bias for one number class from its count
// map and coefficient of variation. Alpha grows linearly with CV, clamped
// to [0,1] and rounded to two decimals for presentation stability, so a
// higher CV never yields a lower alpha. Mode is hot unless the count
// distribution skews negative (most values frequent, a few lagging), in
// which case leaning into the laggards is the stronger read; a flat
// distribution defaults to hot.
func Recommend(counts map[int]int, cv float64) domain.WeightingRecommendation {
	alpha := alphaSlope * cv
	if alpha > 1 {
		alpha = 1
	}
	if alpha < 0 {
		alpha = 0
	}
	alpha = math.Round(alpha*100) / 100

	mode := domain.ModeHot
	if countSkewness(counts) < 0 {
		mode = domain.ModeCold
	}
	return domain.WeightingRecommendation{Mode: mode, Alpha: alpha}
}

// AnalyzeGame bundles statistics and per-class recommendations for one
// game. asOf stamps the bundle; it does not influence any computed value.
func AnalyzeGame(rows []domain.DrawRecord, game domain.GameID, era domain.EraConfig, asOf time.Time) domain.GameAnalysis {
	stats := ComputeStats(rows, game, era)
	analysis := domain.GameAnalysis{
		Game:        game,
		Era:         era,
		Stats:       stats,
		MainRec:     Recommend(stats.MainCounts, stats.MainCV),
		GeneratedAt: asOf,
	}
	if era.HasSpecial() {
		analysis.SpecialRec = Recommend(stats.SpecialCounts, stats.SpecialCV)
	}
	return analysis
}
