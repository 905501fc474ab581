package engine

import (
	"math"
	"sort"

	"github.com/lottolens/lottolens/internal/domain"
)

// ScoreWeights are the composite-score weights for the four scratch-off
// metrics. Price is a penalty: its weighted term is subtracted. The engine
// does not require the weights to sum to 1; callers tune independently.
type ScoreWeights struct {
	Jackpot float64 `toml:"jackpot" json:"jackpot"`
	Prizes  float64 `toml:"prizes" json:"prizes"`
	Odds    float64 `toml:"odds" json:"odds"`
	Price   float64 `toml:"price" json:"price"`
}

// DefaultScoreWeights are the reference weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Jackpot: 0.35, Prizes: 0.30, Odds: 0.25, Price: 0.10}
}

// RankScratchers scores every game in the set and returns them ordered by
// descending composite score. The four raw metrics — top prize value,
// remaining-prize ratio, inverse odds (adjusted, falling back to overall),
// and price — are each min-max normalized across this game set, then
// combined with the given weights (price subtracting). The normalized parts
// ride along with each score so consumers can see why a game ranked where
// it did.
//
// The sort is stable; the order of exactly tied scores follows the input
// and is otherwise unspecified at this layer. Callers needing deterministic
// ties should apply a secondary key such as the game number.
func RankScratchers(games []domain.ScratcherGame, weights ScoreWeights) []domain.RankedScratcher {
	if len(games) == 0 {
		return nil
	}

	jackpots := make([]float64, len(games))
	prizes := make([]float64, len(games))
	odds := make([]float64, len(games))
	prices := make([]float64, len(games))
	for i, g := range games {
		jackpots[i] = g.TopPrizeValue
		prizes[i] = g.TopPrizeRatio()
		odds[i] = inverseOdds(g)
		prices[i] = g.Price
	}

	normJackpot := minMaxNormalizer(jackpots)
	normPrizes := minMaxNormalizer(prizes)
	normOdds := minMaxNormalizer(odds)
	normPrice := minMaxNormalizer(prices)

	ranked := make([]domain.RankedScratcher, len(games))
	for i, g := range games {
		parts := domain.ScoreParts{
			Jackpot: normJackpot(jackpots[i]),
			Prizes:  normPrizes(prizes[i]),
			Odds:    normOdds(odds[i]),
			Price:   normPrice(prices[i]),
		}
		score := weights.Jackpot*parts.Jackpot +
			weights.Prizes*parts.Prizes +
			weights.Odds*parts.Odds -
			weights.Price*parts.Price
		ranked[i] = domain.RankedScratcher{Game: g, Score: score, Parts: parts}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// inverseOdds is 1/adjustedOdds, falling back to 1/overallOdds, then to 0
// when neither figure was published. Lower odds-to-win are better, so the
// inverse makes higher mean better like the other metrics.
func inverseOdds(g domain.ScratcherGame) float64 {
	switch {
	case g.AdjustedOdds > 0:
		return 1 / g.AdjustedOdds
	case g.OverallOdds > 0:
		return 1 / g.OverallOdds
	default:
		return 0
	}
}

// minMaxNormalizer returns norm(x) = (x-min)/(max-min) over the given
// sample. A degenerate sample (max == min, including a single game) maps
// everything to the unbiased midpoint 0.5, as does a non-finite input;
// this convention is applied identically to all four metrics and the
// downstream ranking depends on it.
func minMaxNormalizer(sample []float64) func(float64) float64 {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range sample {
		if !isFinite(v) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	return func(x float64) float64 {
		if !isFinite(x) || !isFinite(span) || span == 0 {
			return 0.5
		}
		return (x - min) / span
	}
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
