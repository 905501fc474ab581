package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottolens/lottolens/internal/domain"
)

func scratcherFixture() []domain.ScratcherGame {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	return []domain.ScratcherGame{
		{
			GameNumber: 1501, Name: "Set For Life", Price: 10,
			TopPrizeValue: 5_000_000, TopPrizesOriginal: 10, TopPrizesRemaining: 6,
			OverallOdds: 3.5, AdjustedOdds: 3.1,
			StartDate: start, Lifecycle: domain.LifecycleContinuing,
		},
		{
			GameNumber: 1502, Name: "Win Big", Price: 5,
			TopPrizeValue: 1_000_000, TopPrizesOriginal: 8, TopPrizesRemaining: 8,
			OverallOdds: 4.2, AdjustedOdds: 4.0,
			StartDate: start.AddDate(0, 2, 0), Lifecycle: domain.LifecycleNew,
		},
		{
			GameNumber: 1503, Name: "Lucky 7s", Price: 2,
			TopPrizeValue: 77_777, TopPrizesOriginal: 20, TopPrizesRemaining: 1,
			OverallOdds: 4.8,
			StartDate: start.AddDate(0, -6, 0), Lifecycle: domain.LifecycleContinuing,
		},
	}
}

func TestRankScratchersDescending(t *testing.T) {
	ranked := RankScratchers(scratcherFixture(), DefaultScoreWeights())
	require.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankScratchersSingleGameDegenerate(t *testing.T) {
	games := scratcherFixture()[:1]
	ranked := RankScratchers(games, DefaultScoreWeights())
	require.Len(t, ranked, 1)

	// Every metric min-max normalizes over a single value: midpoint 0.5.
	assert.Equal(t, domain.ScoreParts{Jackpot: 0.5, Prizes: 0.5, Odds: 0.5, Price: 0.5}, ranked[0].Parts)

	w := DefaultScoreWeights()
	want := 0.5 * (w.Jackpot + w.Prizes + w.Odds - w.Price)
	assert.InDelta(t, want, ranked[0].Score, 1e-12)
}

func TestRankScratchersJackpotSpread(t *testing.T) {
	a := domain.ScratcherGame{
		GameNumber: 1, Name: "A", Price: 5,
		TopPrizeValue: 1000, TopPrizesOriginal: 10, TopPrizesRemaining: 5,
		OverallOdds: 4, AdjustedOdds: 4,
	}
	b := a
	b.GameNumber = 2
	b.Name = "B"
	b.TopPrizeValue = 2000

	ranked := RankScratchers([]domain.ScratcherGame{a, b}, DefaultScoreWeights())
	require.Len(t, ranked, 2)

	byNumber := map[int]domain.RankedScratcher{}
	for _, r := range ranked {
		byNumber[r.Game.GameNumber] = r
	}
	assert.Equal(t, 0.0, byNumber[1].Parts.Jackpot)
	assert.Equal(t, 1.0, byNumber[2].Parts.Jackpot)
	// All other metrics are equal, so each normalizes to 0.5 and B wins on
	// the jackpot weight alone.
	assert.Greater(t, byNumber[2].Score, byNumber[1].Score)
	assert.Equal(t, 2, ranked[0].Game.GameNumber)
}

func TestRankScratchersZeroOriginalPrizes(t *testing.T) {
	g := domain.ScratcherGame{GameNumber: 9, TopPrizesOriginal: 0, TopPrizesRemaining: 4}
	assert.Zero(t, g.TopPrizeRatio())

	ranked := RankScratchers([]domain.ScratcherGame{g}, DefaultScoreWeights())
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.5, ranked[0].Parts.Prizes)
}

func TestRankScratchersOddsFallback(t *testing.T) {
	noAdjusted := domain.ScratcherGame{GameNumber: 1, OverallOdds: 4}
	neither := domain.ScratcherGame{GameNumber: 2}
	adjusted := domain.ScratcherGame{GameNumber: 3, OverallOdds: 4, AdjustedOdds: 2}

	assert.Equal(t, 0.25, inverseOdds(noAdjusted))
	assert.Zero(t, inverseOdds(neither))
	assert.Equal(t, 0.5, inverseOdds(adjusted))
}

func TestRankScratchersEmpty(t *testing.T) {
	assert.Nil(t, RankScratchers(nil, DefaultScoreWeights()))
}

func TestRankScratchersExposesParts(t *testing.T) {
	ranked := RankScratchers(scratcherFixture(), DefaultScoreWeights())
	for _, r := range ranked {
		for _, part := range []float64{r.Parts.Jackpot, r.Parts.Prizes, r.Parts.Odds, r.Parts.Price} {
			assert.GreaterOrEqual(t, part, 0.0)
			assert.LessOrEqual(t, part, 1.0)
		}
	}
}
