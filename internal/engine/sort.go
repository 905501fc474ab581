package engine

import (
	"cmp"
	"slices"

	"github.com/lottolens/lottolens/internal/domain"
)

// SortKey selects the ordering of a scratcher listing.
type SortKey string

const (
	SortByScore           SortKey = "score"
	SortByAdjustedOdds    SortKey = "adjusted_odds"
	SortByOverallOdds     SortKey = "overall_odds"
	SortByPrice           SortKey = "price"
	SortByTopPrize        SortKey = "top_prize"
	SortByPrizesRemaining SortKey = "prizes_remaining"
	SortByLaunchDate      SortKey = "launch_date"
)

// ValidSortKey reports whether key names a supported ordering.
func ValidSortKey(key SortKey) bool {
	switch key {
	case SortByScore, SortByAdjustedOdds, SortByOverallOdds, SortByPrice,
		SortByTopPrize, SortByPrizesRemaining, SortByLaunchDate:
		return true
	}
	return false
}

// Compare returns the comparator for the given key over plain snapshots.
// Ascending keys (odds, price) push games missing the figure to the end
// rather than the top. Every comparator breaks primary-key ties on the
// game number ascending, so equal keys still yield a stable, reproducible
// order. SortByScore is handled by SortRanked; here it falls back to the
// top-prize ordering.
func Compare(key SortKey) func(a, b domain.ScratcherGame) int {
	switch key {
	case SortByAdjustedOdds:
		return func(a, b domain.ScratcherGame) int {
			return tieBreak(ascendingMissingLast(a.AdjustedOdds, b.AdjustedOdds), a, b)
		}
	case SortByOverallOdds:
		return func(a, b domain.ScratcherGame) int {
			return tieBreak(ascendingMissingLast(a.OverallOdds, b.OverallOdds), a, b)
		}
	case SortByPrice:
		return func(a, b domain.ScratcherGame) int {
			return tieBreak(ascendingMissingLast(a.Price, b.Price), a, b)
		}
	case SortByPrizesRemaining:
		return func(a, b domain.ScratcherGame) int {
			return tieBreak(cmp.Compare(b.TopPrizesRemaining, a.TopPrizesRemaining), a, b)
		}
	case SortByLaunchDate:
		return func(a, b domain.ScratcherGame) int {
			return tieBreak(b.StartDate.Compare(a.StartDate), a, b)
		}
	default: // SortByTopPrize and the score fallback
		return func(a, b domain.ScratcherGame) int {
			return tieBreak(cmp.Compare(b.TopPrizeValue, a.TopPrizeValue), a, b)
		}
	}
}

// SortGames orders games in place by the given key.
func SortGames(games []domain.ScratcherGame, key SortKey) {
	slices.SortFunc(games, Compare(key))
}

// SortRanked orders a scored list by descending score with the game number
// as the deterministic tie-break — the stronger guarantee the listing layer
// offers on top of RankScratchers' unspecified tie order.
func SortRanked(ranked []domain.RankedScratcher) {
	slices.SortFunc(ranked, func(a, b domain.RankedScratcher) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Game.GameNumber, b.Game.GameNumber)
	})
}

func tieBreak(primary int, a, b domain.ScratcherGame) int {
	if primary != 0 {
		return primary
	}
	return cmp.Compare(a.GameNumber, b.GameNumber)
}

// ascendingMissingLast compares ascending, treating a non-positive value as
// "not published" and ordering it after every published value.
func ascendingMissingLast(a, b float64) int {
	switch {
	case a <= 0 && b <= 0:
		return 0
	case a <= 0:
		return 1
	case b <= 0:
		return -1
	default:
		return cmp.Compare(a, b)
	}
}
