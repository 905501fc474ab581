package engine

import (
	"strconv"
	"strings"

	"github.com/lottolens/lottolens/internal/domain"
)

// ScratcherFilter is a pure predicate over a scratch-off snapshot. Filters
// are independent and OR nothing between them: Apply keeps a game only when
// every filter passes, so application order never changes the result.
type ScratcherFilter func(domain.ScratcherGame) bool

// Apply returns the games passing every filter, preserving input order.
func Apply(games []domain.ScratcherGame, filters ...ScratcherFilter) []domain.ScratcherGame {
	out := make([]domain.ScratcherGame, 0, len(games))
	for _, g := range games {
		keep := true
		for _, f := range filters {
			if !f(g) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, g)
		}
	}
	return out
}

// PriceBetween keeps games whose ticket price lies within the inclusive
// bounds. A bound <= 0 is open. When either bound is given, a game with no
// recorded price is excluded.
func PriceBetween(min, max float64) ScratcherFilter {
	return func(g domain.ScratcherGame) bool {
		if min <= 0 && max <= 0 {
			return true
		}
		if g.Price <= 0 {
			return false
		}
		if min > 0 && g.Price < min {
			return false
		}
		if max > 0 && g.Price > max {
			return false
		}
		return true
	}
}

// MinPrizeRatio keeps games with at least the given fraction of top prizes
// unclaimed. Games with no recorded original count report ratio 0 and are
// excluded for any positive threshold.
func MinPrizeRatio(ratio float64) ScratcherFilter {
	return func(g domain.ScratcherGame) bool {
		return g.TopPrizeRatio() >= ratio
	}
}

// MinPrizesRemaining keeps games with at least n top prizes left.
func MinPrizesRemaining(n int) ScratcherFilter {
	return func(g domain.ScratcherGame) bool {
		return g.TopPrizesRemaining >= n
	}
}

// MatchesQuery keeps games whose name or game number contains the query,
// case-insensitively. An empty query keeps everything.
func MatchesQuery(query string) ScratcherFilter {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(g domain.ScratcherGame) bool {
		if q == "" {
			return true
		}
		if strings.Contains(strings.ToLower(g.Name), q) {
			return true
		}
		return strings.Contains(strconv.Itoa(g.GameNumber), q)
	}
}

// LifecycleIs keeps games in the given sale state.
func LifecycleIs(lc domain.ScratcherLifecycle) ScratcherFilter {
	return func(g domain.ScratcherGame) bool {
		return g.Lifecycle == lc
	}
}
