// Package engine implements the lottery analytics core: frequency
// statistics, the weighting recommendation heuristic, the weighted ticket
// generator with pattern avoidance, and the scratch-off scoring, filtering,
// and sorting primitives.
//
// Every function in this package is pure: no I/O, no clocks, no global RNG.
// Randomness is always an injected *rand.Rand, and inputs are never
// mutated. Callers needing concurrency can dispatch these functions freely;
// there is no shared state to interfere.
package engine

import (
	"maps"
	"math"
	"slices"

	"github.com/lottolens/lottolens/internal/domain"
)

// ComputeStats aggregates per-value hit counts over the given (era-
// filtered) rows and derives the coefficient of variation per number class.
// Counting treats the main numbers of each row as an unordered set of hits,
// so the result is invariant under permutation of the input. Values outside
// the era's domain are skipped rather than faulting the whole aggregation;
// excluding them is the ingest layer's job, this is just the backstop.
//
// Zero rows yield all-zero counts and CV 0 for both classes: "no signal",
// not an error.
func ComputeStats(rows []domain.DrawRecord, game domain.GameID, era domain.EraConfig) domain.FrequencyStats {
	stats := domain.FrequencyStats{
		Game:          game,
		Draws:         len(rows),
		MainCounts:    zeroCounts(era.MainMin, era.MainMax),
		SpecialCounts: map[int]int{},
	}
	if era.HasSpecial() {
		stats.SpecialCounts = zeroCounts(1, era.SpecialMax)
	}

	for _, row := range rows {
		for _, v := range row.Mains {
			if _, ok := stats.MainCounts[v]; ok {
				stats.MainCounts[v]++
			}
		}
		if era.HasSpecial() {
			if _, ok := stats.SpecialCounts[row.Special]; ok {
				stats.SpecialCounts[row.Special]++
			}
		}
	}

	if len(rows) > 0 {
		stats.MainCV = coefficientOfVariation(stats.MainCounts)
		stats.SpecialCV = coefficientOfVariation(stats.SpecialCounts)
	}
	return stats
}

func zeroCounts(min, max int) map[int]int {
	counts := make(map[int]int, max-min+1)
	for v := min; v <= max; v++ {
		counts[v] = 0
	}
	return counts
}

// countValues returns the counts in ascending value order. The moment
// functions below accumulate floats over this slice so summation order is
// fixed; iterating the map directly would make the last ULPs of the result
// vary per call.
func countValues(counts map[int]int) []float64 {
	keys := slices.Sorted(maps.Keys(counts))
	vals := make([]float64, len(keys))
	for i, k := range keys {
		vals[i] = float64(counts[k])
	}
	return vals
}

// coefficientOfVariation is stddev/mean of the count values, 0 when the
// map is empty or the mean is 0.
func coefficientOfVariation(counts map[int]int) float64 {
	vals := countValues(counts)
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(vals))) / mean
}

// countSkewness is the standardized third moment of the count values, 0
// for flat or empty distributions. A positive skew means a few values hit
// far more often than the rest.
func countSkewness(counts map[int]int) float64 {
	vals := countValues(counts)
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var m2, m3 float64
	for _, v := range vals {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= float64(len(vals))
	m3 /= float64(len(vals))
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}
