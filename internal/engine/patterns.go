package engine

import "github.com/lottolens/lottolens/internal/domain"

// calendarMax is the largest value a date-based pick can use; tickets
// loaded with values at or below it mirror birthdays and anniversaries.
const calendarMax = 31

// tightSpreadFraction flags tickets whose spread (max-min) covers less
// than this fraction of the domain.
const tightSpreadFraction = 0.25

// AvoidCommonMaxPick is the largest pick count the avoidance filter is
// practical for. A keno-size draw (20 of 80) lands four calendar-range
// values or a three-run on nearly every ticket, so rejection would only
// spin until the retry budget hands back a flagged ticket anyway. Callers
// should leave avoidance off above this pick count.
const AvoidCommonMaxPick = 6

// LooksTooCommon reports whether a sorted set of main numbers matches a
// widely-played shape: a run of three or more consecutive values, four or
// more calendar-range values, a full arithmetic progression, or a tight
// cluster. Any single match flags the ticket. The input is read-only and
// the special ball plays no part.
func LooksTooCommon(mains []int, era domain.EraConfig) bool {
	if len(mains) < 2 {
		return false
	}
	return hasConsecutiveRun(mains, 3) ||
		calendarBias(mains, 4) ||
		isArithmeticProgression(mains) ||
		tightCluster(mains, era.DomainSize())
}

func hasConsecutiveRun(sorted []int, runLen int) bool {
	run := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]+1 {
			run++
			if run >= runLen {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

func calendarBias(mains []int, threshold int) bool {
	low := 0
	for _, v := range mains {
		if v <= calendarMax {
			low++
		}
	}
	return low >= threshold
}

func isArithmeticProgression(sorted []int) bool {
	if len(sorted) < 3 {
		return false
	}
	diff := sorted[1] - sorted[0]
	for i := 2; i < len(sorted); i++ {
		if sorted[i]-sorted[i-1] != diff {
			return false
		}
	}
	return true
}

func tightCluster(sorted []int, domainSize int) bool {
	spread := sorted[len(sorted)-1] - sorted[0]
	return float64(spread) < tightSpreadFraction*float64(domainSize)
}
