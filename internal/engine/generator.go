package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/lottolens/lottolens/internal/domain"
)

// TicketOptions control one generation call.
type TicketOptions struct {
	MainMode     domain.SampleMode
	SpecialMode  domain.SampleMode
	MainAlpha    float64 // 0 = uniform, 1 = fully historical
	SpecialAlpha float64
	AvoidCommon  bool // reject commonly-played shapes (distinct-pick games only)
}

// DefaultAttemptsPerTicket bounds the distinct-N loop: GenerateTickets
// gives up after n*DefaultAttemptsPerTicket draws and returns what it has.
const DefaultAttemptsPerTicket = 50

// avoidRetryBudget bounds the in-call resample loop when AvoidCommon is
// set; past it the last candidate is returned as-is so a single call always
// terminates.
const avoidRetryBudget = 1000

// GenerateTicket draws one ticket from the blended weight distribution
// derived from stats. Main numbers are drawn without replacement with
// renormalization after each removal (digit games draw each position
// independently instead); the special ball, if the era has one, is drawn
// from its own distribution with no exclusivity against the mains.
//
// An all-zero count map (no draw history) makes hot and cold both collapse
// to uniform weights, so an empty record set degrades to pure uniform
// sampling rather than failing.
//
// AvoidCommon is best-effort: once avoidRetryBudget candidates have been
// rejected the last one is returned even though it is flagged. On domains
// where the filter rejects nearly every draw (picks above
// AvoidCommonMaxPick) that fallback is the norm, which is why callers
// should not enable avoidance there.
func GenerateTicket(rng *rand.Rand, stats domain.FrequencyStats, era domain.EraConfig, opts TicketOptions) domain.GeneratedTicket {
	for attempt := 0; ; attempt++ {
		ticket := drawOnce(rng, stats, era, opts)
		if !opts.AvoidCommon || era.Replacement {
			return ticket
		}
		if !LooksTooCommon(ticket.Mains, era) || attempt >= avoidRetryBudget {
			return ticket
		}
	}
}

// GenerateTickets produces up to n distinct tickets via repeated
// GenerateTicket calls with a dedup set. maxAttempts bounds the loop
// (<=0 selects n*DefaultAttemptsPerTicket). When the budget runs out —
// typically because n exceeds what the domain or the avoidance filter
// permits — the short list is returned; exhaustion is expected, not an
// error.
func GenerateTickets(rng *rand.Rand, stats domain.FrequencyStats, era domain.EraConfig, opts TicketOptions, n, maxAttempts int) []domain.GeneratedTicket {
	if n <= 0 {
		return nil
	}
	if maxAttempts <= 0 {
		maxAttempts = n * DefaultAttemptsPerTicket
	}

	tickets := make([]domain.GeneratedTicket, 0, n)
	seen := make(map[string]struct{}, n)
	for attempt := 0; attempt < maxAttempts && len(tickets) < n; attempt++ {
		t := GenerateTicket(rng, stats, era, opts)
		key := ticketKey(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tickets = append(tickets, t)
	}
	return tickets
}

func drawOnce(rng *rand.Rand, stats domain.FrequencyStats, era domain.EraConfig, opts TicketOptions) domain.GeneratedTicket {
	var ticket domain.GeneratedTicket

	if era.Replacement {
		// Digit game: each position is an independent draw over the domain.
		weights := classWeights(stats.MainCounts, era.MainMin, era.MainMax, opts.MainMode, opts.MainAlpha)
		ticket.Mains = make([]int, era.MainPick)
		for i := range ticket.Mains {
			ticket.Mains[i] = era.MainMin + sampleIndex(rng, weights)
		}
	} else {
		ticket.Mains = drawWithoutReplacement(rng, stats.MainCounts, era, opts)
		sort.Ints(ticket.Mains)
	}

	if era.HasSpecial() {
		weights := classWeights(stats.SpecialCounts, 1, era.SpecialMax, opts.SpecialMode, opts.SpecialAlpha)
		ticket.Special = 1 + sampleIndex(rng, weights)
	}
	return ticket
}

// drawWithoutReplacement repeatedly samples from the current weight
// distribution over not-yet-chosen values, removing each pick, until the
// era's pick count is reached. Removing an entry and re-sampling over the
// remainder is the renormalization: relative weights among survivors are
// unchanged.
func drawWithoutReplacement(rng *rand.Rand, counts map[int]int, era domain.EraConfig, opts TicketOptions) []int {
	size := era.DomainSize()
	values := make([]int, size)
	for i := range values {
		values[i] = era.MainMin + i
	}
	weights := classWeights(counts, era.MainMin, era.MainMax, opts.MainMode, opts.MainAlpha)

	pick := era.MainPick
	if pick > size {
		pick = size
	}
	chosen := make([]int, 0, pick)
	for len(chosen) < pick {
		idx := sampleIndex(rng, weights)
		chosen = append(chosen, values[idx])
		values = append(values[:idx], values[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return chosen
}

// classWeights builds the per-value sampling weight for one number class:
// (1-alpha)*uniform + alpha*historical. Hot mode normalizes raw counts;
// cold mode normalizes 1/(count+1) so rare values gain weight without a
// zero-count value going infinite. With all-zero counts both modes reduce
// to uniform, and alpha 0 is exactly uniform regardless of mode.
func classWeights(counts map[int]int, min, max int, mode domain.SampleMode, alpha float64) []float64 {
	size := max - min + 1
	uniform := 1.0 / float64(size)

	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	hist := make([]float64, size)
	var total float64
	for i := 0; i < size; i++ {
		c := counts[min+i]
		if c < 0 {
			c = 0
		}
		var w float64
		if mode == domain.ModeCold {
			w = 1.0 / float64(c+1)
		} else {
			w = float64(c)
		}
		hist[i] = w
		total += w
	}

	weights := make([]float64, size)
	for i := 0; i < size; i++ {
		h := uniform
		if total > 0 {
			h = hist[i] / total
		}
		weights[i] = (1-alpha)*uniform + alpha*h
	}
	return weights
}

// sampleIndex draws one index proportionally to weights via a cumulative
// scan. A degenerate all-zero weight slice falls back to a uniform pick.
func sampleIndex(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rng.IntN(len(weights))
	}
	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	// Floating-point round-off can leave r at the far edge.
	return len(weights) - 1
}

func ticketKey(t domain.GeneratedTicket) string {
	var b strings.Builder
	for i, v := range t.Mains {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	if t.Special > 0 {
		fmt.Fprintf(&b, "|%d", t.Special)
	}
	return b.String()
}
