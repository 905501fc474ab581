package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottolens/lottolens/internal/domain"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1))
}

func emptyStats(game domain.GameID, era domain.EraConfig) domain.FrequencyStats {
	return ComputeStats(nil, game, era)
}

func TestGenerateTicketShape(t *testing.T) {
	era := powerballEra()
	stats := ComputeStats(rowsFixture(), domain.GamePowerball, era)
	rng := testRNG()

	for i := 0; i < 200; i++ {
		ticket := GenerateTicket(rng, stats, era, TicketOptions{
			MainMode: domain.ModeHot, SpecialMode: domain.ModeHot,
			MainAlpha: 0.7, SpecialAlpha: 0.7,
		})

		require.Len(t, ticket.Mains, era.MainPick)
		seen := map[int]bool{}
		prev := 0
		for _, v := range ticket.Mains {
			assert.GreaterOrEqual(t, v, era.MainMin)
			assert.LessOrEqual(t, v, era.MainMax)
			assert.False(t, seen[v], "duplicate main value")
			assert.Greater(t, v, prev, "mains not sorted ascending")
			seen[v] = true
			prev = v
		}
		assert.GreaterOrEqual(t, ticket.Special, 1)
		assert.LessOrEqual(t, ticket.Special, era.SpecialMax)
	}
}

// With alpha 0 the blend must collapse to exact uniform sampling whatever
// the mode, so long-run per-value frequencies pass a chi-square check.
func TestGenerateTicketAlphaZeroIsUniform(t *testing.T) {
	era := domain.EraConfig{MainMin: 1, MainMax: 10, MainPick: 1}
	// Heavily skewed history that alpha 0 must ignore.
	stats := domain.FrequencyStats{
		Game:       domain.GameTake5,
		Draws:      100,
		MainCounts: map[int]int{1: 90, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 2, 10: 1},
	}

	for _, mode := range []domain.SampleMode{domain.ModeHot, domain.ModeCold} {
		rng := testRNG()
		const trials = 20000
		counts := make(map[int]int)
		for i := 0; i < trials; i++ {
			ticket := GenerateTicket(rng, stats, era, TicketOptions{MainMode: mode, MainAlpha: 0})
			counts[ticket.Mains[0]]++
		}

		expected := float64(trials) / 10
		chi2 := 0.0
		for v := 1; v <= 10; v++ {
			d := float64(counts[v]) - expected
			chi2 += d * d / expected
		}
		// 99.9% critical value for 9 degrees of freedom.
		assert.Lessf(t, chi2, 27.88, "mode %s not uniform: chi2=%v counts=%v", mode, chi2, counts)
	}
}

func TestGenerateTicketHotBias(t *testing.T) {
	era := domain.EraConfig{MainMin: 1, MainMax: 10, MainPick: 1}
	stats := domain.FrequencyStats{
		Draws:      100,
		MainCounts: map[int]int{1: 50, 2: 5, 3: 5, 4: 5, 5: 5, 6: 5, 7: 5, 8: 5, 9: 5, 10: 10},
	}

	rng := testRNG()
	hits := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		ticket := GenerateTicket(rng, stats, era, TicketOptions{MainMode: domain.ModeHot, MainAlpha: 1})
		if ticket.Mains[0] == 1 {
			hits++
		}
	}
	// Fully historical weighting gives value 1 a 50% draw probability.
	assert.Greater(t, hits, trials/3)
}

func TestGenerateTicketColdBias(t *testing.T) {
	era := domain.EraConfig{MainMin: 1, MainMax: 2, MainPick: 1}
	stats := domain.FrequencyStats{
		Draws:      100,
		MainCounts: map[int]int{1: 99, 2: 0},
	}

	rng := testRNG()
	cold := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		ticket := GenerateTicket(rng, stats, era, TicketOptions{MainMode: domain.ModeCold, MainAlpha: 1})
		if ticket.Mains[0] == 2 {
			cold++
		}
	}
	// Cold weights are 1/100 vs 1/1: value 2 should dominate.
	assert.Greater(t, cold, trials*9/10)
}

func TestGenerateTicketEmptyHistoryFallsBackToUniform(t *testing.T) {
	era := take5Era()
	stats := emptyStats(domain.GameTake5, era)
	rng := testRNG()

	ticket := GenerateTicket(rng, stats, era, TicketOptions{
		MainMode: domain.ModeHot, MainAlpha: 0.9,
	})
	require.Len(t, ticket.Mains, 5)
	for _, v := range ticket.Mains {
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 39)
	}
}

func TestGenerateTicketAvoidCommonNeverReturnsFlagged(t *testing.T) {
	era := powerballEra()
	stats := emptyStats(domain.GamePowerball, era)
	rng := testRNG()

	for i := 0; i < 500; i++ {
		ticket := GenerateTicket(rng, stats, era, TicketOptions{
			MainMode: domain.ModeHot, SpecialMode: domain.ModeHot, AvoidCommon: true,
		})
		assert.Falsef(t, LooksTooCommon(ticket.Mains, era), "flagged ticket returned: %v", ticket.Mains)
	}
}

func TestGenerateTicketAvoidBudgetStillTerminates(t *testing.T) {
	// Pick 5 of 5: the only possible ticket is a straight run, so every
	// candidate is flagged and the retry budget has to hand one back.
	era := domain.EraConfig{MainMin: 1, MainMax: 5, MainPick: 5}
	stats := emptyStats("tiny", era)
	rng := testRNG()

	ticket := GenerateTicket(rng, stats, era, TicketOptions{
		MainMode: domain.ModeHot, AvoidCommon: true,
	})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ticket.Mains)
}

func TestGenerateTicketDigitGameAllowsRepeats(t *testing.T) {
	era := digitEra()
	stats := emptyStats(domain.GameNumbers, era)
	rng := testRNG()

	sawRepeat := false
	for i := 0; i < 500; i++ {
		ticket := GenerateTicket(rng, stats, era, TicketOptions{MainMode: domain.ModeHot})
		require.Len(t, ticket.Mains, 3)
		for _, d := range ticket.Mains {
			assert.GreaterOrEqual(t, d, 0)
			assert.LessOrEqual(t, d, 9)
		}
		if ticket.Mains[0] == ticket.Mains[1] || ticket.Mains[1] == ticket.Mains[2] {
			sawRepeat = true
		}
	}
	assert.True(t, sawRepeat, "digit game should produce repeated digits over 500 draws")
}

func TestGenerateTicketsDistinct(t *testing.T) {
	era := take5Era()
	stats := emptyStats(domain.GameTake5, era)
	rng := testRNG()

	tickets := GenerateTickets(rng, stats, era, TicketOptions{MainMode: domain.ModeHot}, 10, 0)
	require.Len(t, tickets, 10)

	seen := map[string]bool{}
	for _, tk := range tickets {
		key := ticketKey(tk)
		assert.False(t, seen[key], "duplicate ticket in batch")
		seen[key] = true
	}
}

// Requesting more distinct tickets than the combinatorial space allows must
// exhaust the budget and return a short list, never an error.
func TestGenerateTicketsExhaustionReturnsShortList(t *testing.T) {
	era := domain.EraConfig{MainMin: 1, MainMax: 3, MainPick: 2}
	stats := domain.FrequencyStats{MainCounts: map[int]int{1: 0, 2: 0, 3: 0}}
	rng := testRNG()

	// Only C(3,2)=3 distinct tickets exist.
	tickets := GenerateTickets(rng, stats, era, TicketOptions{MainMode: domain.ModeHot}, 10, 0)
	assert.LessOrEqual(t, len(tickets), 3)
	assert.NotEmpty(t, tickets)
}

func TestGenerateTicketsZeroCount(t *testing.T) {
	era := take5Era()
	stats := emptyStats(domain.GameTake5, era)
	assert.Nil(t, GenerateTickets(testRNG(), stats, era, TicketOptions{}, 0, 0))
}

func TestGenerateTicketPickExceedingDomainIsCapped(t *testing.T) {
	era := domain.EraConfig{MainMin: 1, MainMax: 4, MainPick: 9}
	stats := domain.FrequencyStats{MainCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0}}

	ticket := GenerateTicket(testRNG(), stats, era, TicketOptions{MainMode: domain.ModeHot})
	assert.Equal(t, []int{1, 2, 3, 4}, ticket.Mains)
}
