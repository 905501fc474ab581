// Package rules holds the static era rule table: for each game, the ordered
// list of rule changes and the resulting EraConfig. The table is an
// immutable value built at startup; an unknown game is a deployment defect
// and panics rather than returning an error.
package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
)

// Table maps each game to its rule eras, ascending by start date.
type Table struct {
	eras map[domain.GameID][]domain.EraConfig
}

// New builds a Table from the given era lists. Eras are sorted by start
// date; an empty list for a game is a configuration defect and panics.
func New(eras map[domain.GameID][]domain.EraConfig) *Table {
	t := &Table{eras: make(map[domain.GameID][]domain.EraConfig, len(eras))}
	for game, list := range eras {
		if len(list) == 0 {
			panic(fmt.Sprintf("rules: game %q has no eras", game))
		}
		sorted := make([]domain.EraConfig, len(list))
		copy(sorted, list)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Start.Before(sorted[j].Start)
		})
		t.eras[game] = sorted
	}
	return t
}

// Games returns the configured game identifiers in stable (sorted) order.
func (t *Table) Games() []domain.GameID {
	out := make([]domain.GameID, 0, len(t.eras))
	for game := range t.eras {
		out = append(out, game)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether the table configures the given game.
func (t *Table) Known(game domain.GameID) bool {
	_, ok := t.eras[game]
	return ok
}

// ConfigFor returns the era in effect for game at asOf: the latest era
// whose start date is not after asOf. If asOf predates every era the first
// era is returned, so the lookup is total for every configured game.
// An unknown game panics: the table is static deployment configuration,
// not user input.
func (t *Table) ConfigFor(game domain.GameID, asOf time.Time) domain.EraConfig {
	list, ok := t.eras[game]
	if !ok {
		panic(fmt.Sprintf("rules: unknown game %q", game))
	}
	cfg := list[0]
	for _, era := range list[1:] {
		if era.Start.After(asOf) {
			break
		}
		cfg = era
	}
	return cfg
}

// FilterCurrentEra returns the subsequence of rows dated on/after the
// current era's start. Rows are assumed pre-sorted by date; order is
// preserved and the input is never mutated.
func (t *Table) FilterCurrentEra(rows []domain.DrawRecord, game domain.GameID, asOf time.Time) []domain.DrawRecord {
	start := t.ConfigFor(game, asOf).Start
	// Rows are sorted ascending, so find the first in-era row and slice.
	idx := sort.Search(len(rows), func(i int) bool {
		return !rows[i].Date.Before(start)
	})
	return rows[idx:]
}
