package rules

import (
	"time"

	"github.com/lottolens/lottolens/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Default returns the built-in rule table for the supported games. Start
// dates are the official rule-change effective dates; earlier eras exist
// only to exclude stale records from statistics.
func Default() *Table {
	return New(map[domain.GameID][]domain.EraConfig{
		domain.GamePowerball: {
			{
				Start: date(2009, time.January, 7), Label: "5/59 + 1/39",
				MainMin: 1, MainMax: 59, MainPick: 5,
				SpecialMax: 39, SpecialLabel: "Powerball",
			},
			{
				Start: date(2012, time.January, 18), Label: "5/59 + 1/35",
				MainMin: 1, MainMax: 59, MainPick: 5,
				SpecialMax: 35, SpecialLabel: "Powerball",
			},
			{
				Start: date(2015, time.October, 7), Label: "5/69 + 1/26",
				MainMin: 1, MainMax: 69, MainPick: 5,
				SpecialMax: 26, SpecialLabel: "Powerball",
			},
		},
		domain.GameMegaMillions: {
			{
				Start: date(2013, time.October, 22), Label: "5/75 + 1/15",
				MainMin: 1, MainMax: 75, MainPick: 5,
				SpecialMax: 15, SpecialLabel: "Mega Ball",
			},
			{
				Start: date(2017, time.October, 31), Label: "5/70 + 1/25",
				MainMin: 1, MainMax: 70, MainPick: 5,
				SpecialMax: 25, SpecialLabel: "Mega Ball",
			},
			{
				Start: date(2025, time.April, 8), Label: "5/70 + 1/24",
				MainMin: 1, MainMax: 70, MainPick: 5,
				SpecialMax: 24, SpecialLabel: "Mega Ball",
			},
		},
		domain.GameCash4Life: {
			{
				Start: date(2014, time.June, 16), Label: "5/60 + 1/4",
				MainMin: 1, MainMax: 60, MainPick: 5,
				SpecialMax: 4, SpecialLabel: "Cash Ball",
			},
		},
		domain.GameLotto: {
			{
				Start: date(2001, time.September, 12), Label: "6/59",
				MainMin: 1, MainMax: 59, MainPick: 6,
			},
		},
		domain.GameTake5: {
			{
				Start: date(1992, time.January, 17), Label: "5/39",
				MainMin: 1, MainMax: 39, MainPick: 5,
			},
		},
		domain.GamePick10: {
			{
				Start: date(1987, time.September, 1), Label: "20/80",
				MainMin: 1, MainMax: 80, MainPick: 20,
			},
		},
		domain.GameQuickDraw: {
			{
				Start: date(1995, time.September, 1), Label: "20/80 keno",
				MainMin: 1, MainMax: 80, MainPick: 20,
			},
		},
		domain.GameNumbers: {
			{
				Start: date(1980, time.September, 1), Label: "3 digits",
				MainMin: 0, MainMax: 9, MainPick: 3, Replacement: true,
			},
		},
		domain.GameWin4: {
			{
				Start: date(1981, time.September, 1), Label: "4 digits",
				MainMin: 0, MainMax: 9, MainPick: 4, Replacement: true,
			},
		},
	})
}
