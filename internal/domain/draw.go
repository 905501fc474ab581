// Package domain defines the core data model shared by every layer of
// lottolens: draw records, rule eras, frequency statistics, generated
// tickets, and scratch-off snapshots, plus the store and cache contracts
// the infrastructure packages implement.
package domain

import "time"

// GameID identifies a configured draw game.
type GameID string

const (
	GamePowerball    GameID = "powerball"
	GameMegaMillions GameID = "megamillions"
	GameCash4Life    GameID = "cash4life"
	GameLotto        GameID = "nylotto"
	GameTake5        GameID = "take5"
	GamePick10       GameID = "pick10"
	GameQuickDraw    GameID = "quickdraw"
	GameNumbers      GameID = "numbers"
	GameWin4         GameID = "win4"
)

// DrawRecord is one historical drawing. Mains holds exactly the era's pick
// count of values; Special is 0 for games without a separately drawn ball.
// Records are produced by the ingest layer and consumed read-only.
type DrawRecord struct {
	Date    time.Time
	Mains   []int
	Special int
}

// DigitRecord is a drawing of a digit game (Numbers, Win 4): digits in
// [0,9], repetition allowed.
type DigitRecord struct {
	Date   time.Time
	Digits []int
}

// Record converts the digit drawing to the canonical row shape.
func (r DigitRecord) Record() DrawRecord {
	return DrawRecord{Date: r.Date, Mains: r.Digits}
}

// Pick10Record is a Pick 10 drawing: 20 values from [1,80] (players match
// against 10 picks).
type Pick10Record struct {
	Date    time.Time
	Numbers []int
}

// Record converts the Pick 10 drawing to the canonical row shape.
func (r Pick10Record) Record() DrawRecord {
	return DrawRecord{Date: r.Date, Mains: r.Numbers}
}

// QuickDrawRecord is a single Quick Draw (keno) drawing: 20 values from
// [1,80], many drawings per day.
type QuickDrawRecord struct {
	Date    time.Time
	DrawNo  int
	Numbers []int
}

// Record converts the Quick Draw drawing to the canonical row shape.
func (r QuickDrawRecord) Record() DrawRecord {
	return DrawRecord{Date: r.Date, Mains: r.Numbers}
}

// EraConfig describes the rules of a game during one contiguous era. A rule
// change (domain or pick-count) starts a new era; only records dated within
// the current era feed statistics and generation.
type EraConfig struct {
	Start        time.Time
	Label        string
	MainMin      int // 0 for digit games, 1 otherwise
	MainMax      int
	MainPick     int
	SpecialMax   int // 0 when the game has no special ball
	SpecialLabel string
	Replacement  bool // digit games draw each position independently
}

// HasSpecial reports whether the era includes a separately drawn ball.
func (e EraConfig) HasSpecial() bool { return e.SpecialMax > 0 }

// DomainSize is the number of distinct values a main pick can take.
func (e EraConfig) DomainSize() int { return e.MainMax - e.MainMin + 1 }
