package domain

import "time"

// ScratcherLifecycle is the sale state of a scratch-off game.
type ScratcherLifecycle string

const (
	LifecycleNew        ScratcherLifecycle = "new"
	LifecycleContinuing ScratcherLifecycle = "continuing"
)

// ScratcherGame is one scratch-off game snapshot as published by the
// jurisdiction. GameNumber is the identity key. Odds fields hold the X of a
// "1 in X" figure; AdjustedOdds accounts for prizes already claimed. Zero
// values mean the upstream index did not publish the figure.
type ScratcherGame struct {
	GameNumber         int
	Name               string
	Price              float64
	TopPrizeValue      float64
	TopPrizesOriginal  int
	TopPrizesRemaining int
	OverallOdds        float64
	AdjustedOdds       float64
	StartDate          time.Time
	Lifecycle          ScratcherLifecycle
	UpdatedAt          time.Time
}

// TopPrizeRatio is the fraction of top prizes still unclaimed. A game with
// no recorded original count reports 0: conservatively "no prizes left
// signal", never a division by zero.
func (g ScratcherGame) TopPrizeRatio() float64 {
	if g.TopPrizesOriginal <= 0 {
		return 0
	}
	return float64(g.TopPrizesRemaining) / float64(g.TopPrizesOriginal)
}
