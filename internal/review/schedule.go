package review

import (
	"fmt"
	"math"
	"time"
)

const (
	againPenalty = 0.20
	hardPenalty  = 0.15
	easyBonus    = 0.10

	hardFactor = 1.2
	easyFactor = 1.3

	firstGoodInterval = 1
	firstEasyInterval = 2
)

// Next computes the state that follows prev when the entry is rated at now.
// It is deterministic and has no side effects. The only error is
// ErrInvalidRating.
//
// Intervals are rounded half away from zero and the due instant is exactly
// IntervalDays*24h after now, with no calendar or DST adjustment.
func Next(prev Input, rating Rating, now time.Time) (State, error) {
	if !rating.IsValid() {
		return State{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	// Non-positive intervals mean the entry was never reviewed.
	reviewed := prev.IntervalDays > 0
	base := 1.0
	if reviewed {
		base = prev.IntervalDays
	}

	next := State{
		Reps:   prev.Reps + 1,
		Lapses: prev.Lapses,
	}

	var ease, interval float64
	switch rating {
	case Again:
		ease = prev.Ease - againPenalty
		interval = 1
		next.Lapses++
	case Hard:
		ease = prev.Ease - hardPenalty
		interval = math.Round(base * hardFactor)
	case Good:
		ease = prev.Ease
		interval = firstGoodInterval
		if reviewed {
			interval = math.Round(base * prev.Ease)
		}
	case Easy:
		ease = prev.Ease + easyBonus
		interval = firstEasyInterval
		if reviewed {
			interval = math.Round(base * prev.Ease * easyFactor)
		}
	}

	next.Ease = clampEase(ease)
	next.IntervalDays = int(math.Max(1, interval))
	next.DueAt = now.Add(time.Duration(next.IntervalDays) * day)
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	return next, nil
}

func clampEase(ease float64) float64 {
	return math.Min(MaxEase, math.Max(MinEase, ease))
}
