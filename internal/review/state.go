package review

import "time"

const (
	DefaultEase = 2.5
	MinEase     = 1.3
	MaxEase     = 3.0

	day = 24 * time.Hour
)

// State is the scheduling memory of one entry. A new State fully replaces
// the previous one after every review.
type State struct {
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"` // nil before the first review.
	IntervalDays   int        `json:"interval_days"`
	Ease           float64    `json:"ease"`
	Reps           int        `json:"reps"`
	Lapses         int        `json:"lapses"`
}

// Input is the state a transition starts from. IntervalDays is a float so
// that corrupt stored values (negative or fractional) still schedule.
type Input struct {
	DueAt          time.Time
	LastReviewedAt *time.Time
	IntervalDays   float64
	Ease           float64
	Reps           int
	Lapses         int
}

// NewState returns the state of an entry that has never been reviewed,
// due at its creation instant.
func NewState(createdAt time.Time) State {
	return State{
		DueAt: createdAt,
		Ease:  DefaultEase,
	}
}

// Input converts a stored state into transition input.
func (s State) Input() Input {
	return Input{
		DueAt:          s.DueAt,
		LastReviewedAt: s.LastReviewedAt,
		IntervalDays:   float64(s.IntervalDays),
		Ease:           s.Ease,
		Reps:           s.Reps,
		Lapses:         s.Lapses,
	}
}
