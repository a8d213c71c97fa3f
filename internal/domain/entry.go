package domain

import (
	"time"

	"github.com/conorfennell/notedeck/internal/review"
)

// Entry is a single note eligible for review. Imported entries are keyed by
// the hash of their content.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Citation  string    `json:"citation" db:"citation"`
	Tags      []string  `json:"tags" db:"-"`
	SourceID  *string   `json:"source_id" db:"source_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReviewEvent records a single rating of an entry. The log is append-only
// and feeds streaks and daily counts.
type ReviewEvent struct {
	ID           string        `json:"id" db:"id"`
	EntryID      string        `json:"entry_id" db:"entry_id"`
	Rating       review.Rating `json:"rating" db:"rating"`
	ReviewedAt   time.Time     `json:"reviewed_at" db:"reviewed_at"`
	IntervalDays int           `json:"interval_days" db:"interval_days"`
	Ease         float64       `json:"ease" db:"ease"`
}
