package storage

import (
	"context"
	"time"

	"github.com/conorfennell/notedeck/internal/review"
)

// Stats summarizes a user's review workload and habit.
type Stats struct {
	review.DueStats
	Total         int `json:"total"`
	Streak        int `json:"streak"`
	ReviewedToday int `json:"reviewed_today"`
	TZOffset      int `json:"tz_offset"`
}

// ReviewStats classifies every entry against the user's day and counts the
// current streak, looking back at most horizonDays.
func (db *DB) ReviewStats(ctx context.Context, now time.Time, tzOffsetMinutes, horizonDays int) (*Stats, error) {
	schedule, err := db.ListSchedule(ctx)
	if err != nil {
		return nil, err
	}
	dues := make([]*time.Time, len(schedule))
	for i := range schedule {
		dues[i] = schedule[i].DueAt
	}

	// One extra day covers the streak starting from yesterday.
	since := review.StartOfUserDay(tzOffsetMinutes, now).AddDate(0, 0, -(horizonDays + 1))
	times, err := db.ListReviewTimes(ctx, since)
	if err != nil {
		return nil, err
	}

	return &Stats{
		DueStats:      review.Tally(dues, now, tzOffsetMinutes),
		Total:         len(schedule),
		Streak:        review.StreakWithin(times, tzOffsetMinutes, now, horizonDays),
		ReviewedToday: review.ReviewedToday(times, now, tzOffsetMinutes),
		TZOffset:      tzOffsetMinutes,
	}, nil
}
