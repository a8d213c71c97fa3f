package review

import "time"

// Bucket classifies an entry's due instant relative to the user's day.
type Bucket int

const (
	Unscheduled Bucket = iota // Due later than tomorrow's window.
	New
	Overdue
	DueToday
	Upcoming
)

func (b Bucket) String() string {
	switch b {
	case New:
		return "new"
	case Overdue:
		return "overdue"
	case DueToday:
		return "due_today"
	case Upcoming:
		return "upcoming"
	default:
		return "unscheduled"
	}
}

// DueStats counts entries per bucket. The buckets are mutually exclusive but
// do not cover every entry.
type DueStats struct {
	Overdue  int `json:"overdue"`
	DueToday int `json:"due_today"`
	Upcoming int `json:"upcoming"`
	New      int `json:"new"`
}

// Classify places dueAt into a bucket. A nil dueAt is an entry with no
// review state.
func Classify(dueAt *time.Time, now time.Time, tzOffsetMinutes int) Bucket {
	if dueAt == nil {
		return New
	}
	start := StartOfUserDay(tzOffsetMinutes, now)
	end := EndOfUserDay(tzOffsetMinutes, now)
	switch {
	case dueAt.Before(start):
		return Overdue
	case !dueAt.After(end):
		return DueToday
	case !dueAt.After(now.Add(day)):
		return Upcoming
	default:
		return Unscheduled
	}
}

// Tally classifies every due instant and counts the buckets.
func Tally(dues []*time.Time, now time.Time, tzOffsetMinutes int) DueStats {
	var stats DueStats
	for _, dueAt := range dues {
		switch Classify(dueAt, now, tzOffsetMinutes) {
		case New:
			stats.New++
		case Overdue:
			stats.Overdue++
		case DueToday:
			stats.DueToday++
		case Upcoming:
			stats.Upcoming++
		}
	}
	return stats
}

// ReviewedToday counts review instants falling inside the user's current day.
func ReviewedToday(reviewedAt []time.Time, now time.Time, tzOffsetMinutes int) int {
	start := StartOfUserDay(tzOffsetMinutes, now)
	end := EndOfUserDay(tzOffsetMinutes, now)
	n := 0
	for _, t := range reviewedAt {
		if !t.Before(start) && !t.After(end) {
			n++
		}
	}
	return n
}
