package review

import "time"

// DefaultStreakHorizon caps how far back ComputeStreak looks, in days.
const DefaultStreakHorizon = 365

// ComputeStreak counts consecutive user-local days, ending today or
// yesterday, that hold at least one review. The result never exceeds
// DefaultStreakHorizon.
func ComputeStreak(reviewedAt []time.Time, tzOffsetMinutes int, now time.Time) int {
	return StreakWithin(reviewedAt, tzOffsetMinutes, now, DefaultStreakHorizon)
}

// StreakWithin is ComputeStreak with an explicit horizon in days.
func StreakWithin(reviewedAt []time.Time, tzOffsetMinutes int, now time.Time, horizonDays int) int {
	days := make(map[string]struct{}, len(reviewedAt))
	for _, t := range reviewedAt {
		days[LocalDate(t, tzOffsetMinutes)] = struct{}{}
	}

	cursor := localMidnight(tzOffsetMinutes, now)
	// Today not being reviewed yet leaves yesterday's streak open.
	if _, ok := days[cursor.Format(dateLayout)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for streak < horizonDays {
		if _, ok := days[cursor.Format(dateLayout)]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
