package review

import "time"

// Offsets outside UTC-12..UTC+14 are not real-world wall clocks.
const (
	MinOffsetMinutes = -12 * 60
	MaxOffsetMinutes = 14 * 60
)

const dateLayout = "2006-01-02"

// ValidOffset reports whether tzOffsetMinutes is a real-world UTC offset.
// The offset is reported by the client and is not verified against a
// zone name.
func ValidOffset(tzOffsetMinutes int) bool {
	return tzOffsetMinutes >= MinOffsetMinutes && tzOffsetMinutes <= MaxOffsetMinutes
}

func offset(tzOffsetMinutes int) time.Duration {
	return time.Duration(tzOffsetMinutes) * time.Minute
}

// localMidnight returns the user-local midnight of ref, expressed as a UTC
// wall clock. Only its date is meaningful to callers.
func localMidnight(tzOffsetMinutes int, ref time.Time) time.Time {
	y, m, d := ref.UTC().Add(offset(tzOffsetMinutes)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfUserDay returns the absolute instant of local midnight, on the day
// containing ref, for a user whose wall clock is UTC+tzOffsetMinutes.
func StartOfUserDay(tzOffsetMinutes int, ref time.Time) time.Time {
	return localMidnight(tzOffsetMinutes, ref).Add(-offset(tzOffsetMinutes))
}

// EndOfUserDay returns the last millisecond of the user's day containing ref.
// It is an inclusive bound.
func EndOfUserDay(tzOffsetMinutes int, ref time.Time) time.Time {
	return StartOfUserDay(tzOffsetMinutes, ref).Add(day - time.Millisecond)
}

// LocalDate formats t as the user's calendar date, YYYY-MM-DD.
func LocalDate(t time.Time, tzOffsetMinutes int) string {
	return t.UTC().Add(offset(tzOffsetMinutes)).Format(dateLayout)
}
