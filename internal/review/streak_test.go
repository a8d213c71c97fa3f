package review

import (
	"testing"
	"time"
)

func TestComputeStreak(t *testing.T) {
	now := mustTime(t, "2024-01-15T10:30:00Z")
	daysAgo := func(n int, hour int) time.Time {
		return time.Date(2024, 1, 15-n, hour, 0, 0, 0, time.UTC)
	}

	testCases := []struct {
		name     string
		events   []time.Time
		expected int
	}{
		{"no reviews", nil, 0},
		{"today and two days before", []time.Time{daysAgo(0, 9), daysAgo(1, 9), daysAgo(2, 9)}, 3},
		{"open streak from yesterday", []time.Time{daysAgo(1, 9), daysAgo(2, 9)}, 2},
		{"gap yesterday", []time.Time{daysAgo(0, 9), daysAgo(2, 9), daysAgo(3, 9)}, 1},
		{"last review two days ago", []time.Time{daysAgo(2, 9), daysAgo(3, 9)}, 0},
		{"several reviews a day", []time.Time{daysAgo(0, 1), daysAgo(0, 8), daysAgo(1, 5), daysAgo(1, 22)}, 2},
		{"unordered input", []time.Time{daysAgo(2, 9), daysAgo(0, 9), daysAgo(1, 9)}, 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeStreak(tc.events, 0, now); got != tc.expected {
				t.Errorf("Expected streak %d, but got %d", tc.expected, got)
			}
		})
	}
}

func TestComputeStreakUsesLocalDays(t *testing.T) {
	// 10:30 UTC is 05:30 on the 15th for UTC-5.
	now := mustTime(t, "2024-01-15T10:30:00Z")
	events := []time.Time{
		mustTime(t, "2024-01-15T02:00:00Z"), // 14th, 21:00 local
		mustTime(t, "2024-01-14T03:00:00Z"), // 13th, 22:00 local
	}
	if got := ComputeStreak(events, -300, now); got != 2 {
		t.Errorf("Expected streak 2 at UTC-5, but got %d", got)
	}
	// In UTC these fall on the 15th and the 14th.
	if got := ComputeStreak(events, 0, now); got != 2 {
		t.Errorf("Expected streak 2 at UTC, but got %d", got)
	}
	// At UTC+9 the first review is 11:00 on the 15th and nothing precedes it.
	if got := ComputeStreak(events[:1], 540, now); got != 1 {
		t.Errorf("Expected streak 1 at UTC+9, but got %d", got)
	}
}

func TestStreakHorizon(t *testing.T) {
	now := mustTime(t, "2024-12-31T12:00:00Z")
	var events []time.Time
	for i := 0; i < 400; i++ {
		events = append(events, now.AddDate(0, 0, -i))
	}
	if got := ComputeStreak(events, 0, now); got != DefaultStreakHorizon {
		t.Errorf("Expected streak capped at %d, but got %d", DefaultStreakHorizon, got)
	}
	if got := StreakWithin(events, 0, now, 1000); got != 400 {
		t.Errorf("Expected streak 400 with a wider horizon, but got %d", got)
	}
}
