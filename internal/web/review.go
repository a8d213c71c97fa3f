package web

import (
	"net/http"
	"time"

	"github.com/conorfennell/notedeck/internal/review"
	"github.com/conorfennell/notedeck/internal/storage"
)

type nextResponse struct {
	EntryID string     `json:"entry_id"`
	Title   string     `json:"title"`
	Bucket  string     `json:"bucket"`
	DueAt   *time.Time `json:"due_at"`
}

// handleGetNextReview returns the entry to study next: the earliest one due
// by the end of the user's day, else the oldest never-reviewed entry.
func (s *Server) handleGetNextReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tz, err := s.tzOffset(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		schedule, err := s.store.ListSchedule(r.Context())
		if err != nil {
			internalError(w, "Failed to list schedule", err)
			return
		}

		now := s.now()
		next := pickNext(schedule, now, tz)
		if next == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, nextResponse{
			EntryID: next.EntryID,
			Title:   next.Title,
			Bucket:  review.Classify(next.DueAt, now, tz).String(),
			DueAt:   next.DueAt,
		})
	}
}

func pickNext(schedule []storage.Scheduled, now time.Time, tz int) *storage.Scheduled {
	end := review.EndOfUserDay(tz, now)
	var due, fresh *storage.Scheduled
	for i := range schedule {
		item := &schedule[i]
		switch {
		case item.DueAt == nil:
			if fresh == nil {
				fresh = item
			}
		case !item.DueAt.After(end):
			if due == nil || item.DueAt.Before(*due.DueAt) {
				due = item
			}
		}
	}
	if due != nil {
		return due
	}
	return fresh
}

// handleGetStats returns the due tally, the current streak and today's
// review count for the user's timezone.
func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tz, err := s.tzOffset(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		stats, err := s.store.ReviewStats(r.Context(), s.now(), tz, s.review.StreakHorizonDays)
		if err != nil {
			internalError(w, "Failed to compute stats", err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
