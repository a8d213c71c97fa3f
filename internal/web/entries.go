package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/conorfennell/notedeck/internal/domain"
	"github.com/conorfennell/notedeck/internal/review"
	"github.com/conorfennell/notedeck/internal/storage"
)

type entryResponse struct {
	Entry   domain.Entry         `json:"entry"`
	State   *review.State        `json:"state"`
	History []domain.ReviewEvent `json:"history"`
}

type reviewRequest struct {
	Rating   review.Rating `json:"rating" validate:"required"`
	TZOffset *int          `json:"tz_offset" validate:"omitempty,min=-720,max=840"`
}

// reviewResponse is the new state plus its due day in the user's calendar.
type reviewResponse struct {
	review.State
	DueDate string `json:"due_date"`
}

// handleListEntries lists entries, optionally filtered by ?tag=.
func (s *Server) handleListEntries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.store.ListEntries(r.Context(), r.URL.Query().Get("tag"))
		if err != nil {
			internalError(w, "Failed to list entries", err)
			return
		}
		if entries == nil {
			entries = []domain.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// handleGetEntry returns an entry with its state and review history.
func (s *Server) handleGetEntry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		entry, err := s.store.FindEntryByID(r.Context(), id)
		if err != nil {
			internalError(w, "Failed to find entry", err)
			return
		}
		if entry == nil {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}

		state, err := s.store.FindReviewState(r.Context(), id)
		if err != nil {
			internalError(w, "Failed to find review state", err)
			return
		}
		history, err := s.store.ReviewHistory(r.Context(), id)
		if err != nil {
			internalError(w, "Failed to get review history", err)
			return
		}
		if history == nil {
			history = []domain.ReviewEvent{}
		}
		writeJSON(w, http.StatusOK, entryResponse{Entry: *entry, State: state, History: history})
	}
}

// handlePostReview rates an entry and returns its new state.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if err := s.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "rating is required and tz_offset must be between -720 and 840")
			return
		}
		offset := s.review.DefaultTZOffset
		if req.TZOffset != nil {
			offset = *req.TZOffset
		}

		id := r.PathValue("id")
		now := s.now()
		state, err := s.store.ApplyReview(r.Context(), id, req.Rating, now)
		switch {
		case errors.Is(err, storage.ErrEntryNotFound):
			writeError(w, http.StatusNotFound, "entry not found")
			return
		case errors.Is(err, review.ErrInvalidRating):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			internalError(w, "Failed to apply review", err)
			return
		}
		writeJSON(w, http.StatusOK, reviewResponse{State: *state, DueDate: review.LocalDate(state.DueAt, offset)})
	}
}
