package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/conorfennell/notedeck/internal/config"
	"github.com/conorfennell/notedeck/internal/domain"
	"github.com/conorfennell/notedeck/internal/review"
	"github.com/conorfennell/notedeck/internal/storage"
	"github.com/conorfennell/notedeck/internal/sync"
	"github.com/go-playground/validator/v10"
)

// Store is the persistence the HTTP handlers need.
type Store interface {
	ListEntries(ctx context.Context, tag string) ([]domain.Entry, error)
	FindEntryByID(ctx context.Context, id string) (*domain.Entry, error)
	FindReviewState(ctx context.Context, entryID string) (*review.State, error)
	ReviewHistory(ctx context.Context, entryID string) ([]domain.ReviewEvent, error)
	ApplyReview(ctx context.Context, entryID string, rating review.Rating, now time.Time) (*review.State, error)
	ListSchedule(ctx context.Context) ([]storage.Scheduled, error)
	ReviewStats(ctx context.Context, now time.Time, tzOffsetMinutes, horizonDays int) (*storage.Stats, error)
	GetAllSources(ctx context.Context) ([]storage.Source, error)
	FindSourceByPath(ctx context.Context, path string) (*storage.Source, error)
	InsertSource(ctx context.Context, path, sourceType string) (string, error)
	DeleteSource(ctx context.Context, id string) (bool, error)
}

// Syncer runs a sync of every source.
type Syncer interface {
	Run(ctx context.Context) (sync.Report, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	store    Store
	syncer   Syncer
	router   *http.ServeMux
	validate *validator.Validate
	review   config.Review
	now      func() time.Time
}

// NewServer creates and configures a new server.
func NewServer(store Store, syncer Syncer, cfg config.Review) *Server {
	s := &Server{
		store:    store,
		syncer:   syncer,
		router:   http.NewServeMux(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		review:   cfg,
		now:      time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /entries", s.handleListEntries())
	s.router.HandleFunc("GET /entries/{id}", s.handleGetEntry())
	s.router.HandleFunc("POST /entries/{id}/review", s.handlePostReview())

	s.router.HandleFunc("GET /review/next", s.handleGetNextReview())
	s.router.HandleFunc("GET /review/stats", s.handleGetStats())

	s.router.HandleFunc("GET /sources", s.handleListSources())
	s.router.HandleFunc("POST /sources", s.handlePostSource())
	s.router.HandleFunc("DELETE /sources/{id}", s.handleDeleteSource())
	s.router.HandleFunc("POST /sync", s.handlePostSync())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// tzOffset reads the tz_offset query parameter, falling back to the
// configured default. The offset is trusted as reported by the client.
func (s *Server) tzOffset(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("tz_offset")
	if raw == "" {
		return s.review.DefaultTZOffset, nil
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("tz_offset must be an integer number of minutes")
	}
	if err := s.validate.Var(offset, "min=-720,max=840"); err != nil {
		return 0, errors.New("tz_offset must be between -720 and 840")
	}
	return offset, nil
}
