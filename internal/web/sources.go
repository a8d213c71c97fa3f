package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/conorfennell/notedeck/internal/gitsource"
	"github.com/conorfennell/notedeck/internal/storage"
)

type sourceResponse struct {
	ID          string     `json:"id"`
	Path        string     `json:"path"`
	Type        string     `json:"type"`
	LastScanned *time.Time `json:"last_scanned"`
}

type sourceRequest struct {
	Path string `json:"path" validate:"required"`
}

func (s *Server) writeSources(w http.ResponseWriter, r *http.Request, status int) {
	sources, err := s.store.GetAllSources(r.Context())
	if err != nil {
		internalError(w, "Failed to get sources", err)
		return
	}
	resp := make([]sourceResponse, len(sources))
	for i, src := range sources {
		resp[i] = sourceResponse{ID: src.ID, Path: src.Path, Type: src.Type, LastScanned: src.LastScannedAt()}
	}
	writeJSON(w, status, resp)
}

// handleListSources lists every source.
func (s *Server) handleListSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeSources(w, r, http.StatusOK)
	}
}

// handlePostSource adds a local directory or git URL and returns the updated list.
func (s *Server) handlePostSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		req.Path = strings.TrimSpace(req.Path)
		if err := s.validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, "path cannot be empty")
			return
		}

		existing, err := s.store.FindSourceByPath(r.Context(), req.Path)
		if err != nil {
			internalError(w, "Failed to look up source", err)
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "source already exists")
			return
		}

		sourceType := storage.SourceLocal
		if gitsource.IsGitURL(req.Path) {
			sourceType = storage.SourceGit
		}
		if _, err := s.store.InsertSource(r.Context(), req.Path, sourceType); err != nil {
			internalError(w, "Failed to insert source", err)
			return
		}
		s.writeSources(w, r, http.StatusCreated)
	}
}

// handleDeleteSource deletes a source with its entries and returns the updated list.
func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := s.store.DeleteSource(r.Context(), r.PathValue("id"))
		if err != nil {
			internalError(w, "Failed to delete source", err)
			return
		}
		if !deleted {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		s.writeSources(w, r, http.StatusOK)
	}
}

// handlePostSync runs a sync in the foreground and reports what changed.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.syncer.Run(r.Context())
		if err != nil {
			internalError(w, "Failed to sync", err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
