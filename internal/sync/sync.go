package sync

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conorfennell/notedeck/internal/domain"
	"github.com/conorfennell/notedeck/internal/gitsource"
	"github.com/conorfennell/notedeck/internal/knol"
	"github.com/conorfennell/notedeck/internal/parser"
	"github.com/conorfennell/notedeck/internal/storage"
	"github.com/go-co-op/gocron"
)

// Store is the persistence a Syncer reconciles against.
type Store interface {
	GetAllSources(ctx context.Context) ([]storage.Source, error)
	FindEntryByID(ctx context.Context, id string) (*domain.Entry, error)
	InsertEntry(ctx context.Context, entry domain.Entry) error
	GetEntriesBySourceID(ctx context.Context, sourceID string) ([]domain.Entry, error)
	DeleteEntryByID(ctx context.Context, id string) error
	UpdateSourceLastScanned(ctx context.Context, sourceID string, at time.Time) error
}

// Report summarizes one sync run.
type Report struct {
	Sources  int `json:"sources"`
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
	Errors   int `json:"errors"`
}

// Syncer imports entries from every configured source.
type Syncer struct {
	store    Store
	reposDir string
	now      func() time.Time
}

// NewSyncer returns a Syncer that clones git sources under reposDir.
func NewSyncer(store Store, reposDir string) *Syncer {
	return &Syncer{store: store, reposDir: reposDir, now: time.Now}
}

// Run reconciles every source. A failing source is logged and counted but
// does not stop the others.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	var report Report
	slog.Info("Starting sync of all sources")
	sources, err := s.store.GetAllSources(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured")
		return report, nil
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		slog.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)
		report.Sources++

		dir := source.Path
		if source.Type == storage.SourceGit {
			dir, err = s.checkout(ctx, source.Path)
			if err != nil {
				slog.Error("Failed to sync git source", "url", source.Path, "error", err)
				report.Errors++
				continue
			}
		}

		s.reconcile(ctx, source.ID, dir, &report)
	}

	slog.Info("Sync complete",
		"sources", report.Sources,
		"inserted", report.Inserted,
		"deleted", report.Deleted,
		"errors", report.Errors,
	)
	return report, nil
}

func (s *Syncer) checkout(ctx context.Context, repoURL string) (string, error) {
	localPath, err := gitsource.LocalPath(s.reposDir, repoURL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create repos directory: %w", err)
	}
	if err := gitsource.Sync(ctx, repoURL, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

// reconcile inserts entries found under dir that are not stored yet and
// deletes stored entries of the source that no longer appear.
func (s *Syncer) reconcile(ctx context.Context, sourceID, dir string, report *Report) {
	found := make(map[string]bool)
	var unreadable []string
	sid := sourceID

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		entries, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			slog.Warn("Failed to parse file", "path", path, "error", parseErr)
			report.Errors++
			unreadable = append(unreadable, path)
		}
		for _, entry := range entries {
			entry.ID = knol.Hash(entry)
			found[entry.ID] = true

			existing, err := s.store.FindEntryByID(ctx, entry.ID)
			if err != nil {
				slog.Warn("Failed to look up entry", "entry_id", entry.ID, "error", err)
				report.Errors++
				continue
			}
			if existing != nil {
				continue
			}
			entry.SourceID = &sid
			entry.CreatedAt = s.now()
			if err := s.store.InsertEntry(ctx, entry); err != nil {
				slog.Warn("Failed to insert entry", "entry_id", entry.ID, "error", err)
				report.Errors++
				continue
			}
			slog.Debug("Inserted entry", "entry_id", entry.ID, "path", path)
			report.Inserted++
		}
		return nil
	})
	if walkErr != nil {
		slog.Error("Failed to walk source", "path", dir, "error", walkErr)
		report.Errors++
		return
	}

	// Entries of a file that failed to parse are unknown, not removed.
	if len(unreadable) > 0 {
		slog.Warn("Skipping orphan cleanup", "source_id", sourceID, "unreadable_files", unreadable)
		s.stampScanned(ctx, sourceID)
		return
	}

	stored, err := s.store.GetEntriesBySourceID(ctx, sourceID)
	if err != nil {
		slog.Error("Failed to get entries for source", "source_id", sourceID, "error", err)
		report.Errors++
		return
	}
	for _, entry := range stored {
		if found[entry.ID] {
			continue
		}
		slog.Info("Deleting orphaned entry", "entry_id", entry.ID)
		if err := s.store.DeleteEntryByID(ctx, entry.ID); err != nil {
			slog.Warn("Failed to delete orphaned entry", "entry_id", entry.ID, "error", err)
			report.Errors++
			continue
		}
		report.Deleted++
	}

	s.stampScanned(ctx, sourceID)
}

func (s *Syncer) stampScanned(ctx context.Context, sourceID string) {
	if err := s.store.UpdateSourceLastScanned(ctx, sourceID, s.now()); err != nil {
		slog.Warn("Failed to update last scanned", "source_id", sourceID, "error", err)
	}
}

// Schedule runs Run now and then every interval until the returned stop
// function is called. A non-positive interval schedules nothing.
func (s *Syncer) Schedule(ctx context.Context, interval time.Duration) (stop func(), err error) {
	if interval <= 0 {
		return func() {}, nil
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	_, err = scheduler.Every(interval).Do(func() {
		if _, err := s.Run(ctx); err != nil {
			slog.Error("Scheduled sync failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule sync: %w", err)
	}
	scheduler.StartAsync()
	return scheduler.Stop, nil
}
