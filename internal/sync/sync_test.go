package sync

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/notedeck/internal/review"
	"github.com/conorfennell/notedeck/internal/storage"
)

var _ Store = (*storage.DB)(nil)

func setup(t *testing.T) (*storage.DB, string, string) {
	t.Helper()
	db, err := storage.Open(storage.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	id, err := db.InsertSource(context.Background(), dir, storage.SourceLocal)
	if err != nil {
		t.Fatalf("Failed to insert source: %v", err)
	}
	return db, dir, id
}

func writeNotes(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestRunReconcilesLocalSource(t *testing.T) {
	ctx := context.Background()
	db, dir, sourceID := setup(t)

	notes := filepath.Join(dir, "go.md")
	writeNotes(t, notes, "T: Channels\nB: Typed pipes\nTags: go\n---\nT: Select\nB: Waits on channels\n")
	writeNotes(t, filepath.Join(dir, "nested", "db.md"), "T: Index\nB: Speeds up lookups\n")
	writeNotes(t, filepath.Join(dir, "readme.txt"), "T: Ignored\n")

	syncer := NewSyncer(db, t.TempDir())
	fixed := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	syncer.now = func() time.Time { return fixed }

	report, err := syncer.Run(ctx)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Sources != 1 || report.Inserted != 3 || report.Deleted != 0 || report.Errors != 0 {
		t.Errorf("Expected 1 source and 3 inserts, but got %+v", report)
	}

	entries, err := db.GetEntriesBySourceID(ctx, sourceID)
	if err != nil || len(entries) != 3 {
		t.Fatalf("Expected 3 stored entries, but got %d (%v)", len(entries), err)
	}
	tagged, _ := db.ListEntries(ctx, "go")
	if len(tagged) != 1 || tagged[0].Title != "Channels" {
		t.Errorf("Expected the tagged entry Channels, but got %+v", tagged)
	}
	if !tagged[0].CreatedAt.Equal(fixed) {
		t.Errorf("Expected created at %s, but got %s", fixed, tagged[0].CreatedAt)
	}

	t.Run("rerun is idempotent", func(t *testing.T) {
		report, err := syncer.Run(ctx)
		if err != nil {
			t.Fatalf("Run() returned an unexpected error: %v", err)
		}
		if report.Inserted != 0 || report.Deleted != 0 {
			t.Errorf("Expected no changes, but got %+v", report)
		}
	})

	t.Run("removed entries are deleted", func(t *testing.T) {
		writeNotes(t, notes, "T: Channels\nB: Typed pipes\nTags: go\n")
		report, err := syncer.Run(ctx)
		if err != nil {
			t.Fatalf("Run() returned an unexpected error: %v", err)
		}
		if report.Deleted != 1 {
			t.Errorf("Expected 1 deletion, but got %+v", report)
		}
		entries, _ := db.GetEntriesBySourceID(ctx, sourceID)
		if len(entries) != 2 {
			t.Errorf("Expected 2 remaining entries, but got %d", len(entries))
		}
	})

	sources, _ := db.GetAllSources(ctx)
	if at := sources[0].LastScannedAt(); at == nil || !at.Equal(fixed) {
		t.Errorf("Expected the source to be stamped at %s, but got %v", fixed, at)
	}
}

func TestRunKeepsEntriesOfUnparsableFiles(t *testing.T) {
	ctx := context.Background()
	db, dir, sourceID := setup(t)

	notes := filepath.Join(dir, "go.md")
	writeNotes(t, notes, "T: Channels\nB: Typed pipes\n")

	syncer := NewSyncer(db, t.TempDir())
	if _, err := syncer.Run(ctx); err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	entries, _ := db.GetEntriesBySourceID(ctx, sourceID)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 stored entry, but got %d", len(entries))
	}
	id := entries[0].ID
	if _, err := db.ApplyReview(ctx, id, review.Good, time.Now()); err != nil {
		t.Fatalf("ApplyReview() returned an unexpected error: %v", err)
	}

	// A line longer than the scanner's buffer makes the whole file unreadable.
	writeNotes(t, notes, "T: Channels\nB: Typed pipes\n---\nT: Huge\nB: "+strings.Repeat("x", 70000)+"\n")
	report, err := syncer.Run(ctx)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Errors != 1 || report.Deleted != 0 {
		t.Errorf("Expected 1 error and no deletions, but got %+v", report)
	}

	entry, err := db.FindEntryByID(ctx, id)
	if err != nil || entry == nil {
		t.Fatalf("Expected entry %s to survive, but got %v (%v)", id, entry, err)
	}
	state, err := db.FindReviewState(ctx, id)
	if err != nil || state == nil || state.Reps != 1 {
		t.Errorf("Expected the review state to survive, but got %+v (%v)", state, err)
	}
	history, _ := db.ReviewHistory(ctx, id)
	if len(history) != 1 {
		t.Errorf("Expected 1 review event, but got %d", len(history))
	}

	t.Run("cleanup resumes once the file parses", func(t *testing.T) {
		writeNotes(t, notes, "T: Select\nB: Waits on channels\n")
		report, err := syncer.Run(ctx)
		if err != nil {
			t.Fatalf("Run() returned an unexpected error: %v", err)
		}
		if report.Errors != 0 || report.Inserted != 1 || report.Deleted != 1 {
			t.Errorf("Expected 1 insert and 1 deletion, but got %+v", report)
		}
	})
}

func TestRunCountsBrokenSources(t *testing.T) {
	ctx := context.Background()
	db, _, _ := setup(t)
	if _, err := db.InsertSource(ctx, filepath.Join(t.TempDir(), "missing"), storage.SourceLocal); err != nil {
		t.Fatalf("Failed to insert source: %v", err)
	}
	if _, err := db.InsertSource(ctx, "not a url", storage.SourceGit); err != nil {
		t.Fatalf("Failed to insert source: %v", err)
	}

	report, err := NewSyncer(db, t.TempDir()).Run(ctx)
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if report.Sources != 3 || report.Errors != 2 {
		t.Errorf("Expected 3 sources with 2 errors, but got %+v", report)
	}
}

func TestSchedule(t *testing.T) {
	db, dir, sourceID := setup(t)
	writeNotes(t, filepath.Join(dir, "a.md"), "T: Scheduled\n")

	syncer := NewSyncer(db, t.TempDir())

	stop, err := syncer.Schedule(context.Background(), 0)
	if err != nil {
		t.Fatalf("Schedule() returned an unexpected error: %v", err)
	}
	stop()

	stop, err = syncer.Schedule(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("Schedule() returned an unexpected error: %v", err)
	}
	defer stop()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := db.GetEntriesBySourceID(context.Background(), sourceID)
		if err == nil && len(entries) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("Expected the scheduled sync to run immediately")
}
