package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
		wantErr  bool
	}{
		{"https://github.com/alice/notes.git", filepath.Join("repos", "github.com", "alice", "notes"), false},
		{"http://example.com/team/deck", filepath.Join("repos", "example.com", "team", "deck"), false},
		{"git@github.com:alice/notes.git", filepath.Join("repos", "github.com", "alice", "notes"), false},
		{"not a url", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			got, err := LocalPath("repos", tc.url)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected an error, but got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("LocalPath() returned an unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %s, but got %s", tc.expected, got)
			}
		})
	}
}

func TestIsGitURL(t *testing.T) {
	for _, path := range []string{"https://github.com/a/b", "git@github.com:a/b.git", "/srv/notes.git"} {
		if !IsGitURL(path) {
			t.Errorf("Expected %s to be a git URL", path)
		}
	}
	for _, path := range []string{"/home/me/notes", "notes", "./deck"} {
		if IsGitURL(path) {
			t.Errorf("Expected %s to be a local path", path)
		}
	}
}

func TestSyncClonesThenPulls(t *testing.T) {
	upstream := t.TempDir()
	repo, err := git.PlainInit(upstream, false)
	if err != nil {
		t.Fatalf("Failed to init upstream: %v", err)
	}
	commit := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(upstream, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		wt, err := repo.Worktree()
		if err != nil {
			t.Fatalf("Failed to open worktree: %v", err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		_, err = wt.Commit("add "+name, &git.CommitOptions{
			Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
		})
		if err != nil {
			t.Fatalf("Failed to commit %s: %v", name, err)
		}
	}
	commit("one.md", "T: One\n")

	clone := filepath.Join(t.TempDir(), "clone")
	ctx := context.Background()
	if err := Sync(ctx, upstream, clone); err != nil {
		t.Fatalf("Sync() clone returned an unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(clone, "one.md")); err != nil {
		t.Fatalf("Expected one.md in the clone: %v", err)
	}

	if err := Sync(ctx, upstream, clone); err != nil {
		t.Fatalf("Sync() on an up-to-date clone returned an unexpected error: %v", err)
	}

	commit("two.md", "T: Two\n")
	if err := Sync(ctx, upstream, clone); err != nil {
		t.Fatalf("Sync() pull returned an unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(clone, "two.md")); err != nil {
		t.Errorf("Expected two.md after pulling: %v", err)
	}
}
