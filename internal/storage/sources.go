package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	SourceLocal = "local"
	SourceGit   = "git"
)

// Source is where entries are imported from: a local path or a git URL.
type Source struct {
	ID          string       `json:"id" db:"id"`
	Path        string       `json:"path" db:"path"`
	Type        string       `json:"type" db:"type"`
	LastScanned sql.NullTime `json:"-" db:"last_scanned"`
}

// InsertSource stores a new source and returns its ID.
func (db *DB) InsertSource(ctx context.Context, path, sourceType string) (string, error) {
	id := ulid.Make().String()
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		INSERT INTO sources (id, path, type)
		VALUES (?, ?, ?)
	`), id, path, sourceType)
	if err != nil {
		return "", fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. It returns nil, nil when
// no source has that path.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (*Source, error) {
	var s Source
	err := db.conn.GetContext(ctx, &s, db.conn.Rebind(`
		SELECT id, path, type, last_scanned FROM sources WHERE path = ?
	`), path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves every stored source.
func (db *DB) GetAllSources(ctx context.Context) ([]Source, error) {
	var sources []Source
	err := db.conn.SelectContext(ctx, &sources, `
		SELECT id, path, type, last_scanned FROM sources ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	return sources, nil
}

// UpdateSourceLastScanned stamps the source as scanned at the given instant.
func (db *DB) UpdateSourceLastScanned(ctx context.Context, sourceID string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`
		UPDATE sources SET last_scanned = ? WHERE id = ?
	`), at.UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source %s: %w", sourceID, err)
	}
	return nil
}

// DeleteSource removes a source and every entry imported from it. It reports
// whether a source was deleted.
func (db *DB) DeleteSource(ctx context.Context, id string) (bool, error) {
	res, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM sources WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete source %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted sources: %w", err)
	}
	return n > 0, nil
}

// LastScannedAt returns the last scan instant, or nil if never scanned.
func (s Source) LastScannedAt() *time.Time {
	if !s.LastScanned.Valid {
		return nil
	}
	t := s.LastScanned.Time
	return &t
}
