package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/notedeck/internal/domain"
	"github.com/jmoiron/sqlx"
)

const entryColumns = `id, title, body, citation, source_id, created_at`

// InsertEntry stores a new entry with its tags. CreatedAt defaults to now.
func (db *DB) InsertEntry(ctx context.Context, entry domain.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert of entry %s: %w", entry.ID, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO entries (id, title, body, citation, source_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`),
		entry.ID,
		entry.Title,
		entry.Body,
		entry.Citation,
		entry.SourceID,
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", entry.ID, err)
	}

	for _, tag := range entry.Tags {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO entry_tags (entry_id, tag) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`), entry.ID, tag)
		if err != nil {
			return fmt.Errorf("failed to tag entry %s with %q: %w", entry.ID, tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry %s: %w", entry.ID, err)
	}
	return nil
}

// FindEntryByID retrieves an entry with its tags. It returns nil, nil when
// the entry does not exist.
func (db *DB) FindEntryByID(ctx context.Context, id string) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.conn.GetContext(ctx, &entry, db.conn.Rebind(`
		SELECT `+entryColumns+` FROM entries WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", id, err)
	}

	entries := []domain.Entry{entry}
	if err := db.attachTags(ctx, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// ListEntries returns every entry, newest first, optionally restricted to a tag.
func (db *DB) ListEntries(ctx context.Context, tag string) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries`
	var args []interface{}
	if tag != "" {
		query += ` WHERE id IN (SELECT entry_id FROM entry_tags WHERE tag = ?)`
		args = append(args, tag)
	}
	query += ` ORDER BY created_at DESC, id`

	var entries []domain.Entry
	if err := db.conn.SelectContext(ctx, &entries, db.conn.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	if err := db.attachTags(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetEntriesBySourceID retrieves every entry imported from a source.
func (db *DB) GetEntriesBySourceID(ctx context.Context, sourceID string) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.conn.SelectContext(ctx, &entries, db.conn.Rebind(`
		SELECT `+entryColumns+` FROM entries WHERE source_id = ?
	`), sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries for source %s: %w", sourceID, err)
	}
	return entries, nil
}

// DeleteEntryByID removes an entry together with its tags, state and history.
func (db *DB) DeleteEntryByID(ctx context.Context, id string) error {
	_, err := db.conn.ExecContext(ctx, db.conn.Rebind(`DELETE FROM entries WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return nil
}

func (db *DB) attachTags(ctx context.Context, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	byID := make(map[string]*domain.Entry, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
		byID[entries[i].ID] = &entries[i]
	}

	query, args, err := sqlx.In(`SELECT entry_id, tag FROM entry_tags WHERE entry_id IN (?) ORDER BY tag`, ids)
	if err != nil {
		return fmt.Errorf("failed to build tag query: %w", err)
	}

	var rows []struct {
		EntryID string `db:"entry_id"`
		Tag     string `db:"tag"`
	}
	if err := db.conn.SelectContext(ctx, &rows, db.conn.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	for _, row := range rows {
		if entry, ok := byID[row.EntryID]; ok {
			entry.Tags = append(entry.Tags, row.Tag)
		}
	}
	return nil
}
