package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/notedeck/internal/domain"
	"github.com/conorfennell/notedeck/internal/review"
	"github.com/oklog/ulid/v2"
)

// stateRow mirrors review_states. IntervalDays is scanned as a float so a
// corrupt value reaches the scheduler unchanged.
type stateRow struct {
	DueAt          time.Time    `db:"due_at"`
	LastReviewedAt sql.NullTime `db:"last_reviewed_at"`
	IntervalDays   float64      `db:"interval_days"`
	Ease           float64      `db:"ease"`
	Reps           int          `db:"reps"`
	Lapses         int          `db:"lapses"`
}

func (r stateRow) input() review.Input {
	in := review.Input{
		DueAt:        r.DueAt,
		IntervalDays: r.IntervalDays,
		Ease:         r.Ease,
		Reps:         r.Reps,
		Lapses:       r.Lapses,
	}
	if r.LastReviewedAt.Valid {
		t := r.LastReviewedAt.Time
		in.LastReviewedAt = &t
	}
	return in
}

func (r stateRow) state() review.State {
	in := r.input()
	return review.State{
		DueAt:          in.DueAt,
		LastReviewedAt: in.LastReviewedAt,
		IntervalDays:   int(in.IntervalDays),
		Ease:           in.Ease,
		Reps:           in.Reps,
		Lapses:         in.Lapses,
	}
}

const stateColumns = `due_at, last_reviewed_at, interval_days, ease, reps, lapses`

// Scheduled pairs an entry with its due instant; DueAt is nil for entries
// that have never been reviewed.
type Scheduled struct {
	EntryID   string     `json:"entry_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	DueAt     *time.Time `json:"due_at"`
}

// FindReviewState returns the entry's current state, or nil, nil before its
// first review.
func (db *DB) FindReviewState(ctx context.Context, entryID string) (*review.State, error) {
	var row stateRow
	err := db.conn.GetContext(ctx, &row, db.conn.Rebind(`
		SELECT `+stateColumns+` FROM review_states WHERE entry_id = ?
	`), entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find review state for entry %s: %w", entryID, err)
	}
	st := row.state()
	return &st, nil
}

// ApplyReview rates an entry at now. The prior state is read, the next state
// computed and written, and the review event appended, all in one
// transaction. An entry without a state starts from the default state due at
// its creation.
func (db *DB) ApplyReview(ctx context.Context, entryID string, rating review.Rating, now time.Time) (*review.State, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", review.ErrInvalidRating, int(rating))
	}
	now = now.UTC()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin review of entry %s: %w", entryID, err)
	}
	defer tx.Rollback()

	var createdAt time.Time
	err = tx.GetContext(ctx, &createdAt, tx.Rebind(`
		SELECT created_at FROM entries WHERE id = ?`+db.lockClause()), entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to load entry %s: %w", entryID, err)
	}

	prev := review.NewState(createdAt).Input()
	var row stateRow
	err = tx.GetContext(ctx, &row, tx.Rebind(`
		SELECT `+stateColumns+` FROM review_states WHERE entry_id = ?
	`), entryID)
	switch {
	case err == nil:
		prev = row.input()
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to load review state for entry %s: %w", entryID, err)
	}

	next, err := review.Next(prev, rating, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO review_states (entry_id, due_at, last_reviewed_at, interval_days, ease, reps, lapses)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (entry_id) DO UPDATE SET
			due_at = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			interval_days = excluded.interval_days,
			ease = excluded.ease,
			reps = excluded.reps,
			lapses = excluded.lapses
	`),
		entryID,
		next.DueAt,
		now,
		next.IntervalDays,
		next.Ease,
		next.Reps,
		next.Lapses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save review state for entry %s: %w", entryID, err)
	}

	eventID := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO review_events (id, entry_id, rating, reviewed_at, interval_days, ease)
		VALUES (?, ?, ?, ?, ?, ?)
	`), eventID, entryID, int(rating), now, next.IntervalDays, next.Ease)
	if err != nil {
		return nil, fmt.Errorf("failed to log review of entry %s: %w", entryID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review of entry %s: %w", entryID, err)
	}
	return &next, nil
}

// ListSchedule returns every entry with its due instant.
func (db *DB) ListSchedule(ctx context.Context) ([]Scheduled, error) {
	var rows []struct {
		EntryID   string       `db:"entry_id"`
		Title     string       `db:"title"`
		CreatedAt time.Time    `db:"created_at"`
		DueAt     sql.NullTime `db:"due_at"`
	}
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT e.id AS entry_id, e.title, e.created_at, s.due_at
		FROM entries e
		LEFT JOIN review_states s ON s.entry_id = e.id
		ORDER BY e.created_at, e.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}

	schedule := make([]Scheduled, len(rows))
	for i, row := range rows {
		schedule[i] = Scheduled{EntryID: row.EntryID, Title: row.Title, CreatedAt: row.CreatedAt}
		if row.DueAt.Valid {
			due := row.DueAt.Time
			schedule[i].DueAt = &due
		}
	}
	return schedule, nil
}

// ListReviewTimes returns the instants of every review at or after since,
// oldest first.
func (db *DB) ListReviewTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := db.conn.SelectContext(ctx, &times, db.conn.Rebind(`
		SELECT reviewed_at FROM review_events WHERE reviewed_at >= ? ORDER BY reviewed_at
	`), since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list review times: %w", err)
	}
	return times, nil
}

// ReviewHistory returns an entry's review events, oldest first.
func (db *DB) ReviewHistory(ctx context.Context, entryID string) ([]domain.ReviewEvent, error) {
	var events []domain.ReviewEvent
	err := db.conn.SelectContext(ctx, &events, db.conn.Rebind(`
		SELECT id, entry_id, rating, reviewed_at, interval_days, ease
		FROM review_events WHERE entry_id = ? ORDER BY reviewed_at, id
	`), entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review history for entry %s: %w", entryID, err)
	}
	return events, nil
}
