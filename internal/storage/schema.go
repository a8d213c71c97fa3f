package storage

// The schema is shared by sqlite and postgres, so it sticks to portable types.
// Every timestamp is written in UTC.
const schema = `
-- Origins of imported entries: a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned TIMESTAMP
);

-- Notes eligible for review. Imported entries are keyed by content hash.
CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    citation TEXT NOT NULL DEFAULT '',
    source_id TEXT REFERENCES sources(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_id);

CREATE TABLE IF NOT EXISTS entry_tags (
    entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    tag TEXT NOT NULL,
    PRIMARY KEY (entry_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags(tag);

-- Current scheduling state; one row per reviewed entry, replaced on every review.
CREATE TABLE IF NOT EXISTS review_states (
    entry_id TEXT PRIMARY KEY REFERENCES entries(id) ON DELETE CASCADE,
    due_at TIMESTAMP NOT NULL,
    last_reviewed_at TIMESTAMP,
    interval_days INTEGER NOT NULL,
    ease DOUBLE PRECISION NOT NULL,
    reps INTEGER NOT NULL,
    lapses INTEGER NOT NULL
);

-- Append-only log of ratings.
CREATE TABLE IF NOT EXISTS review_events (
    id TEXT PRIMARY KEY,
    entry_id TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    rating INTEGER NOT NULL,
    reviewed_at TIMESTAMP NOT NULL,
    interval_days INTEGER NOT NULL,
    ease DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_review_events_reviewed_at ON review_events(reviewed_at);
CREATE INDEX IF NOT EXISTS idx_review_events_entry ON review_events(entry_id);
`
