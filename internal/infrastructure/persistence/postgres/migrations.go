// Package postgres implements durable persistence for the feed event
// collection.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE FEED EVENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create feed_events table
-- Version: 001

-- One row per activity event. Category-specific attributes (session, duel,
-- blitz, discovery) and the optional navigation link live in a JSONB column
-- so the schema does not change when a category gains a field.
CREATE TABLE IF NOT EXISTS feed_events (
    seq BIGSERIAL,
    id VARCHAR(64) PRIMARY KEY,
    category VARCHAR(20) NOT NULL,
    subject_id VARCHAR(64) NOT NULL,
    subject_name VARCHAR(100) NOT NULL,
    subject_avatar VARCHAR(32) NOT NULL DEFAULT '',
    narrative TEXT NOT NULL,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
    read BOOLEAN NOT NULL DEFAULT FALSE,
    topic_id VARCHAR(64) NOT NULL DEFAULT '',
    action VARCHAR(20) NOT NULL DEFAULT 'general',
    attrs JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_category CHECK (category IN
        ('peer', 'cohort', 'personal', 'session', 'duel', 'blitz', 'discovery')),
    CONSTRAINT valid_action CHECK (action IN
        ('completed', 'unlocked', 'joined', 'quiz', 'general'))
);

-- Snapshot reads walk newest-first within each category.
CREATE INDEX IF NOT EXISTS idx_feed_events_category_seq ON feed_events(category, seq DESC);
CREATE INDEX IF NOT EXISTS idx_feed_events_occurred_at ON feed_events(occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_feed_events_unread ON feed_events(read) WHERE read = FALSE;
CREATE INDEX IF NOT EXISTS idx_feed_events_topic ON feed_events(topic_id) WHERE topic_id != '';
`

const migration001Down = `
DROP TABLE IF EXISTS feed_events;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE PRODUCER KEYS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create producer_keys table
-- Version: 002

-- API keys for event producers (the services that publish activity events).
-- Only the bcrypt hash of a key is stored.
CREATE TABLE IF NOT EXISTS producer_keys (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    key_hash VARCHAR(100) NOT NULL,
    disabled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_producer_keys_active ON producer_keys(id) WHERE disabled = FALSE;
`

const migration002Down = `
DROP TABLE IF EXISTS producer_keys;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_feed_events",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_producer_keys",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
