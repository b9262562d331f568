package store

import (
	"context"

	"github.com/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE event (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	creator_id INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
	row_status TEXT NOT NULL CHECK (row_status IN ('NORMAL', 'ARCHIVED')) DEFAULT 'NORMAL',
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	start_ts BIGINT NOT NULL,
	end_ts BIGINT,
	all_day INTEGER NOT NULL DEFAULT 0,
	flight_number TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_event_creator_id ON event (creator_id);
CREATE INDEX idx_event_start_ts ON event (start_ts);
`

const postgresSchema = `
CREATE TABLE event (
	id SERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	creator_id INTEGER NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW()),
	row_status TEXT NOT NULL CHECK (row_status IN ('NORMAL', 'ARCHIVED')) DEFAULT 'NORMAL',
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	start_ts BIGINT NOT NULL,
	end_ts BIGINT,
	all_day BOOLEAN NOT NULL DEFAULT FALSE,
	flight_number TEXT NOT NULL DEFAULT ''
);

CREATE INDEX idx_event_creator_id ON event (creator_id);
CREATE INDEX idx_event_start_ts ON event (start_ts);
`

// Migrate brings the database up to the current schema. The schema is small
// enough that there is a single version; Migrate is a no-op on an already
// initialized database.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		return nil
	}

	schema := sqliteSchema
	if s.profile != nil && s.profile.Driver == "postgres" {
		schema = postgresSchema
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}
