package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is the bootstrap DDL for the Postgres store. Idempotent so it can
// run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS persons (
    id               UUID PRIMARY KEY,
    display_name     TEXT NOT NULL,
    name_first_token TEXT NOT NULL DEFAULT '',
    name_last_token  TEXT NOT NULL DEFAULT '',
    data_quality     TEXT NOT NULL,
    is_canonical     BOOLEAN NOT NULL DEFAULT TRUE,
    provenance       TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS persons_name_block_idx
    ON persons (name_first_token, name_last_token);

CREATE TABLE IF NOT EXISTS identifiers (
    person_id UUID NOT NULL REFERENCES persons(id),
    kind      TEXT NOT NULL,
    value     TEXT NOT NULL,
    source    TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (person_id, kind, value)
);

CREATE INDEX IF NOT EXISTS identifiers_value_idx ON identifiers (kind, value);

CREATE TABLE IF NOT EXISTS merge_edges (
    source_person_id UUID PRIMARY KEY REFERENCES persons(id),
    target_person_id UUID NOT NULL REFERENCES persons(id),
    reason           TEXT NOT NULL DEFAULT '',
    performed_by     TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
    id                UUID PRIMARY KEY,
    source_system     TEXT NOT NULL,
    staged_name       TEXT NOT NULL,
    staged_email      TEXT NOT NULL DEFAULT '',
    staged_phone      TEXT NOT NULL DEFAULT '',
    outcome           TEXT NOT NULL,
    matched_person_id UUID,
    best_candidate_id UUID,
    similarity        DOUBLE PRECISION NOT NULL DEFAULT 0,
    confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
    evidence          JSONB NOT NULL DEFAULT '{}',
    data_quality      TEXT NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS decisions_pending_idx
    ON decisions (created_at)
    WHERE outcome = 'pending_review';

CREATE TABLE IF NOT EXISTS resolutions (
    decision_id      UUID PRIMARY KEY REFERENCES decisions(id),
    action           TEXT NOT NULL,
    target_person_id UUID,
    performed_by     TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sources (
    source_system TEXT PRIMARY KEY,
    score         DOUBLE PRECISION NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    updated_at    TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables used by the Postgres store.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
