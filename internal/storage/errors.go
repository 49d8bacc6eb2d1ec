package storage

import dErrors "unify/pkg/domain-errors"

var (
	// ErrNotFound keeps storage-specific 404s consistent across in-memory
	// and Postgres implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

	// ErrNotCanonical rejects merges whose target has itself been merged
	// away; the caller must resolve to the root first.
	ErrNotCanonical = dErrors.New(dErrors.CodeConflict, "merge target is not canonical")
)
