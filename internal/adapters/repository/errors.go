package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrNotFound signals that a referenced squad, pool, league or snapshot
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict signals that a squad write carried a stale expected
	// version.
	ErrConflict = errors.New("version conflict")
)
