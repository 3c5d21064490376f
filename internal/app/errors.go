package app

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for service-level failures.
var (
	// ErrAlreadyFolded rejects a second banked-points folding against the
	// same squad; the folding is a one-time data migration.
	ErrAlreadyFolded = errors.New("banked points already folded")

	// ErrPlayerUnavailable rejects a substitution whose incoming player is
	// absent from the pool or soft-disabled.
	ErrPlayerUnavailable = errors.New("player unavailable in pool")
)

// PartialCascadeError reports the leagues that failed during a pool
// recalculation cascade. Leagues that succeeded keep their committed state.
type PartialCascadeError struct {
	PoolID        string
	FailedLeagues []string
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("cascade over pool %s failed for %d league(s): %s",
		e.PoolID, len(e.FailedLeagues), strings.Join(e.FailedLeagues, ", "))
}
