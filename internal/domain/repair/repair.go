// Package repair implements the administrative safety-net procedures that
// operate on already-persisted squads without bypassing the scoring
// invariant.
package repair

import (
	"errors"
	"time"

	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/internal/domain/transfer"
)

// ErrNoStandingEntry is returned when a baseline restoration targets a
// snapshot that has no entry for the squad.
var ErrNoStandingEntry = errors.New("squad has no entry in snapshot")

// Roles ensures every required role pointer targets a member of the scored
// lineup. A pointer that is unset or points outside the lineup is assigned
// to a deterministic fallback: the first scored slot not already holding a
// role, through the normal role-assignment path so the checkpoint freeze and
// ledger append apply exactly as usual. Returns the roles that were
// reassigned.
func Roles(squad *model.Squad, startingSize int, now time.Time) []model.Role {
	n := startingSize
	if n > len(squad.Slots) {
		n = len(squad.Slots)
	}

	var fixed []model.Role
	for _, role := range model.Roles() {
		if holder := squad.RoleHolder(role); holder != "" {
			if idx := squad.SlotIndex(holder); idx >= 0 && idx < n {
				continue
			}
		}
		for i := 0; i < n; i++ {
			pid := squad.Slots[i].PlayerID
			if _, held := squad.RoleFor(pid); held {
				continue
			}
			if err := transfer.AssignRole(squad, role, pid, now); err == nil {
				fixed = append(fixed, role)
			}
			break
		}
	}
	return fixed
}

// FoldBankedPoints merges stray banked points into the cached total and
// zeroes the bank, returning the folded amount. This is a one-time data
// migration for squads whose totals were written by a code path that forgot
// the bank; the caller is responsible for guarding against repeat runs.
func FoldBankedPoints(squad *model.Squad) float64 {
	folded := squad.BankedPoints
	squad.TotalPoints += folded
	squad.BankedPoints = 0
	return folded
}

// RestoreBaseline forces the squad's cached totals back to the values
// recorded in the snapshot's matching entry, leaving the roster and the
// transfer ledger untouched. Used to undo an erroneous bulk recalculation
// without losing subsequent transfer history.
func RestoreBaseline(squad *model.Squad, snap *model.Snapshot) error {
	e, ok := snap.Entry(squad.ID)
	if !ok {
		return ErrNoStandingEntry
	}
	squad.TotalPoints = e.TotalPoints
	squad.RolePoints = e.RolePoints
	return nil
}
