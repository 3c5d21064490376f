// Package transfer implements the roster mutations of a squad: player
// substitution, role reassignment and administrative reversal. All
// transitions validate before touching state and leave recomputation of the
// cached totals to the caller.
package transfer

import (
	"math"
	"time"

	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/internal/domain/scoring"
)

// Substitute replaces the squad member identified by outID with the incoming
// pool player. When the departing slot sits inside the scored lineup (index
// below startingSize), its accrued contribution is banked at weight 1.0
// regardless of any role it held: future bonus rights are forfeited,
// already-earned base is kept, and the squad total is unchanged. Bench slots
// never contribute to the total, so a bench departure banks nothing. The
// incoming slot starts fresh at its current career total and the matching
// quota counter is decremented. Every role pointer the outgoing player held
// is unset unless autoReassignRole hands it to the incoming player with a
// fresh checkpoint.
func Substitute(squad *model.Squad, outID string, incoming model.PlayerRecord, cat model.TransferCategory, startingSize int, autoReassignRole bool, now time.Time) error {
	if !cat.Valid() {
		return ErrUnknownCategory
	}
	idx := squad.SlotIndex(outID)
	if idx < 0 {
		return ErrPlayerNotInSquad
	}
	if squad.SlotIndex(incoming.ID) >= 0 {
		return ErrPlayerAlreadyInSquad
	}
	quota := squad.Quotas.Get(cat)
	if quota.Remaining <= 0 {
		return ErrQuotaExhausted
	}

	out := squad.Slots[idx]
	banked := 0.0
	if idx < startingSize {
		banked = scoring.Contribution(out.CurrentPoints, out.PointsAtJoining)
	}
	squad.BankedPoints += banked

	snap := out
	squad.Slots[idx] = model.NewSlot(incoming)

	var held []model.Role
	for _, role := range model.Roles() {
		if squad.RoleHolder(role) != outID {
			continue
		}
		held = append(held, role)
		if autoReassignRole {
			squad.SetRoleHolder(role, incoming.ID)
		} else {
			squad.SetRoleHolder(role, "")
		}
	}
	if autoReassignRole && len(held) > 0 {
		squad.Slots[idx].RoleCheckpoint = model.RoleAssignedAt(incoming.TotalPoints)
	}

	quota.Used++
	quota.Remaining--

	squad.Ledger = append(squad.Ledger, model.LedgerEntry{
		Kind:          model.LedgerSubstitution,
		Category:      cat,
		Roles:         held,
		PlayerOut:     outID,
		PlayerIn:      incoming.ID,
		SlotIndex:     idx,
		BankedDelta:   banked,
		OutSlot:       &snap,
		ReversedIndex: -1,
		At:            now,
	})
	return nil
}

// AssignRole points the given role at an existing squad member and freezes
// that member's role checkpoint at its current career total, so only future
// gains earn the multiplier. The displaced holder keeps its checkpoint only
// while it still holds some other role. Assigning a role to its current
// holder is a no-op.
func AssignRole(squad *model.Squad, role model.Role, playerID string, now time.Time) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	idx := squad.SlotIndex(playerID)
	if idx < 0 {
		return ErrPlayerNotInSquad
	}
	prev := squad.RoleHolder(role)
	if prev == playerID {
		return nil
	}

	squad.SetRoleHolder(role, playerID)
	squad.Slots[idx].RoleCheckpoint = model.RoleAssignedAt(squad.Slots[idx].CurrentPoints)

	// Clear the displaced holder's checkpoint unless another role pointer
	// still references it.
	if prev != "" {
		if _, held := squad.RoleFor(prev); !held {
			if pidx := squad.SlotIndex(prev); pidx >= 0 {
				squad.Slots[pidx].RoleCheckpoint = model.RoleCheckpoint{}
			}
		}
	}

	squad.Ledger = append(squad.Ledger, model.LedgerEntry{
		Kind:          model.LedgerRoleChange,
		Role:          role,
		PlayerOut:     prev,
		PlayerIn:      playerID,
		SlotIndex:     idx,
		ReversedIndex: -1,
		At:            now,
	})
	return nil
}

// Reverse undoes the substitution recorded at ledgerIndex: the removed slot
// is restored exactly from its ledger snapshot, role pointers the
// substitution moved or unset return to the restored player, the banked
// delta is taken back and one unit is refunded to the matching quota
// counter. Only substitution entries are reversible and each may be reversed
// at most once; a second attempt fails with ErrInvalidReversal.
func Reverse(squad *model.Squad, ledgerIndex int, now time.Time) error {
	if ledgerIndex < 0 || ledgerIndex >= len(squad.Ledger) {
		return ErrInvalidReversal
	}
	target := squad.Ledger[ledgerIndex]
	if target.Kind != model.LedgerSubstitution || target.OutSlot == nil {
		return ErrInvalidReversal
	}
	for i := range squad.Ledger {
		if squad.Ledger[i].Kind == model.LedgerReversal && squad.Ledger[i].ReversedIndex == ledgerIndex {
			return ErrInvalidReversal
		}
	}
	idx := squad.SlotIndex(target.PlayerIn)
	if idx < 0 {
		// The incoming player has since left; the roster slice cannot be
		// restored cleanly.
		return ErrInvalidReversal
	}

	squad.Slots[idx] = *target.OutSlot
	squad.BankedPoints = math.Max(0, squad.BankedPoints-target.BankedDelta)

	// Role pointers still on the incoming player follow the restored player
	// back out; pointers the substitution unset are restored too, unless a
	// later assignment has already claimed them.
	for _, role := range model.Roles() {
		if squad.RoleHolder(role) == target.PlayerIn {
			squad.SetRoleHolder(role, target.PlayerOut)
		}
	}
	for _, role := range target.Roles {
		if squad.RoleHolder(role) == "" {
			squad.SetRoleHolder(role, target.PlayerOut)
		}
	}

	if q := squad.Quotas.Get(target.Category); q != nil {
		if q.Used > 0 {
			q.Used--
		}
		q.Remaining++
	}

	squad.Ledger = append(squad.Ledger, model.LedgerEntry{
		Kind:          model.LedgerReversal,
		Category:      target.Category,
		PlayerOut:     target.PlayerIn,
		PlayerIn:      target.PlayerOut,
		SlotIndex:     idx,
		BankedDelta:   -target.BankedDelta,
		ReversedIndex: ledgerIndex,
		At:            now,
	})
	return nil
}
