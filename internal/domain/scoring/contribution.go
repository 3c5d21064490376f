// Package scoring converts roster checkpoints into squad point totals.
package scoring

import (
	"math"

	"github.com/arminh/squadledger/internal/domain/model"
)

// Contribution returns the points attributable to the current holder of a
// slot relative to a baseline checkpoint. A negative difference clamps to
// zero; it can occur transiently when a pool update lowers a career total
// before recomputation runs, and must never propagate into a sum.
func Contribution(currentPoints, baselinePoints float64) float64 {
	return math.Max(0, currentPoints-baselinePoints)
}

// SlotContribution computes the two-tier contribution of a role-holding
// slot. Points earned between joining and the role checkpoint weigh 1.0;
// points earned after the checkpoint weigh the role multiplier. A slot whose
// checkpoint was never set behaves as if the role was assigned at join time,
// so the full tenure accrues at the multiplier.
func SlotContribution(slot model.Slot, multiplier float64) float64 {
	effective := slot.RoleCheckpoint.Effective(slot.PointsAtJoining)
	base := Contribution(effective, slot.PointsAtJoining)
	bonus := Contribution(slot.CurrentPoints, effective)
	return base + bonus*multiplier
}
