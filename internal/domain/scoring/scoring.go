package scoring

import (
	"github.com/arminh/squadledger/internal/domain/model"
)

// Result carries the totals emitted by one scoring pass. The per-role
// figures are authoritative; callers must not re-derive them from Total.
type Result struct {
	Total      float64             `json:"total"`
	RolePoints model.RoleBreakdown `json:"role_points"`
}

// Score computes a squad's total from its roster, role pointers and banked
// points. The first startingSize slots form the scored lineup; bench slots
// contribute nothing regardless of their internal totals. Score is a pure
// function of its inputs and yields identical output whether invoked after a
// single transfer or in bulk during a pool cascade.
func Score(squad *model.Squad, startingSize int) Result {
	n := startingSize
	if n < 0 {
		n = 0
	}
	if n > len(squad.Slots) {
		n = len(squad.Slots)
	}

	var res Result
	sum := 0.0
	for i := 0; i < n; i++ {
		slot := squad.Slots[i]
		role, held := squad.RoleFor(slot.PlayerID)
		if !held {
			sum += Contribution(slot.CurrentPoints, slot.PointsAtJoining)
			continue
		}
		c := SlotContribution(slot, role.Multiplier())
		switch role {
		case model.RoleCaptain:
			res.RolePoints.Captain += c
		case model.RoleViceCaptain:
			res.RolePoints.ViceCaptain += c
		case model.RoleBonus:
			res.RolePoints.Bonus += c
		}
		sum += c
	}
	res.Total = sum + squad.BankedPoints
	return res
}

// Apply writes a scoring result onto the squad's cached total fields.
func Apply(squad *model.Squad, r Result) {
	squad.TotalPoints = r.Total
	squad.RolePoints = r.RolePoints
}
