// Package model contains domain models passed between layers.
package model

import "time"

// Role identifies one of the squad's three special role pointers.
type Role string

// Special roles, in the precedence order used when a player id would match
// more than one pointer.
const (
	RoleCaptain     Role = "captain"
	RoleViceCaptain Role = "vice_captain"
	RoleBonus       Role = "bonus"
)

// Role multiplier constants.
const (
	captainMultiplier     = 2.0
	viceCaptainMultiplier = 1.5
	bonusMultiplier       = 1.25
)

// Roles lists the special roles in precedence order.
func Roles() []Role {
	return []Role{RoleCaptain, RoleViceCaptain, RoleBonus}
}

// Valid reports whether r is one of the three special roles.
func (r Role) Valid() bool {
	return r == RoleCaptain || r == RoleViceCaptain || r == RoleBonus
}

// Multiplier returns the weight applied to points earned after the role's
// checkpoint. Unknown roles weigh 1.0 so a bad value can never inflate a
// contribution.
func (r Role) Multiplier() float64 {
	switch r {
	case RoleCaptain:
		return captainMultiplier
	case RoleViceCaptain:
		return viceCaptainMultiplier
	case RoleBonus:
		return bonusMultiplier
	default:
		return 1.0
	}
}

// TransferCategory names one of the squad's transfer budgets.
type TransferCategory string

// Transfer categories tracked by the quota counters.
const (
	TransferGeneral   TransferCategory = "general"
	TransferBench     TransferCategory = "bench"
	TransferFlexible  TransferCategory = "flexible"
	TransferMidSeason TransferCategory = "mid_season"
)

// Valid reports whether c is a known transfer category.
func (c TransferCategory) Valid() bool {
	switch c {
	case TransferGeneral, TransferBench, TransferFlexible, TransferMidSeason:
		return true
	default:
		return false
	}
}

// Quota tracks a used/remaining pair for one transfer category.
type Quota struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// QuotaSet holds the per-category transfer counters of a squad.
type QuotaSet struct {
	General   Quota `json:"general"`
	Bench     Quota `json:"bench"`
	Flexible  Quota `json:"flexible"`
	MidSeason Quota `json:"mid_season"`
}

// Get returns a pointer to the counter for the given category, or nil for an
// unknown category.
func (q *QuotaSet) Get(cat TransferCategory) *Quota {
	switch cat {
	case TransferGeneral:
		return &q.General
	case TransferBench:
		return &q.Bench
	case TransferFlexible:
		return &q.Flexible
	case TransferMidSeason:
		return &q.MidSeason
	default:
		return nil
	}
}

// RoleCheckpoint records a player's career total at the moment a special role
// was last assigned to its slot. The zero value means the checkpoint was
// never set; Effective then falls back to the join baseline, so the whole
// tenure accrues at the role multiplier. Role assignment must always set the
// checkpoint explicitly to avoid that fallback over-crediting past points.
type RoleCheckpoint struct {
	Assigned bool    `json:"assigned"`
	Points   float64 `json:"points"`
}

// RoleAssignedAt builds a checkpoint frozen at the given career total.
func RoleAssignedAt(points float64) RoleCheckpoint {
	return RoleCheckpoint{Assigned: true, Points: points}
}

// Effective returns the baseline that splits base accrual (weight 1.0) from
// bonus accrual (role multiplier).
func (c RoleCheckpoint) Effective(joinBaseline float64) float64 {
	if c.Assigned {
		return c.Points
	}
	return joinBaseline
}

// PlayerRecord is one entry of the shared player pool. Mutated only by
// pool-update operations, never by squad-side logic.
type PlayerRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Team        string  `json:"team"`
	Position    string  `json:"position"`
	TotalPoints float64 `json:"total_points"`
	Disabled    bool    `json:"disabled"`
}

// PlayerPool is the shared catalog of real-world players for one competition
// edition. Pools are never deleted; players are soft-disabled instead.
type PlayerPool struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	UpdateMessage string         `json:"update_message"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Players       []PlayerRecord `json:"players"`
}

// Record looks up a player by id.
func (p *PlayerPool) Record(id string) (PlayerRecord, bool) {
	for i := range p.Players {
		if p.Players[i].ID == id {
			return p.Players[i], true
		}
	}
	return PlayerRecord{}, false
}

// Slot is one roster position of a squad. Name, team and position are
// denormalized copies kept for display stability; only CurrentPoints and the
// two checkpoints are authoritative for scoring.
type Slot struct {
	PlayerID        string         `json:"player_id"`
	Name            string         `json:"name"`
	Team            string         `json:"team"`
	Position        string         `json:"position"`
	CurrentPoints   float64        `json:"current_points"`
	PointsAtJoining float64        `json:"points_at_joining"`
	RoleCheckpoint  RoleCheckpoint `json:"role_checkpoint"`
}

// NewSlot fills a roster slot from a pool record. The join checkpoint is set
// to the player's current career total, so the slot starts with zero
// contribution by construction.
func NewSlot(p PlayerRecord) Slot {
	return Slot{
		PlayerID:        p.ID,
		Name:            p.Name,
		Team:            p.Team,
		Position:        p.Position,
		CurrentPoints:   p.TotalPoints,
		PointsAtJoining: p.TotalPoints,
	}
}

// LedgerKind tags an entry of a squad's transfer ledger.
type LedgerKind string

// Ledger entry kinds.
const (
	LedgerSubstitution LedgerKind = "substitution"
	LedgerRoleChange   LedgerKind = "role_change"
	LedgerReversal     LedgerKind = "reversal"
)

// LedgerEntry is one append-only record of a squad mutation. Substitution
// entries carry a snapshot of the removed slot, plus every role pointer the
// outgoing player held, so an administrative reversal can restore both
// exactly.
type LedgerEntry struct {
	Kind          LedgerKind       `json:"kind"`
	Category      TransferCategory `json:"category,omitempty"`
	Role          Role             `json:"role,omitempty"`
	Roles         []Role           `json:"roles,omitempty"`
	PlayerOut     string           `json:"player_out,omitempty"`
	PlayerIn      string           `json:"player_in,omitempty"`
	SlotIndex     int              `json:"slot_index"`
	BankedDelta   float64          `json:"banked_delta"`
	OutSlot       *Slot            `json:"out_slot,omitempty"`
	ReversedIndex int              `json:"reversed_index"`
	At            time.Time        `json:"at"`
}

// RoleBreakdown carries the per-role point totals emitted by the scoring
// engine. Callers must use these fields as-is and never re-derive them from
// the grand total.
type RoleBreakdown struct {
	Captain     float64 `json:"captain"`
	ViceCaptain float64 `json:"vice_captain"`
	Bonus       float64 `json:"bonus"`
}

// Squad is one participant's roster within a league. The first
// League.StartingSize slots form the scored lineup; the rest are bench and
// never contribute.
type Squad struct {
	ID            string        `json:"id"`
	LeagueID      string        `json:"league_id"`
	OwnerID       string        `json:"owner_id"`
	Name          string        `json:"name"`
	Submitted     bool          `json:"submitted"`
	Slots         []Slot        `json:"slots"`
	CaptainID     string        `json:"captain_id"`
	ViceCaptainID string        `json:"vice_captain_id"`
	BonusID       string        `json:"bonus_id"`
	BankedPoints  float64       `json:"banked_points"`
	TotalPoints   float64       `json:"total_points"`
	RolePoints    RoleBreakdown `json:"role_points"`
	Ledger        []LedgerEntry `json:"ledger"`
	Quotas        QuotaSet      `json:"quotas"`
	Version       int64         `json:"version"`
}

// RoleHolder returns the player id the given role pointer holds, or empty
// when unset.
func (s *Squad) RoleHolder(r Role) string {
	switch r {
	case RoleCaptain:
		return s.CaptainID
	case RoleViceCaptain:
		return s.ViceCaptainID
	case RoleBonus:
		return s.BonusID
	default:
		return ""
	}
}

// SetRoleHolder points the given role at a player id (empty unsets it).
func (s *Squad) SetRoleHolder(r Role, playerID string) {
	switch r {
	case RoleCaptain:
		s.CaptainID = playerID
	case RoleViceCaptain:
		s.ViceCaptainID = playerID
	case RoleBonus:
		s.BonusID = playerID
	}
}

// RoleFor resolves the role a player holds, if any. When a player id matches
// more than one pointer, the precedence order of Roles applies so at most
// one multiplier is ever granted.
func (s *Squad) RoleFor(playerID string) (Role, bool) {
	if playerID == "" {
		return "", false
	}
	for _, r := range Roles() {
		if s.RoleHolder(r) == playerID {
			return r, true
		}
	}
	return "", false
}

// SlotIndex returns the roster index of the given player, or -1.
func (s *Squad) SlotIndex(playerID string) int {
	for i := range s.Slots {
		if s.Slots[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the squad, including the ledger's slot
// snapshots.
func (s *Squad) Clone() Squad {
	out := *s
	out.Slots = make([]Slot, len(s.Slots))
	copy(out.Slots, s.Slots)
	out.Ledger = make([]LedgerEntry, len(s.Ledger))
	copy(out.Ledger, s.Ledger)
	for i := range out.Ledger {
		if snap := out.Ledger[i].OutSlot; snap != nil {
			c := *snap
			out.Ledger[i].OutSlot = &c
		}
		if roles := out.Ledger[i].Roles; roles != nil {
			out.Ledger[i].Roles = append([]Role(nil), roles...)
		}
	}
	return out
}

// League groups squads competing against each other over one player pool.
type League struct {
	ID           string `json:"id"`
	PoolID       string `json:"pool_id"`
	Name         string `json:"name"`
	StartingSize int    `json:"starting_size"`
}
