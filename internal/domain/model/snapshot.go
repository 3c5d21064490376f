package model

import "time"

// StandingEntry is one row of a leaderboard snapshot.
type StandingEntry struct {
	SquadID     string        `json:"squad_id"`
	SquadName   string        `json:"squad_name"`
	OwnerName   string        `json:"owner_name,omitempty"`
	TotalPoints float64       `json:"total_points"`
	RolePoints  RoleBreakdown `json:"role_points"`
	Rank        int           `json:"rank"`
	// PreviousRank is 0 when the squad was absent from the previous snapshot.
	PreviousRank int `json:"previous_rank"`
	// RankChange is previousRank - rank; positive means the squad improved.
	RankChange   int     `json:"rank_change"`
	PointsGained float64 `json:"points_gained"`
	LeadOverNext float64 `json:"lead_over_next"`
}

// Snapshot is an immutable, append-only leaderboard record for one league.
// Past snapshots are never mutated; the most recent one serves as the
// baseline for the next build's rank-change fields.
type Snapshot struct {
	ID        string          `json:"id"`
	LeagueID  string          `json:"league_id"`
	CreatedAt time.Time       `json:"created_at"`
	Entries   []StandingEntry `json:"entries"`
}

// Entry looks up a standing by squad id.
func (s *Snapshot) Entry(squadID string) (StandingEntry, bool) {
	for i := range s.Entries {
		if s.Entries[i].SquadID == squadID {
			return s.Entries[i], true
		}
	}
	return StandingEntry{}, false
}
