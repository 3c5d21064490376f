// Package standings builds ranked leaderboard snapshots and read-only
// queries over a league's snapshot series.
package standings

import (
	"sort"
	"time"

	"github.com/arminh/squadledger/internal/domain/model"
)

// SquadTotal is one squad's input to a snapshot build. It carries the
// scoring engine's own field values; the builder never re-derives role
// points from the grand total.
type SquadTotal struct {
	SquadID    string
	Name       string
	OwnerName  string
	Submitted  bool
	Total      float64
	RolePoints model.RoleBreakdown
}

// Build produces the next snapshot for a league. Squads sort strictly
// descending by total, ties broken by display name ascending for
// determinism; rank is the 1-based position. The previous snapshot, when
// present, seeds previous-rank, rank-change and points-gained per squad.
// Unsubmitted squads are excluded regardless of their totals.
func Build(leagueID string, totals []SquadTotal, prev *model.Snapshot, now time.Time) model.Snapshot {
	ranked := make([]SquadTotal, 0, len(totals))
	for _, t := range totals {
		if t.Submitted {
			ranked = append(ranked, t)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].Name < ranked[j].Name
	})

	entries := make([]model.StandingEntry, len(ranked))
	for i, t := range ranked {
		e := model.StandingEntry{
			SquadID:     t.SquadID,
			SquadName:   t.Name,
			OwnerName:   t.OwnerName,
			TotalPoints: t.Total,
			RolePoints:  t.RolePoints,
			Rank:        i + 1,
		}
		if prev != nil {
			if pe, ok := prev.Entry(t.SquadID); ok {
				e.PreviousRank = pe.Rank
				e.RankChange = pe.Rank - e.Rank
				e.PointsGained = t.Total - pe.TotalPoints
			}
		}
		entries[i] = e
	}
	for i := 0; i+1 < len(entries); i++ {
		entries[i].LeadOverNext = entries[i].TotalPoints - entries[i+1].TotalPoints
	}

	return model.Snapshot{
		LeagueID:  leagueID,
		CreatedAt: now,
		Entries:   entries,
	}
}

// RankStreak counts how many consecutive snapshots, newest first, rank the
// squad at its latest position. The series must be ordered oldest to newest.
// A squad absent from the latest snapshot has a streak of zero.
func RankStreak(series []model.Snapshot, squadID string) int {
	streak := 0
	currentRank := 0
	for i := len(series) - 1; i >= 0; i-- {
		e, ok := series[i].Entry(squadID)
		if !ok {
			break
		}
		if streak == 0 {
			currentRank = e.Rank
			streak = 1
			continue
		}
		if e.Rank != currentRank {
			break
		}
		streak++
	}
	return streak
}
