package app

import (
	"context"
	"errors"

	"github.com/arminh/squadledger/internal/adapters/repository"
	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/internal/domain/standings"
	"github.com/arminh/squadledger/pkg/metrics"
)

// buildLeagueSnapshot builds and appends the league's next snapshot from the
// given squads' cached totals, diffing against the latest stored snapshot.
func (s *Service) buildLeagueSnapshot(ctx context.Context, league model.League, squads []model.Squad) (model.Snapshot, error) {
	totals := make([]standings.SquadTotal, 0, len(squads))
	for i := range squads {
		ownerName, err := s.directory.DisplayName(ctx, squads[i].OwnerID)
		if err != nil {
			ownerName = ""
		}
		totals = append(totals, standings.SquadTotal{
			SquadID:    squads[i].ID,
			Name:       squads[i].Name,
			OwnerName:  ownerName,
			Submitted:  squads[i].Submitted,
			Total:      squads[i].TotalPoints,
			RolePoints: squads[i].RolePoints,
		})
	}

	var prev *model.Snapshot
	latest, err := s.store.LatestSnapshot(ctx, league.ID)
	switch {
	case err == nil:
		prev = &latest
	case errors.Is(err, repository.ErrNotFound):
		// First snapshot for this league.
	default:
		return model.Snapshot{}, err
	}

	snap := standings.Build(league.ID, totals, prev, s.clock())
	stored, err := s.store.AppendSnapshot(ctx, snap)
	if err != nil {
		return model.Snapshot{}, err
	}
	metrics.RecordSnapshotBuilt()
	return stored, nil
}

// BuildSnapshot explicitly builds and appends a new snapshot for the league
// from its stored squad totals.
func (s *Service) BuildSnapshot(ctx context.Context, leagueID string) (model.Snapshot, error) {
	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return model.Snapshot{}, err
	}
	squads, err := s.store.ListSquadsByLeague(ctx, leagueID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return s.buildLeagueSnapshot(ctx, league, squads)
}

// LatestStandings returns the league's most recent snapshot.
func (s *Service) LatestStandings(ctx context.Context, leagueID string) (model.Snapshot, error) {
	return s.store.LatestSnapshot(ctx, leagueID)
}

// RankStreak reports how many consecutive snapshots rank the squad at its
// latest position.
func (s *Service) RankStreak(ctx context.Context, leagueID, squadID string) (int, error) {
	series, err := s.store.ListSnapshots(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	return standings.RankStreak(series, squadID), nil
}
