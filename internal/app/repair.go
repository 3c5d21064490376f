package app

import (
	"context"

	"github.com/arminh/squadledger/internal/adapters/repository"
	"github.com/arminh/squadledger/internal/domain/applied"
	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/internal/domain/repair"
	"github.com/arminh/squadledger/pkg/logger"
	"github.com/arminh/squadledger/pkg/metrics"
)

// Applied-operation keys for one-time repairs.
const foldBankedPointsOp = "fold_banked_points"

// RepairLeagueRoles walks every finalized squad of a league and reassigns
// role pointers that are unset or point outside the scored lineup to a
// deterministic fallback member. Returns the number of squads repaired.
func (s *Service) RepairLeagueRoles(ctx context.Context, leagueID string) (int, error) {
	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	squads, err := s.store.ListSquadsByLeague(ctx, leagueID)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range squads {
		if !squads[i].Submitted {
			continue
		}
		fixed := repair.Roles(&squads[i], league.StartingSize, s.clock())
		if len(fixed) == 0 {
			continue
		}
		s.recompute(&squads[i], league.StartingSize)
		if _, err := s.store.PutSquad(ctx, squads[i], squads[i].Version); err != nil {
			return repaired, err
		}
		metrics.RecordRepairApplied("role_integrity")
		s.logger.Info(ctx, "role pointers repaired",
			logger.String("squadID", squads[i].ID),
			logger.Int("roles", len(fixed)),
		)
		repaired++
	}
	return repaired, nil
}

// FoldBankedPoints merges a squad's stray banked points into its total and
// zeroes the bank. One-time data migration: a second call against the same
// squad fails with ErrAlreadyFolded.
func (s *Service) FoldBankedPoints(ctx context.Context, squadID string, expectedVersion int64) (model.Squad, error) {
	key := applied.Key(foldBankedPointsOp, squadID)
	if s.registry.SeenAndRecord(ctx, key) {
		return model.Squad{}, ErrAlreadyFolded
	}

	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		s.registry.Unrecord(ctx, key)
		return model.Squad{}, err
	}
	folded := repair.FoldBankedPoints(&squad)
	stored, err := s.store.PutSquad(ctx, squad, expectedVersion)
	if err != nil {
		s.registry.Unrecord(ctx, key)
		return model.Squad{}, err
	}
	metrics.RecordRepairApplied("banked_points_folding")
	s.logger.Info(ctx, "banked points folded",
		logger.String("squadID", squadID),
		logger.Float64("folded", folded),
	)
	return stored, nil
}

// RestoreBaseline forces a squad's cached totals back to the values in the
// identified snapshot, leaving roster and transfer ledger untouched.
func (s *Service) RestoreBaseline(ctx context.Context, squadID, snapshotID string, expectedVersion int64) (model.Squad, error) {
	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		return model.Squad{}, err
	}
	series, err := s.store.ListSnapshots(ctx, squad.LeagueID)
	if err != nil {
		return model.Squad{}, err
	}

	var target *model.Snapshot
	for i := range series {
		if series[i].ID == snapshotID {
			target = &series[i]
			break
		}
	}
	if target == nil {
		return model.Squad{}, repository.ErrNotFound
	}

	if err := repair.RestoreBaseline(&squad, target); err != nil {
		return model.Squad{}, err
	}
	stored, err := s.store.PutSquad(ctx, squad, expectedVersion)
	if err != nil {
		return model.Squad{}, err
	}
	metrics.RecordRepairApplied("baseline_restoration")
	s.logger.Info(ctx, "baseline restored",
		logger.String("squadID", squadID),
		logger.String("snapshotID", snapshotID),
	)
	return stored, nil
}
