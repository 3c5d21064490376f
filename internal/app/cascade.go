package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/pkg/logger"
	"github.com/arminh/squadledger/pkg/metrics"
)

// CascadeReport summarizes one pool recalculation cascade.
type CascadeReport struct {
	PoolID           string   `json:"pool_id"`
	LeaguesProcessed int      `json:"leagues_processed"`
	LeaguesFailed    []string `json:"leagues_failed,omitempty"`
	SnapshotsBuilt   int      `json:"snapshots_built"`
	// SnapshotFailures counts leagues whose batch committed but were left
	// without a fresh snapshot.
	SnapshotFailures int `json:"snapshot_failures"`
}

// RecalculatePool recomputes every squad of every league referencing the
// pool. Each league is one atomic batch; league failures are isolated,
// logged and aggregated into a PartialCascadeError while the rest of the
// cascade continues. A league's snapshot is built strictly after its batch
// commits. The cascade runs only when explicitly invoked; nothing subscribes
// it to pool edits.
func (s *Service) RecalculatePool(ctx context.Context, poolID string) (CascadeReport, error) {
	start := time.Now()

	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return CascadeReport{}, err
	}
	leagues, err := s.store.ListLeaguesByPool(ctx, poolID)
	if err != nil {
		return CascadeReport{}, err
	}

	metrics.RecordCascadeRun()
	report := CascadeReport{PoolID: poolID}

	workers := s.cascadeWorkers
	if workers > len(leagues) {
		workers = len(leagues)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan model.League)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for league := range jobs {
				snapshotBuilt, err := s.recalculateLeague(ctx, pool, league)
				mu.Lock()
				report.LeaguesProcessed++
				switch {
				case err != nil:
					report.LeaguesFailed = append(report.LeaguesFailed, league.ID)
					metrics.RecordCascadeLeagueFailure()
					s.logger.Error(ctx, "league recalculation failed",
						logger.String("leagueID", league.ID),
						logger.Error(err),
					)
				case snapshotBuilt:
					report.SnapshotsBuilt++
				default:
					report.SnapshotFailures++
				}
				mu.Unlock()
			}
		}()
	}

	for _, league := range leagues {
		jobs <- league
	}
	close(jobs)
	wg.Wait()

	metrics.RecordCascadeDuration(float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "pool cascade finished",
		logger.String("poolID", poolID),
		logger.Int("leagues", report.LeaguesProcessed),
		logger.Int("failed", len(report.LeaguesFailed)),
		logger.Int("snapshotFailures", report.SnapshotFailures),
	)

	if len(report.LeaguesFailed) > 0 {
		sort.Strings(report.LeaguesFailed)
		return report, &PartialCascadeError{PoolID: poolID, FailedLeagues: report.LeaguesFailed}
	}
	return report, nil
}

// recalculateLeague syncs, rescores and batch-commits one league, then
// builds its snapshot. The returned bool reports whether the snapshot was
// built; a snapshot failure after the committed batch is best-effort and
// does not fail the league.
func (s *Service) recalculateLeague(ctx context.Context, pool model.PlayerPool, league model.League) (bool, error) {
	squads, err := s.store.ListSquadsByLeague(ctx, league.ID)
	if err != nil {
		return false, err
	}
	for i := range squads {
		syncSlots(&squads[i], pool)
		s.recompute(&squads[i], league.StartingSize)
	}
	if err := s.store.PutSquadBatch(ctx, league.ID, squads); err != nil {
		return false, err
	}

	if _, err := s.buildLeagueSnapshot(ctx, league, squads); err != nil {
		metrics.RecordSnapshotBuildError()
		s.logger.Error(ctx, "snapshot build failed after cascade commit",
			logger.String("leagueID", league.ID),
			logger.Error(err),
		)
		return false, nil
	}
	return true, nil
}

// syncSlots copies career totals from the pool onto the squad's slots.
// Slots whose player is absent from the pool keep their last known value.
func syncSlots(squad *model.Squad, pool model.PlayerPool) {
	for i := range squad.Slots {
		if rec, ok := pool.Record(squad.Slots[i].PlayerID); ok {
			squad.Slots[i].CurrentPoints = rec.TotalPoints
		}
	}
}
