package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/pkg/logger"
)

// Run executes the complete demo season.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	rng := rand.New(rand.NewSource(cfg.Seed))
	api := newClient(cfg.BaseURL, cfg.Timeout)
	log := logger.Get().Named("seed")

	log.Info(ctx, "starting demo season",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("poolSize", cfg.PoolSize),
		logger.Int("squads", cfg.Squads),
		logger.Int("rounds", cfg.Rounds),
	)

	if err := api.get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	pool, err := createPool(ctx, api, rng, cfg, stats)
	if err != nil {
		return fmt.Errorf("pool creation failed: %w", err)
	}

	var league model.League
	if err := api.post(ctx, "/leagues", map[string]any{
		"pool_id":       pool.ID,
		"name":          "Demo League",
		"starting_size": cfg.StartingSize,
	}, &league); err != nil {
		return fmt.Errorf("league creation failed: %w", err)
	}

	squads, err := createSquads(ctx, api, rng, cfg, pool, league, stats)
	if err != nil {
		return fmt.Errorf("squad creation failed: %w", err)
	}

	for round := 1; round <= cfg.Rounds; round++ {
		if err := playRound(ctx, api, rng, cfg, &pool, league, squads, round, stats); err != nil {
			return fmt.Errorf("round %d failed: %w", round, err)
		}
	}

	if err := verifyStandings(ctx, api, league, stats); err != nil {
		return fmt.Errorf("standings verification failed: %w", err)
	}

	log.Info(ctx, "demo season finished",
		logger.Int("playersSeeded", stats.PlayersSeeded),
		logger.Int("squadsCreated", stats.SquadsCreated),
		logger.Int("substitutions", stats.Substitutions),
		logger.Int("roleChanges", stats.RoleChanges),
		logger.Int("snapshots", stats.Snapshots),
		logger.String("elapsed", time.Since(stats.StartTime).String()),
	)
	return nil
}

func createPool(ctx context.Context, api *client, rng *rand.Rand, cfg *Config, stats *Stats) (model.PlayerPool, error) {
	players := generatePool(rng, cfg.PoolSize)
	var pool model.PlayerPool
	if err := api.post(ctx, "/pools", map[string]any{
		"name":    "Demo Pool",
		"players": players,
	}, &pool); err != nil {
		return model.PlayerPool{}, err
	}
	stats.PlayersSeeded = len(players)
	return pool, nil
}

func createSquads(ctx context.Context, api *client, rng *rand.Rand, cfg *Config, pool model.PlayerPool, league model.League, stats *Stats) ([]model.Squad, error) {
	squads := make([]model.Squad, 0, cfg.Squads)
	for i := 0; i < cfg.Squads; i++ {
		var squad model.Squad
		if err := api.post(ctx, "/squads", map[string]any{
			"league_id":  league.ID,
			"owner_id":   fmt.Sprintf("owner-%02d", i+1),
			"name":       fmt.Sprintf("Squad %02d", i+1),
			"player_ids": pickSquad(rng, pool.Players, cfg.SquadSize),
		}, &squad); err != nil {
			return nil, err
		}

		// Roles go to the first three lineup slots.
		for _, assignment := range []struct {
			role string
			slot int
		}{
			{string(model.RoleCaptain), 0},
			{string(model.RoleViceCaptain), 1},
			{string(model.RoleBonus), 2},
		} {
			if err := api.post(ctx, "/squads/"+squad.ID+"/roles", map[string]any{
				"expected_version": squad.Version,
				"role":             assignment.role,
				"player_id":        squad.Slots[assignment.slot].PlayerID,
			}, &squad); err != nil {
				return nil, err
			}
			stats.RoleChanges++
		}

		if err := api.post(ctx, "/squads/"+squad.ID+"/submit", map[string]any{
			"expected_version": squad.Version,
		}, &squad); err != nil {
			return nil, err
		}
		squads = append(squads, squad)
		stats.SquadsCreated++
	}
	return squads, nil
}

// playRound advances the pool one round, runs a couple of substitutions and
// triggers the recalculation cascade.
func playRound(ctx context.Context, api *client, rng *rand.Rand, cfg *Config, pool *model.PlayerPool, league model.League, squads []model.Squad, round int, stats *Stats) error {
	pool.Players = advanceRound(rng, pool.Players)
	if err := api.put(ctx, "/pools/"+pool.ID, map[string]any{
		"players": pool.Players,
		"message": fmt.Sprintf("round %d results", round),
	}, pool); err != nil {
		return err
	}

	// One random squad swaps a bench player for an unused pool player.
	if victim := rng.Intn(len(squads)); len(squads[victim].Slots) > cfg.StartingSize {
		if err := substituteBench(ctx, api, rng, cfg, *pool, &squads[victim], stats); err != nil {
			// Quota exhaustion late in the season is expected; keep going.
			logger.Get().Named("seed").Warn(ctx, "substitution skipped", logger.Error(err))
		}
	}

	var report struct {
		SnapshotsBuilt int `json:"snapshots_built"`
	}
	if err := api.post(ctx, "/pools/"+pool.ID+"/recalculate", nil, &report); err != nil {
		return err
	}
	stats.Snapshots += report.SnapshotsBuilt
	return nil
}

func substituteBench(ctx context.Context, api *client, rng *rand.Rand, cfg *Config, pool model.PlayerPool, squad *model.Squad, stats *Stats) error {
	// Refresh for the current version and roster.
	if err := api.get(ctx, "/squads/"+squad.ID, squad); err != nil {
		return err
	}

	inSquad := make(map[string]bool, len(squad.Slots))
	for _, slot := range squad.Slots {
		inSquad[slot.PlayerID] = true
	}
	var incoming string
	for _, idx := range rng.Perm(len(pool.Players)) {
		if p := pool.Players[idx]; !inSquad[p.ID] && !p.Disabled {
			incoming = p.ID
			break
		}
	}
	if incoming == "" {
		return nil
	}

	benchSlot := cfg.StartingSize + rng.Intn(len(squad.Slots)-cfg.StartingSize)
	if err := api.post(ctx, "/squads/"+squad.ID+"/transfers", map[string]any{
		"expected_version":   squad.Version,
		"out":                squad.Slots[benchSlot].PlayerID,
		"in":                 incoming,
		"category":           string(model.TransferBench),
		"auto_reassign_role": true,
	}, squad); err != nil {
		return err
	}
	stats.Substitutions++
	return nil
}

// verifyStandings checks the final snapshot is complete and ordered.
func verifyStandings(ctx context.Context, api *client, league model.League, stats *Stats) error {
	var snap model.Snapshot
	if err := api.get(ctx, "/leagues/"+league.ID+"/standings", &snap); err != nil {
		return err
	}
	if len(snap.Entries) == 0 {
		return fmt.Errorf("final snapshot has no entries")
	}
	for i := 1; i < len(snap.Entries); i++ {
		if snap.Entries[i].TotalPoints > snap.Entries[i-1].TotalPoints {
			return fmt.Errorf("snapshot not ordered: rank %d has %.1f points, rank %d has %.1f",
				i, snap.Entries[i-1].TotalPoints, i+1, snap.Entries[i].TotalPoints)
		}
	}

	log := logger.Get().Named("seed")
	for _, entry := range snap.Entries {
		log.Info(ctx, "final standing",
			logger.Int("rank", entry.Rank),
			logger.String("squad", entry.SquadName),
			logger.Float64("points", entry.TotalPoints),
			logger.Int("rankChange", entry.RankChange),
		)
	}
	return nil
}
