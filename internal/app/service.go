// Package app provides the core business service implementing the
// points-attribution and leaderboard operations exposed to calling layers.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/arminh/squadledger/internal/adapters/identity"
	"github.com/arminh/squadledger/internal/adapters/repository"
	"github.com/arminh/squadledger/internal/domain/applied"
	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/internal/domain/scoring"
	"github.com/arminh/squadledger/internal/domain/transfer"
	"github.com/arminh/squadledger/pkg/logger"
	"github.com/arminh/squadledger/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultCascadeWorkers = 4
	defaultStartingSize   = 11
)

// Service implements the ledger operations over the persistence and
// identity collaborators. Squad-mutating operations require the caller's
// expected squad version and fail with repository.ErrConflict on a stale
// one.
type Service struct {
	store     repository.Store
	directory identity.Directory
	registry  applied.Registry

	cascadeWorkers      int
	defaultQuotas       model.QuotaSet
	defaultStartingSize int

	logger logger.Logger
	clock  func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence collaborator.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDirectory sets the identity collaborator used for display names.
func WithDirectory(dir identity.Directory) Option {
	return func(s *Service) {
		if dir != nil {
			s.directory = dir
		}
	}
}

// WithCascadeWorkers bounds the per-league fan-out of a pool cascade.
func WithCascadeWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cascadeWorkers = n
		}
	}
}

// WithDefaultQuotas sets the transfer quotas granted to new squads.
func WithDefaultQuotas(q model.QuotaSet) Option {
	return func(s *Service) {
		s.defaultQuotas = q
	}
}

// WithDefaultStartingSize sets the lineup size used when a league is
// created without one.
func WithDefaultStartingSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultStartingSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source; tests use this for deterministic
// ledger timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a Service. Without options it runs on an in-memory store
// and an empty identity directory.
func New(opts ...Option) *Service {
	s := &Service{
		store:               repository.NewMemStore(),
		directory:           identity.NewStaticDirectory(nil),
		registry:            applied.NewInMemoryRegistry(),
		cascadeWorkers:      defaultCascadeWorkers,
		defaultStartingSize: defaultStartingSize,
		defaultQuotas: model.QuotaSet{
			General:   model.Quota{Remaining: 10},
			Bench:     model.Quota{Remaining: 4},
			Flexible:  model.Quota{Remaining: 2},
			MidSeason: model.Quota{Remaining: 2},
		},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// recompute runs the scoring engine over the squad and refreshes its cached
// totals.
func (s *Service) recompute(squad *model.Squad, startingSize int) {
	start := time.Now()
	scoring.Apply(squad, scoring.Score(squad, startingSize))
	metrics.RecordSquadRecompute()
	metrics.RecordRecomputeLatency(float64(time.Since(start).Microseconds()) / 1000.0)
}

// CreatePool stores a new player pool.
func (s *Service) CreatePool(ctx context.Context, pool model.PlayerPool) (model.PlayerPool, error) {
	pool.UpdatedAt = s.clock()
	return s.store.CreatePool(ctx, pool)
}

// GetPool returns a pool by id.
func (s *Service) GetPool(ctx context.Context, id string) (model.PlayerPool, error) {
	return s.store.GetPool(ctx, id)
}

// UpdatePool replaces the pool's player records and update message. It does
// NOT recompute any squads: recalculation is a separate, explicitly invoked
// cascade so stale checkpoints can never be amplified by an automatic
// trigger.
func (s *Service) UpdatePool(ctx context.Context, poolID string, players []model.PlayerRecord, message string) (model.PlayerPool, error) {
	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return model.PlayerPool{}, err
	}
	pool.Players = players
	pool.UpdateMessage = message
	pool.UpdatedAt = s.clock()
	if err := s.store.PutPool(ctx, pool); err != nil {
		return model.PlayerPool{}, err
	}
	s.logger.Info(ctx, "pool updated",
		logger.String("poolID", poolID),
		logger.Int("players", len(players)),
	)
	return pool, nil
}

// CreateLeague stores a new league, defaulting its starting size.
func (s *Service) CreateLeague(ctx context.Context, league model.League) (model.League, error) {
	if league.StartingSize <= 0 {
		league.StartingSize = s.defaultStartingSize
	}
	if _, err := s.store.GetPool(ctx, league.PoolID); err != nil {
		return model.League{}, err
	}
	return s.store.CreateLeague(ctx, league)
}

// GetLeague returns a league by id.
func (s *Service) GetLeague(ctx context.Context, id string) (model.League, error) {
	return s.store.GetLeague(ctx, id)
}

// CreateSquad builds a squad from pool player ids and stores it. Season
// opening policy: every slot starts with a zero join baseline, so the full
// career total contributes from day one.
func (s *Service) CreateSquad(ctx context.Context, leagueID, ownerID, name string, playerIDs []string) (model.Squad, error) {
	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return model.Squad{}, err
	}
	pool, err := s.store.GetPool(ctx, league.PoolID)
	if err != nil {
		return model.Squad{}, err
	}

	squad := model.Squad{
		LeagueID: leagueID,
		OwnerID:  ownerID,
		Name:     name,
		Quotas:   s.defaultQuotas,
	}
	for _, pid := range playerIDs {
		rec, ok := pool.Record(pid)
		if !ok || rec.Disabled {
			return model.Squad{}, ErrPlayerUnavailable
		}
		slot := model.NewSlot(rec)
		slot.PointsAtJoining = 0
		squad.Slots = append(squad.Slots, slot)
	}
	s.recompute(&squad, league.StartingSize)
	return s.store.CreateSquad(ctx, squad)
}

// GetSquad returns a squad by id.
func (s *Service) GetSquad(ctx context.Context, id string) (model.Squad, error) {
	return s.store.GetSquad(ctx, id)
}

// ScoreSquad runs the scoring engine over the stored squad state without
// persisting anything.
func (s *Service) ScoreSquad(ctx context.Context, squadID string) (scoring.Result, error) {
	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		return scoring.Result{}, err
	}
	league, err := s.store.GetLeague(ctx, squad.LeagueID)
	if err != nil {
		return scoring.Result{}, err
	}
	return scoring.Score(&squad, league.StartingSize), nil
}

// SubmitSquad finalizes a squad so it participates in leaderboard
// snapshots.
func (s *Service) SubmitSquad(ctx context.Context, squadID string, expectedVersion int64) (model.Squad, error) {
	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		return model.Squad{}, err
	}
	squad.Submitted = true
	return s.store.PutSquad(ctx, squad, expectedVersion)
}

// SubstitutePlayer swaps the outgoing squad member for a pool player,
// banking the departing lineup contribution, then recomputes and persists the
// squad. Rejected with no state change on quota exhaustion, unknown
// players, or a stale expected version.
func (s *Service) SubstitutePlayer(ctx context.Context, squadID string, expectedVersion int64, outID, inID string, cat model.TransferCategory, autoReassignRole bool) (model.Squad, error) {
	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		return model.Squad{}, err
	}
	league, err := s.store.GetLeague(ctx, squad.LeagueID)
	if err != nil {
		return model.Squad{}, err
	}
	pool, err := s.store.GetPool(ctx, league.PoolID)
	if err != nil {
		return model.Squad{}, err
	}
	incoming, ok := pool.Record(inID)
	if !ok || incoming.Disabled {
		return model.Squad{}, ErrPlayerUnavailable
	}

	if err := transfer.Substitute(&squad, outID, incoming, cat, league.StartingSize, autoReassignRole, s.clock()); err != nil {
		if errors.Is(err, transfer.ErrQuotaExhausted) {
			metrics.RecordTransferRejected("quota_exhausted")
		}
		return model.Squad{}, err
	}
	s.recompute(&squad, league.StartingSize)

	stored, err := s.store.PutSquad(ctx, squad, expectedVersion)
	if err != nil {
		return model.Squad{}, err
	}
	metrics.RecordTransferApplied(string(cat))
	s.logger.Info(ctx, "substitution applied",
		logger.String("squadID", squadID),
		logger.String("out", outID),
		logger.String("in", inID),
		logger.String("category", string(cat)),
	)
	return stored, nil
}

// AssignRole points a special role at an existing squad member, freezing its
// role checkpoint at the current career total, then recomputes and persists.
func (s *Service) AssignRole(ctx context.Context, squadID string, expectedVersion int64, role model.Role, playerID string) (model.Squad, error) {
	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		return model.Squad{}, err
	}
	league, err := s.store.GetLeague(ctx, squad.LeagueID)
	if err != nil {
		return model.Squad{}, err
	}

	if err := transfer.AssignRole(&squad, role, playerID, s.clock()); err != nil {
		return model.Squad{}, err
	}
	s.recompute(&squad, league.StartingSize)

	stored, err := s.store.PutSquad(ctx, squad, expectedVersion)
	if err != nil {
		return model.Squad{}, err
	}
	metrics.RecordRoleChange()
	s.logger.Info(ctx, "role assigned",
		logger.String("squadID", squadID),
		logger.String("role", string(role)),
		logger.String("playerID", playerID),
	)
	return stored, nil
}

// ReverseTransfer undoes the substitution at the given ledger index
// (administrative only), then recomputes and persists.
func (s *Service) ReverseTransfer(ctx context.Context, squadID string, expectedVersion int64, ledgerIndex int) (model.Squad, error) {
	squad, err := s.store.GetSquad(ctx, squadID)
	if err != nil {
		return model.Squad{}, err
	}
	league, err := s.store.GetLeague(ctx, squad.LeagueID)
	if err != nil {
		return model.Squad{}, err
	}

	if err := transfer.Reverse(&squad, ledgerIndex, s.clock()); err != nil {
		return model.Squad{}, err
	}
	s.recompute(&squad, league.StartingSize)

	stored, err := s.store.PutSquad(ctx, squad, expectedVersion)
	if err != nil {
		return model.Squad{}, err
	}
	metrics.RecordReversal()
	s.logger.Info(ctx, "transfer reversed",
		logger.String("squadID", squadID),
		logger.Int("ledgerIndex", ledgerIndex),
	)
	return stored, nil
}
