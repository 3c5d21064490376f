// Package repository defines the persistence collaborator interface and its
// adapters. The core engine only ever sees plain domain values; identifiers
// are opaque and assigned by the store at creation.
package repository

import (
	"context"

	"github.com/arminh/squadledger/internal/domain/model"
)

// Store provides read/write access to squads, pools, leagues and the
// per-league snapshot series.
type Store interface {
	// CreatePool stores a new pool, assigning an id when empty.
	CreatePool(ctx context.Context, pool model.PlayerPool) (model.PlayerPool, error)
	// GetPool returns the pool or ErrNotFound.
	GetPool(ctx context.Context, id string) (model.PlayerPool, error)
	// PutPool overwrites an existing pool.
	PutPool(ctx context.Context, pool model.PlayerPool) error

	// CreateLeague stores a new league, assigning an id when empty.
	CreateLeague(ctx context.Context, league model.League) (model.League, error)
	// GetLeague returns the league or ErrNotFound.
	GetLeague(ctx context.Context, id string) (model.League, error)
	// ListLeaguesByPool returns every league referencing the pool.
	ListLeaguesByPool(ctx context.Context, poolID string) ([]model.League, error)

	// CreateSquad stores a new squad, assigning an id when empty.
	CreateSquad(ctx context.Context, squad model.Squad) (model.Squad, error)
	// GetSquad returns the squad or ErrNotFound.
	GetSquad(ctx context.Context, id string) (model.Squad, error)
	// PutSquad writes a squad iff the stored version equals expectedVersion,
	// returning the stored squad with its version bumped. A stale expected
	// version fails with ErrConflict and leaves the stored state untouched.
	PutSquad(ctx context.Context, squad model.Squad, expectedVersion int64) (model.Squad, error)
	// ListSquadsByLeague returns every squad belonging to the league.
	ListSquadsByLeague(ctx context.Context, leagueID string) ([]model.Squad, error)
	// PutSquadBatch writes all squads of one league atomically: either every
	// squad is stored (each with its version bumped) or none are.
	PutSquadBatch(ctx context.Context, leagueID string, squads []model.Squad) error

	// AppendSnapshot appends an immutable snapshot to the league's series,
	// assigning an id when empty.
	AppendSnapshot(ctx context.Context, snap model.Snapshot) (model.Snapshot, error)
	// LatestSnapshot returns the most recent snapshot for the league, or
	// ErrNotFound when the series is empty.
	LatestSnapshot(ctx context.Context, leagueID string) (model.Snapshot, error)
	// ListSnapshots returns the league's snapshot series, oldest first.
	ListSnapshots(ctx context.Context, leagueID string) ([]model.Snapshot, error)

	// Close releases any underlying resources.
	Close() error
}
