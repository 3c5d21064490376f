package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/arminh/squadledger/internal/domain/model"
)

// MemStore is an in-memory Store for tests, seeding and single-process
// deployments. All values are deep-copied on the way in and out, so callers
// can never alias stored state.
type MemStore struct {
	mu        sync.RWMutex
	pools     map[string]model.PlayerPool
	leagues   map[string]model.League
	squads    map[string]model.Squad
	snapshots map[string][]model.Snapshot // leagueID -> series, oldest first
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		pools:     make(map[string]model.PlayerPool),
		leagues:   make(map[string]model.League),
		squads:    make(map[string]model.Squad),
		snapshots: make(map[string][]model.Snapshot),
	}
}

func copyPool(p model.PlayerPool) model.PlayerPool {
	out := p
	out.Players = make([]model.PlayerRecord, len(p.Players))
	copy(out.Players, p.Players)
	return out
}

func copySnapshot(s model.Snapshot) model.Snapshot {
	out := s
	out.Entries = make([]model.StandingEntry, len(s.Entries))
	copy(out.Entries, s.Entries)
	return out
}

// CreatePool stores a new pool, assigning an id when empty.
func (m *MemStore) CreatePool(_ context.Context, pool model.PlayerPool) (model.PlayerPool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pool.ID == "" {
		pool.ID = uuid.NewString()
	}
	m.pools[pool.ID] = copyPool(pool)
	return copyPool(pool), nil
}

// GetPool returns the pool or ErrNotFound.
func (m *MemStore) GetPool(_ context.Context, id string) (model.PlayerPool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pools[id]
	if !ok {
		return model.PlayerPool{}, ErrNotFound
	}
	return copyPool(p), nil
}

// PutPool overwrites an existing pool.
func (m *MemStore) PutPool(_ context.Context, pool model.PlayerPool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pools[pool.ID]; !ok {
		return ErrNotFound
	}
	m.pools[pool.ID] = copyPool(pool)
	return nil
}

// CreateLeague stores a new league, assigning an id when empty.
func (m *MemStore) CreateLeague(_ context.Context, league model.League) (model.League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if league.ID == "" {
		league.ID = uuid.NewString()
	}
	m.leagues[league.ID] = league
	return league, nil
}

// GetLeague returns the league or ErrNotFound.
func (m *MemStore) GetLeague(_ context.Context, id string) (model.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lg, ok := m.leagues[id]
	if !ok {
		return model.League{}, ErrNotFound
	}
	return lg, nil
}

// ListLeaguesByPool returns every league referencing the pool.
func (m *MemStore) ListLeaguesByPool(_ context.Context, poolID string) ([]model.League, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.League
	for _, lg := range m.leagues {
		if lg.PoolID == poolID {
			out = append(out, lg)
		}
	}
	return out, nil
}

// CreateSquad stores a new squad, assigning an id when empty. The stored
// version starts at 1.
func (m *MemStore) CreateSquad(_ context.Context, squad model.Squad) (model.Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if squad.ID == "" {
		squad.ID = uuid.NewString()
	}
	if squad.Version == 0 {
		squad.Version = 1
	}
	m.squads[squad.ID] = squad.Clone()
	return squad.Clone(), nil
}

// GetSquad returns the squad or ErrNotFound.
func (m *MemStore) GetSquad(_ context.Context, id string) (model.Squad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.squads[id]
	if !ok {
		return model.Squad{}, ErrNotFound
	}
	return s.Clone(), nil
}

// PutSquad writes a squad guarded by the caller's expected version.
func (m *MemStore) PutSquad(_ context.Context, squad model.Squad, expectedVersion int64) (model.Squad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.squads[squad.ID]
	if !ok {
		return model.Squad{}, ErrNotFound
	}
	if stored.Version != expectedVersion {
		return model.Squad{}, ErrConflict
	}
	squad.Version = expectedVersion + 1
	m.squads[squad.ID] = squad.Clone()
	return squad.Clone(), nil
}

// ListSquadsByLeague returns every squad belonging to the league.
func (m *MemStore) ListSquadsByLeague(_ context.Context, leagueID string) ([]model.Squad, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Squad
	for id := range m.squads {
		if m.squads[id].LeagueID == leagueID {
			s := m.squads[id]
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

// PutSquadBatch writes all squads of one league atomically. Every squad must
// already exist and belong to the league; a failed precondition leaves the
// whole batch unapplied.
func (m *MemStore) PutSquadBatch(_ context.Context, leagueID string, squads []model.Squad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range squads {
		stored, ok := m.squads[squads[i].ID]
		if !ok || stored.LeagueID != leagueID {
			return ErrNotFound
		}
	}
	for i := range squads {
		s := squads[i].Clone()
		s.Version = m.squads[s.ID].Version + 1
		m.squads[s.ID] = s
	}
	return nil
}

// AppendSnapshot appends an immutable snapshot to the league's series.
func (m *MemStore) AppendSnapshot(_ context.Context, snap model.Snapshot) (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	m.snapshots[snap.LeagueID] = append(m.snapshots[snap.LeagueID], copySnapshot(snap))
	return copySnapshot(snap), nil
}

// LatestSnapshot returns the most recent snapshot for the league.
func (m *MemStore) LatestSnapshot(_ context.Context, leagueID string) (model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series := m.snapshots[leagueID]
	if len(series) == 0 {
		return model.Snapshot{}, ErrNotFound
	}
	return copySnapshot(series[len(series)-1]), nil
}

// ListSnapshots returns the league's snapshot series, oldest first.
func (m *MemStore) ListSnapshots(_ context.Context, leagueID string) ([]model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series := m.snapshots[leagueID]
	out := make([]model.Snapshot, len(series))
	for i := range series {
		out[i] = copySnapshot(series[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
