package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arminh/squadledger/internal/adapters/repository"
	"github.com/arminh/squadledger/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	Convey("Given a sqlite store on a fresh database", t, func() {
		store := newSQLiteStore(t)

		Convey("When writing and reading a pool", func() {
			pool, err := store.CreatePool(ctx, model.PlayerPool{
				Name:    "Pool",
				Players: []model.PlayerRecord{{ID: "p1", Name: "One", TotalPoints: 450}},
			})
			So(err, ShouldBeNil)
			So(pool.ID, ShouldNotBeEmpty)

			got, err := store.GetPool(ctx, pool.ID)
			So(err, ShouldBeNil)
			So(got.Players, ShouldResemble, pool.Players)

			Convey("And leagues index by pool", func() {
				league, err := store.CreateLeague(ctx, model.League{PoolID: pool.ID, Name: "League", StartingSize: 3})
				So(err, ShouldBeNil)
				leagues, err := store.ListLeaguesByPool(ctx, pool.ID)
				So(err, ShouldBeNil)
				So(leagues, ShouldResemble, []model.League{league})
			})
		})

		Convey("When reading a missing pool", func() {
			_, err := store.GetPool(ctx, "nope")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestSQLiteStoreSquadVersioning(t *testing.T) {
	ctx := context.Background()

	Convey("Given a sqlite store with one squad", t, func() {
		store := newSQLiteStore(t)
		squad, err := store.CreateSquad(ctx, model.Squad{
			LeagueID: "league-1",
			Name:     "Alpha",
			Slots:    []model.Slot{{PlayerID: "p1", CurrentPoints: 450}},
			Ledger: []model.LedgerEntry{{
				Kind:          model.LedgerSubstitution,
				OutSlot:       &model.Slot{PlayerID: "old"},
				ReversedIndex: -1,
				At:            time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
			}},
		})
		So(err, ShouldBeNil)
		So(squad.Version, ShouldEqual, 1)

		Convey("When the squad round-trips through the document column", func() {
			got, err := store.GetSquad(ctx, squad.ID)
			So(err, ShouldBeNil)
			So(got.Slots, ShouldResemble, squad.Slots)
			So(got.Ledger[0].OutSlot.PlayerID, ShouldEqual, "old")
		})

		Convey("When writing with the matching version", func() {
			squad.Name = "Alpha Prime"
			stored, err := store.PutSquad(ctx, squad, 1)
			So(err, ShouldBeNil)
			So(stored.Version, ShouldEqual, 2)

			Convey("Then a stale writer conflicts", func() {
				_, err := store.PutSquad(ctx, squad, 1)
				So(err, ShouldEqual, repository.ErrConflict)
			})
		})

		Convey("When writing an unknown squad", func() {
			_, err := store.PutSquad(ctx, model.Squad{ID: "nope"}, 1)
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When batch-writing the league", func() {
			other, err := store.CreateSquad(ctx, model.Squad{LeagueID: "league-1", Name: "Bravo"})
			So(err, ShouldBeNil)

			squad.TotalPoints = 100
			other.TotalPoints = 200
			So(store.PutSquadBatch(ctx, "league-1", []model.Squad{squad, other}), ShouldBeNil)

			got, _ := store.GetSquad(ctx, other.ID)
			So(got.TotalPoints, ShouldEqual, 200)
			So(got.Version, ShouldEqual, 2)

			Convey("And a batch containing an unknown squad rolls back entirely", func() {
				squad.TotalPoints = 999
				err := store.PutSquadBatch(ctx, "league-1", []model.Squad{squad, {ID: "ghost"}})
				So(err, ShouldEqual, repository.ErrNotFound)

				got, _ := store.GetSquad(ctx, squad.ID)
				So(got.TotalPoints, ShouldEqual, 100)
			})
		})
	})
}

func TestSQLiteStoreSnapshots(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a sqlite store", t, func() {
		store := newSQLiteStore(t)

		Convey("When no snapshot exists", func() {
			_, err := store.LatestSnapshot(ctx, "league-1")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When appending a series", func() {
			first, err := store.AppendSnapshot(ctx, model.Snapshot{
				LeagueID:  "league-1",
				CreatedAt: now,
				Entries:   []model.StandingEntry{{SquadID: "s1", Rank: 1, TotalPoints: 100}},
			})
			So(err, ShouldBeNil)
			second, err := store.AppendSnapshot(ctx, model.Snapshot{LeagueID: "league-1", CreatedAt: now.Add(time.Hour)})
			So(err, ShouldBeNil)

			Convey("Then the latest wins and the series lists oldest first", func() {
				latest, err := store.LatestSnapshot(ctx, "league-1")
				So(err, ShouldBeNil)
				So(latest.ID, ShouldEqual, second.ID)

				series, err := store.ListSnapshots(ctx, "league-1")
				So(err, ShouldBeNil)
				So(series, ShouldHaveLength, 2)
				So(series[0].ID, ShouldEqual, first.ID)
				So(series[0].Entries[0].SquadID, ShouldEqual, "s1")
			})
		})
	})
}
