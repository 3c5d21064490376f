package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/arminh/squadledger/internal/adapters/http/api"
	"github.com/arminh/squadledger/internal/app"
	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

const testMaxStandingsLimit = 50

func newTestMux() *http.ServeMux {
	svc := app.New(
		app.WithClock(func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }),
		app.WithDefaultQuotas(model.QuotaSet{General: model.Quota{Remaining: 1}}),
	)
	mux := http.NewServeMux()
	api.NewServer(svc, testMaxStandingsLimit).Register(context.Background(), mux)
	return mux
}

func doJSON(mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// seedSeason drives the API through pool, league and one squad creation.
func seedSeason(t *testing.T, mux *http.ServeMux) (model.PlayerPool, model.League, model.Squad) {
	t.Helper()
	rec := doJSON(mux, http.MethodPost, "/pools", map[string]any{
		"name": "Pool",
		"players": []model.PlayerRecord{
			{ID: "p1", Name: "One", TotalPoints: 450},
			{ID: "p2", Name: "Two", TotalPoints: 380},
			{ID: "p3", Name: "Three", TotalPoints: 520},
			{ID: "p4", Name: "Four", TotalPoints: 700},
		},
	})
	So(rec.Code, ShouldEqual, http.StatusCreated)
	pool := decode[model.PlayerPool](t, rec)

	rec = doJSON(mux, http.MethodPost, "/leagues", map[string]any{
		"pool_id":       pool.ID,
		"name":          "League",
		"starting_size": 2,
	})
	So(rec.Code, ShouldEqual, http.StatusCreated)
	league := decode[model.League](t, rec)

	rec = doJSON(mux, http.MethodPost, "/squads", map[string]any{
		"league_id":  league.ID,
		"owner_id":   "owner-1",
		"name":       "Alpha",
		"player_ids": []string{"p1", "p2", "p3"},
	})
	So(rec.Code, ShouldEqual, http.StatusCreated)
	squad := decode[model.Squad](t, rec)
	return pool, league, squad
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux()

	Convey("Given the API routes", t, func() {
		Convey("When requesting /healthz", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "ok")
		})

		Convey("When posting to /healthz", func() {
			rec := doJSON(mux, http.MethodPost, "/healthz", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPoolEndpoints(t *testing.T) {
	mux := newTestMux()

	Convey("Given a seeded season", t, func() {
		pool, _, squad := seedSeason(t, mux)

		Convey("When fetching the pool", func() {
			rec := doJSON(mux, http.MethodGet, "/pools/"+pool.ID, nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			got := decode[model.PlayerPool](t, rec)
			So(got.Players, ShouldHaveLength, 4)
		})

		Convey("When fetching an unknown pool", func() {
			rec := doJSON(mux, http.MethodGet, "/pools/nope", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When creating a pool without a name", func() {
			rec := doJSON(mux, http.MethodPost, "/pools", map[string]any{"players": []model.PlayerRecord{}})
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When updating the pool and triggering the cascade", func() {
			players := pool.Players
			players[0].TotalPoints += 100 // p1
			rec := doJSON(mux, http.MethodPut, "/pools/"+pool.ID, map[string]any{
				"players": players,
				"message": "round 1",
			})
			So(rec.Code, ShouldEqual, http.StatusOK)

			rec = doJSON(mux, http.MethodPost, "/pools/"+pool.ID+"/recalculate", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			report := decode[app.CascadeReport](t, rec)
			So(report.LeaguesProcessed, ShouldEqual, 1)

			Convey("Then the squad total reflects the new points", func() {
				rec := doJSON(mux, http.MethodGet, "/squads/"+squad.ID, nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				got := decode[model.Squad](t, rec)
				So(got.TotalPoints, ShouldEqual, squad.TotalPoints+100)
			})
		})
	})
}

func TestSquadEndpoints(t *testing.T) {
	mux := newTestMux()

	Convey("Given a seeded season", t, func() {
		_, _, squad := seedSeason(t, mux)

		Convey("When scoring the squad on demand", func() {
			rec := doJSON(mux, http.MethodGet, "/squads/"+squad.ID+"/score", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "total")
		})

		Convey("When assigning the captain role", func() {
			rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/roles", map[string]any{
				"expected_version": squad.Version,
				"role":             "captain",
				"player_id":        "p1",
			})
			So(rec.Code, ShouldEqual, http.StatusOK)
			got := decode[model.Squad](t, rec)
			So(got.CaptainID, ShouldEqual, "p1")

			Convey("And a stale expected version conflicts", func() {
				rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/roles", map[string]any{
					"expected_version": squad.Version,
					"role":             "vice_captain",
					"player_id":        "p2",
				})
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(rec.Body.String(), ShouldContainSubstring, "version_conflict")
			})
		})

		Convey("When assigning an unknown role", func() {
			rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/roles", map[string]any{
				"expected_version": squad.Version,
				"role":             "coach",
				"player_id":        "p1",
			})
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When substituting a player", func() {
			rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/transfers", map[string]any{
				"expected_version": squad.Version,
				"out":              "p3",
				"in":               "p4",
				"category":         "general",
			})
			So(rec.Code, ShouldEqual, http.StatusOK)
			got := decode[model.Squad](t, rec)

			Convey("Then a second transfer exhausts the single-unit quota", func() {
				rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/transfers", map[string]any{
					"expected_version": got.Version,
					"out":              "p4",
					"in":               "p3",
					"category":         "general",
				})
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(rec.Body.String(), ShouldContainSubstring, "quota_exhausted")
			})

			Convey("Then reversing the substitution works exactly once", func() {
				index := len(got.Ledger) - 1
				rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/reversals", map[string]any{
					"expected_version": got.Version,
					"ledger_index":     index,
				})
				So(rec.Code, ShouldEqual, http.StatusOK)
				reversed := decode[model.Squad](t, rec)

				rec = doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/reversals", map[string]any{
					"expected_version": reversed.Version,
					"ledger_index":     index,
				})
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(rec.Body.String(), ShouldContainSubstring, "invalid_reversal")
			})
		})

		Convey("When substituting in an unknown player", func() {
			rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/transfers", map[string]any{
				"expected_version": squad.Version,
				"out":              "p3",
				"in":               "ghost",
				"category":         "general",
			})
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(rec.Body.String(), ShouldContainSubstring, "player_unavailable")
		})

		Convey("When sending a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/squads/"+squad.ID+"/transfers", bytes.NewBufferString("{nope"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching an unknown squad", func() {
			rec := doJSON(mux, http.MethodGet, "/squads/nope", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStandingsEndpoints(t *testing.T) {
	mux := newTestMux()

	Convey("Given a submitted squad with a snapshot", t, func() {
		_, league, squad := seedSeason(t, mux)
		rec := doJSON(mux, http.MethodPost, "/squads/"+squad.ID+"/submit", map[string]any{
			"expected_version": squad.Version,
		})
		So(rec.Code, ShouldEqual, http.StatusOK)
		rec = doJSON(mux, http.MethodPost, "/leagues/"+league.ID+"/snapshots", nil)
		So(rec.Code, ShouldEqual, http.StatusCreated)

		Convey("When fetching standings", func() {
			rec := doJSON(mux, http.MethodGet, "/leagues/"+league.ID+"/standings", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			snap := decode[model.Snapshot](t, rec)
			So(snap.Entries, ShouldHaveLength, 1)
			So(snap.Entries[0].Rank, ShouldEqual, 1)
		})

		Convey("When the limit query exceeds the cap", func() {
			rec := doJSON(mux, http.MethodGet, "/leagues/"+league.ID+"/standings?limit=999", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(rec.Body.String(), ShouldContainSubstring, "limit_exceeded")
		})

		Convey("When the limit query is malformed", func() {
			rec := doJSON(mux, http.MethodGet, "/leagues/"+league.ID+"/standings?limit=abc", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching the rank streak", func() {
			rec := doJSON(mux, http.MethodGet, "/leagues/"+league.ID+"/streak?squad_id="+squad.ID, nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"streak":1`)
		})

		Convey("When the streak query misses the squad id", func() {
			rec := doJSON(mux, http.MethodGet, "/leagues/"+league.ID+"/streak", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When repairing league roles", func() {
			rec := doJSON(mux, http.MethodPost, "/leagues/"+league.ID+"/repairs/roles", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"repaired":1`)
		})

		Convey("When a league has no snapshot yet", func() {
			recLeague := doJSON(mux, http.MethodPost, "/leagues", map[string]any{
				"pool_id": league.PoolID,
				"name":    "Empty",
			})
			So(recLeague.Code, ShouldEqual, http.StatusCreated)
			empty := decode[model.League](t, recLeague)

			rec := doJSON(mux, http.MethodGet, "/leagues/"+empty.ID+"/standings", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
