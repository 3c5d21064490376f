package model_test

import (
	"testing"

	"github.com/arminh/squadledger/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRole(t *testing.T) {
	Convey("Given the special roles", t, func() {
		Convey("Then each carries its multiplier", func() {
			So(model.RoleCaptain.Multiplier(), ShouldEqual, 2.0)
			So(model.RoleViceCaptain.Multiplier(), ShouldEqual, 1.5)
			So(model.RoleBonus.Multiplier(), ShouldEqual, 1.25)
		})

		Convey("Then an unknown role weighs 1.0 so it can never inflate", func() {
			So(model.Role("coach").Multiplier(), ShouldEqual, 1.0)
			So(model.Role("coach").Valid(), ShouldBeFalse)
		})

		Convey("Then the precedence order starts with the captain", func() {
			So(model.Roles(), ShouldResemble, []model.Role{model.RoleCaptain, model.RoleViceCaptain, model.RoleBonus})
		})
	})
}

func TestRoleFor(t *testing.T) {
	Convey("Given a squad where one player holds two role pointers", t, func() {
		squad := &model.Squad{CaptainID: "p1", BonusID: "p1", ViceCaptainID: "p2"}

		Convey("When resolving the player's role", func() {
			role, held := squad.RoleFor("p1")

			Convey("Then precedence grants at most one multiplier", func() {
				So(held, ShouldBeTrue)
				So(role, ShouldEqual, model.RoleCaptain)
			})
		})

		Convey("When resolving a player without a role", func() {
			_, held := squad.RoleFor("p3")
			So(held, ShouldBeFalse)
		})

		Convey("When resolving the empty id", func() {
			squad.CaptainID = ""
			_, held := squad.RoleFor("")
			So(held, ShouldBeFalse)
		})
	})
}

func TestQuotaSet(t *testing.T) {
	Convey("Given a quota set", t, func() {
		quotas := model.QuotaSet{
			General: model.Quota{Used: 1, Remaining: 9},
			Bench:   model.Quota{Remaining: 4},
		}

		Convey("When fetching a known category", func() {
			q := quotas.Get(model.TransferGeneral)
			So(q, ShouldNotBeNil)

			Convey("Then mutations write through to the set", func() {
				q.Used++
				q.Remaining--
				So(quotas.General.Used, ShouldEqual, 2)
				So(quotas.General.Remaining, ShouldEqual, 8)
			})
		})

		Convey("When fetching an unknown category", func() {
			So(quotas.Get(model.TransferCategory("wildcard")), ShouldBeNil)
			So(model.TransferCategory("wildcard").Valid(), ShouldBeFalse)
		})
	})
}

func TestRoleCheckpoint(t *testing.T) {
	Convey("Given a role checkpoint", t, func() {
		Convey("When it was explicitly assigned", func() {
			cp := model.RoleAssignedAt(450)
			So(cp.Effective(380), ShouldEqual, 450)
		})

		Convey("When it was never set", func() {
			var cp model.RoleCheckpoint

			Convey("Then the join baseline is the fallback", func() {
				So(cp.Effective(380), ShouldEqual, 380)
			})
		})
	})
}

func TestSquadClone(t *testing.T) {
	Convey("Given a squad with a ledger snapshot", t, func() {
		original := model.Squad{
			ID:    "s1",
			Slots: []model.Slot{{PlayerID: "a", CurrentPoints: 100}},
			Ledger: []model.LedgerEntry{{
				Kind:    model.LedgerSubstitution,
				OutSlot: &model.Slot{PlayerID: "old", CurrentPoints: 50},
			}},
		}

		Convey("When cloning and mutating the copy", func() {
			clone := original.Clone()
			clone.Slots[0].CurrentPoints = 999
			clone.Ledger[0].OutSlot.CurrentPoints = 999

			Convey("Then the original is untouched", func() {
				So(original.Slots[0].CurrentPoints, ShouldEqual, 100)
				So(original.Ledger[0].OutSlot.CurrentPoints, ShouldEqual, 50)
			})
		})
	})
}

func TestNewSlot(t *testing.T) {
	Convey("Given a pool record", t, func() {
		rec := model.PlayerRecord{ID: "p", Name: "Player", Team: "North FC", Position: "MID", TotalPoints: 700}

		Convey("When building a slot from it", func() {
			slot := model.NewSlot(rec)

			Convey("Then the join checkpoint equals the current total", func() {
				So(slot.PointsAtJoining, ShouldEqual, 700)
				So(slot.CurrentPoints, ShouldEqual, 700)
				So(slot.RoleCheckpoint.Assigned, ShouldBeFalse)
			})
		})
	})
}
