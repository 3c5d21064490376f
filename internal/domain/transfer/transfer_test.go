package transfer_test

import (
	"testing"
	"time"

	"github.com/arminh/squadledger/internal/domain/model"
	"github.com/arminh/squadledger/internal/domain/scoring"
	"github.com/arminh/squadledger/internal/domain/transfer"
	. "github.com/smartystreets/goconvey/convey"
)

func testSquad() *model.Squad {
	return &model.Squad{
		ID: "squad-1",
		Slots: []model.Slot{
			{PlayerID: "out", Name: "Out Player", CurrentPoints: 480, PointsAtJoining: 380},
			{PlayerID: "keep", Name: "Keep Player", CurrentPoints: 200, PointsAtJoining: 150},
		},
		Quotas: model.QuotaSet{
			General: model.Quota{Remaining: 2},
			Bench:   model.Quota{Remaining: 1},
		},
	}
}

func TestSubstitute(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	incoming := model.PlayerRecord{ID: "in", Name: "In Player", TotalPoints: 700}

	Convey("Given a squad with transfer quota remaining", t, func() {
		squad := testSquad()

		Convey("When substituting the outgoing player", func() {
			err := transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, false, now)
			So(err, ShouldBeNil)

			Convey("Then the departing contribution is banked at weight 1.0", func() {
				So(squad.BankedPoints, ShouldEqual, 100)
			})

			Convey("Then the incoming slot starts with zero contribution", func() {
				slot := squad.Slots[0]
				So(slot.PlayerID, ShouldEqual, "in")
				So(slot.PointsAtJoining, ShouldEqual, 700)
				So(scoring.Contribution(slot.CurrentPoints, slot.PointsAtJoining), ShouldEqual, 0)
			})

			Convey("Then the quota counter moves one unit", func() {
				So(squad.Quotas.General.Used, ShouldEqual, 1)
				So(squad.Quotas.General.Remaining, ShouldEqual, 1)
			})

			Convey("Then the ledger records the removed slot snapshot", func() {
				So(squad.Ledger, ShouldHaveLength, 1)
				entry := squad.Ledger[0]
				So(entry.Kind, ShouldEqual, model.LedgerSubstitution)
				So(entry.BankedDelta, ShouldEqual, 100)
				So(entry.OutSlot, ShouldNotBeNil)
				So(entry.OutSlot.PlayerID, ShouldEqual, "out")
				So(entry.OutSlot.CurrentPoints, ShouldEqual, 480)
			})

			Convey("And the squad's realized value is conserved", func() {
				// Banked 100 equals exactly what the outgoing slot had accrued.
				total := scoring.Score(squad, 2).Total
				So(total, ShouldEqual, 100+scoring.Contribution(200, 150))
			})
		})

		Convey("When the outgoing player held the captain role", func() {
			squad.CaptainID = "out"

			Convey("And auto-reassignment is off", func() {
				So(transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, false, now), ShouldBeNil)

				Convey("Then the role pointer is unset", func() {
					So(squad.CaptainID, ShouldBeEmpty)
				})
			})

			Convey("And auto-reassignment is on", func() {
				So(transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, true, now), ShouldBeNil)

				Convey("Then the role follows the incoming player with a fresh checkpoint", func() {
					So(squad.CaptainID, ShouldEqual, "in")
					So(squad.Slots[0].RoleCheckpoint.Assigned, ShouldBeTrue)
					So(squad.Slots[0].RoleCheckpoint.Points, ShouldEqual, 700)
				})
			})
		})

		Convey("When the category's quota is exhausted", func() {
			squad.Quotas.General.Remaining = 0
			err := transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, false, now)

			Convey("Then the transfer is rejected with no state change", func() {
				So(err, ShouldEqual, transfer.ErrQuotaExhausted)
				So(squad.Slots[0].PlayerID, ShouldEqual, "out")
				So(squad.BankedPoints, ShouldEqual, 0)
				So(squad.Ledger, ShouldBeEmpty)
			})
		})

		Convey("When the outgoing player is not in the squad", func() {
			err := transfer.Substitute(squad, "ghost", incoming, model.TransferGeneral, 2, false, now)
			So(err, ShouldEqual, transfer.ErrPlayerNotInSquad)
		})

		Convey("When the incoming player is already in the squad", func() {
			err := transfer.Substitute(squad, "out", model.PlayerRecord{ID: "keep"}, model.TransferGeneral, 2, false, now)
			So(err, ShouldEqual, transfer.ErrPlayerAlreadyInSquad)
		})

		Convey("When the category is unknown", func() {
			err := transfer.Substitute(squad, "out", incoming, model.TransferCategory("wildcard"), 2, false, now)
			So(err, ShouldEqual, transfer.ErrUnknownCategory)
		})

		Convey("When the outgoing player holds two roles", func() {
			squad.CaptainID = "out"
			squad.BonusID = "out"

			Convey("And auto-reassignment is off", func() {
				So(transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, false, now), ShouldBeNil)

				Convey("Then both pointers are unset", func() {
					So(squad.CaptainID, ShouldBeEmpty)
					So(squad.BonusID, ShouldBeEmpty)
				})
			})

			Convey("And auto-reassignment is on", func() {
				So(transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, true, now), ShouldBeNil)

				Convey("Then both pointers follow the incoming player", func() {
					So(squad.CaptainID, ShouldEqual, "in")
					So(squad.BonusID, ShouldEqual, "in")
				})
			})
		})
	})

	Convey("Given a squad whose outgoing player sits on the bench", t, func() {
		squad := &model.Squad{
			ID: "squad-2",
			Slots: []model.Slot{
				{PlayerID: "starter", CurrentPoints: 100, PointsAtJoining: 50},
				{PlayerID: "bench", CurrentPoints: 400, PointsAtJoining: 100},
			},
			Quotas: model.QuotaSet{Bench: model.Quota{Remaining: 1}},
		}
		before := scoring.Score(squad, 1).Total
		So(before, ShouldEqual, 50)

		Convey("When substituting the bench player", func() {
			So(transfer.Substitute(squad, "bench", incoming, model.TransferBench, 1, false, now), ShouldBeNil)

			Convey("Then nothing is banked and the total is conserved", func() {
				// The bench accrual never counted, so there is no earning
				// right to offset.
				So(squad.BankedPoints, ShouldEqual, 0)
				So(squad.Ledger[0].BankedDelta, ShouldEqual, 0)
				So(scoring.Score(squad, 1).Total, ShouldEqual, before)
			})

			Convey("Then reversing it also leaves the total unchanged", func() {
				So(transfer.Reverse(squad, 0, now.Add(time.Hour)), ShouldBeNil)
				So(squad.BankedPoints, ShouldEqual, 0)
				So(scoring.Score(squad, 1).Total, ShouldEqual, before)
			})
		})
	})
}

func TestAssignRole(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a squad", t, func() {
		squad := testSquad()

		Convey("When assigning the captain role", func() {
			So(transfer.AssignRole(squad, model.RoleCaptain, "out", now), ShouldBeNil)

			Convey("Then the checkpoint freezes at the current career total", func() {
				So(squad.CaptainID, ShouldEqual, "out")
				So(squad.Slots[0].RoleCheckpoint, ShouldResemble, model.RoleAssignedAt(480))
			})

			Convey("Then only future gains earn the multiplier", func() {
				So(scoring.Score(squad, 2).RolePoints.Captain, ShouldEqual, 100)
				squad.Slots[0].CurrentPoints = 500
				// 100 base + (500-480)*2.0
				So(scoring.Score(squad, 2).RolePoints.Captain, ShouldEqual, 140)
			})

			Convey("And reassigning to the current holder is a no-op", func() {
				ledgerLen := len(squad.Ledger)
				So(transfer.AssignRole(squad, model.RoleCaptain, "out", now), ShouldBeNil)
				So(squad.Ledger, ShouldHaveLength, ledgerLen)
			})

			Convey("And moving the role clears the displaced holder's checkpoint", func() {
				So(transfer.AssignRole(squad, model.RoleCaptain, "keep", now), ShouldBeNil)
				So(squad.CaptainID, ShouldEqual, "keep")
				So(squad.Slots[0].RoleCheckpoint.Assigned, ShouldBeFalse)
				So(squad.Slots[1].RoleCheckpoint, ShouldResemble, model.RoleAssignedAt(200))
			})
		})

		Convey("When the displaced holder still holds another role", func() {
			So(transfer.AssignRole(squad, model.RoleCaptain, "out", now), ShouldBeNil)
			So(transfer.AssignRole(squad, model.RoleBonus, "out", now), ShouldBeNil)
			So(transfer.AssignRole(squad, model.RoleCaptain, "keep", now), ShouldBeNil)

			Convey("Then its checkpoint survives", func() {
				So(squad.BonusID, ShouldEqual, "out")
				So(squad.Slots[0].RoleCheckpoint.Assigned, ShouldBeTrue)
			})
		})

		Convey("When the player is not a squad member", func() {
			So(transfer.AssignRole(squad, model.RoleCaptain, "ghost", now), ShouldEqual, transfer.ErrPlayerNotInSquad)
		})

		Convey("When the role is unknown", func() {
			So(transfer.AssignRole(squad, model.Role("coach"), "out", now), ShouldEqual, transfer.ErrUnknownRole)
		})
	})
}

func TestReverse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	incoming := model.PlayerRecord{ID: "in", Name: "In Player", TotalPoints: 700}

	Convey("Given a squad with one applied substitution", t, func() {
		squad := testSquad()
		before := squad.Clone()
		So(transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, false, now), ShouldBeNil)

		Convey("When reversing it", func() {
			So(transfer.Reverse(squad, 0, now.Add(time.Hour)), ShouldBeNil)

			Convey("Then the removed slot is restored exactly", func() {
				So(squad.Slots[0], ShouldResemble, before.Slots[0])
			})

			Convey("Then the banked delta is taken back", func() {
				So(squad.BankedPoints, ShouldEqual, 0)
			})

			Convey("Then the quota unit is refunded", func() {
				So(squad.Quotas.General, ShouldResemble, before.Quotas.General)
			})

			Convey("Then the ledger keeps both entries", func() {
				So(squad.Ledger, ShouldHaveLength, 2)
				So(squad.Ledger[1].Kind, ShouldEqual, model.LedgerReversal)
				So(squad.Ledger[1].ReversedIndex, ShouldEqual, 0)
			})

			Convey("And reversing it a second time fails", func() {
				So(transfer.Reverse(squad, 0, now.Add(2*time.Hour)), ShouldEqual, transfer.ErrInvalidReversal)
			})
		})

		Convey("When a role followed the incoming player", func() {
			So(transfer.AssignRole(squad, model.RoleCaptain, "in", now), ShouldBeNil)
			So(transfer.Reverse(squad, 0, now.Add(time.Hour)), ShouldBeNil)

			Convey("Then the pointer follows the restored player back", func() {
				So(squad.CaptainID, ShouldEqual, "out")
			})
		})

		Convey("When the target entry is not a substitution", func() {
			So(transfer.AssignRole(squad, model.RoleCaptain, "in", now), ShouldBeNil)
			So(transfer.Reverse(squad, 1, now), ShouldEqual, transfer.ErrInvalidReversal)
		})

		Convey("When the index is out of bounds", func() {
			So(transfer.Reverse(squad, -1, now), ShouldEqual, transfer.ErrInvalidReversal)
			So(transfer.Reverse(squad, 99, now), ShouldEqual, transfer.ErrInvalidReversal)
		})

		Convey("When the incoming player has since left the squad", func() {
			So(transfer.Substitute(squad, "in", model.PlayerRecord{ID: "other", TotalPoints: 10}, model.TransferBench, 2, false, now), ShouldBeNil)

			Convey("Then the original substitution cannot be reversed", func() {
				So(transfer.Reverse(squad, 0, now), ShouldEqual, transfer.ErrInvalidReversal)
			})
		})
	})

	Convey("Given a substitution that unset the outgoing player's role", t, func() {
		squad := testSquad()
		squad.CaptainID = "out"
		So(transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, false, now), ShouldBeNil)
		So(squad.CaptainID, ShouldBeEmpty)

		Convey("When reversing it", func() {
			So(transfer.Reverse(squad, 0, now.Add(time.Hour)), ShouldBeNil)

			Convey("Then the pointer is restored to the outgoing player", func() {
				So(squad.CaptainID, ShouldEqual, "out")
			})
		})

		Convey("When the role was reassigned before the reversal", func() {
			So(transfer.AssignRole(squad, model.RoleCaptain, "keep", now), ShouldBeNil)
			So(transfer.Reverse(squad, 0, now.Add(time.Hour)), ShouldBeNil)

			Convey("Then the later assignment wins", func() {
				So(squad.CaptainID, ShouldEqual, "keep")
			})
		})
	})

	Convey("Given a reversal that would drive the bank negative", t, func() {
		squad := testSquad()
		So(transfer.Substitute(squad, "out", incoming, model.TransferGeneral, 2, false, now), ShouldBeNil)
		squad.BankedPoints = 40 // partially folded elsewhere

		Convey("When reversing", func() {
			So(transfer.Reverse(squad, 0, now), ShouldBeNil)

			Convey("Then the bank clamps at zero", func() {
				So(squad.BankedPoints, ShouldEqual, 0)
			})
		})
	})
}
