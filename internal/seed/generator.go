package seed

import (
	"fmt"
	"math/rand"

	"github.com/arminh/squadledger/internal/domain/model"
)

// Player name fragments for generated pools.
var (
	firstNames = []string{
		"Alex", "Bruno", "Carlos", "Diego", "Emil", "Felix", "Goran",
		"Hugo", "Ivan", "Jonas", "Kylian", "Luka", "Mateo", "Nico",
		"Oscar", "Pablo", "Rafa", "Sergio", "Thiago", "Viktor",
	}
	lastNames = []string{
		"Alves", "Becker", "Costa", "Dias", "Ekberg", "Fernandes",
		"Garcia", "Horvat", "Ibanez", "Jensen", "Kovac", "Lopez",
		"Martins", "Novak", "Oliveira", "Pereira", "Quint", "Rossi",
		"Silva", "Torres",
	}
	teams     = []string{"North FC", "South United", "East Rovers", "West Albion", "Harbor Town", "Summit City"}
	positions = []string{"GK", "DEF", "MID", "FWD"}
)

const (
	basePointsRange  = 200.0
	roundPointsRange = 15.0
)

// generatePool builds a pool of players with random career totals.
func generatePool(rng *rand.Rand, size int) []model.PlayerRecord {
	players := make([]model.PlayerRecord, 0, size)
	for i := 0; i < size; i++ {
		players = append(players, model.PlayerRecord{
			ID:          fmt.Sprintf("player-%03d", i+1),
			Name:        firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
			Team:        teams[rng.Intn(len(teams))],
			Position:    positions[rng.Intn(len(positions))],
			TotalPoints: float64(int(rng.Float64() * basePointsRange)),
		})
	}
	return players
}

// advanceRound bumps every player's career total as if a round was played.
// A small fraction of players score nothing.
func advanceRound(rng *rand.Rand, players []model.PlayerRecord) []model.PlayerRecord {
	next := make([]model.PlayerRecord, len(players))
	copy(next, players)
	for i := range next {
		if rng.Intn(5) == 0 {
			continue
		}
		next[i].TotalPoints += float64(int(rng.Float64() * roundPointsRange))
	}
	return next
}

// pickSquad selects n distinct player ids from the pool.
func pickSquad(rng *rand.Rand, players []model.PlayerRecord, n int) []string {
	perm := rng.Perm(len(players))
	ids := make([]string, 0, n)
	for _, idx := range perm[:n] {
		ids = append(ids, players[idx].ID)
	}
	return ids
}
