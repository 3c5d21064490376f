// Package seed drives a demo season against a running ledger instance over
// its HTTP API: pool, league, squads, transfers, cascade and standings.
package seed

import "time"

// Config holds the demo season parameters.
type Config struct {
	BaseURL      string
	PoolSize     int
	Squads       int
	SquadSize    int
	StartingSize int
	Rounds       int
	Timeout      time.Duration
	Seed         int64
	Verbose      bool
}

// Stats tracks what the run did.
type Stats struct {
	StartTime     time.Time
	PlayersSeeded int
	SquadsCreated int
	Substitutions int
	RoleChanges   int
	Snapshots     int
}
