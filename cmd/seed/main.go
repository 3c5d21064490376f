package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/arminh/squadledger/internal/seed"
	"github.com/arminh/squadledger/pkg/logger"
)

// Default demo season parameters.
const (
	defaultPoolSize     = 120
	defaultSquads       = 12
	defaultSquadSize    = 15
	defaultStartingSize = 11
	defaultRounds       = 8
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		poolSize     = flag.Int("pool", defaultPoolSize, "Number of players in the generated pool")
		squads       = flag.Int("squads", defaultSquads, "Number of squads to create")
		squadSize    = flag.Int("squad-size", defaultSquadSize, "Players per squad")
		startingSize = flag.Int("starting-size", defaultStartingSize, "Scored lineup size")
		rounds       = flag.Int("rounds", defaultRounds, "Number of rounds to simulate")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		randSeed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible runs")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL:      *baseURL,
		PoolSize:     *poolSize,
		Squads:       *squads,
		SquadSize:    *squadSize,
		StartingSize: *startingSize,
		Rounds:       *rounds,
		Timeout:      *timeout,
		Seed:         *randSeed,
		Verbose:      *verbose,
	}
	if err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("demo season failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
