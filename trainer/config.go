package trainer

import (
	"runtime"

	"gomoku/meta"

	"github.com/pkg/errors"
)

type Config struct {
	PopulationSize      int
	GamesPerMatchup     int // even, so both candidates start equally often
	MaxMoves            int // games reaching the cap are draws
	MutationRate        float64
	InitialMutationRate float64
	Player              string // agent configuration, see agent.New
	Workers             int    // concurrent games
	Seed                uint64 // 0 draws a fresh seed
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:      20,
		GamesPerMatchup:     10,
		MaxMoves:            meta.MAX_MOVES,
		MutationRate:        0.15,
		InitialMutationRate: 0.3,
		Player:              "timed:depth=3,budget_ms=100",
		Workers:             runtime.NumCPU(),
	}
}

func (c Config) Validate() error {
	if c.PopulationSize < 2 {
		return errors.Errorf("population size %d, need at least 2", c.PopulationSize)
	}
	if c.GamesPerMatchup <= 0 || c.GamesPerMatchup%2 != 0 {
		return errors.Errorf("games per matchup %d must be positive and even", c.GamesPerMatchup)
	}
	if c.MaxMoves <= 0 {
		return errors.Errorf("max moves %d must be positive", c.MaxMoves)
	}
	if c.MutationRate <= 0 || c.MutationRate >= 1 || c.InitialMutationRate <= 0 || c.InitialMutationRate >= 1 {
		return errors.Errorf("mutation rates %v and %v must be in (0, 1)", c.MutationRate, c.InitialMutationRate)
	}
	if c.Workers <= 0 {
		return errors.Errorf("workers %d must be positive", c.Workers)
	}
	return nil
}
