package trainer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gomoku/game"
	"gomoku/genome"
	"gomoku/metrics"
	"gomoku/searcher/agent"

	"github.com/stretchr/testify/require"
)

// rowAgent plays (0,5), (1,5), (2,5), ...
type rowAgent struct{ n int }

func (a *rowAgent) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	a.n++
	return game.Cell{X: a.n - 1, Y: 5}
}

// originAgent always plays the origin, so its second move forfeits.
type originAgent struct{}

func (originAgent) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	return game.Origin
}

func testConfig() Config {
	return Config{
		PopulationSize:      2,
		GamesPerMatchup:     4,
		MaxMoves:            50,
		MutationRate:        0.15,
		InitialMutationRate: 0.3,
		Player:              "random",
		Workers:             3,
		Seed:                1,
	}
}

func uniform(v int) genome.Weights {
	var w genome.Weights
	for i := range w {
		w[i] = v
	}
	return w
}

type memoryRecorder struct {
	mu          sync.Mutex
	generations [][]metrics.GenerationRecord
}

func (r *memoryRecorder) RecordGeneration(ctx context.Context, generation int, records []metrics.GenerationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations = append(r.generations, records)
	return nil
}

func TestCandidateFitness(t *testing.T) {
	c := Candidate{Wins: 2, Losses: 1, Draws: 1}
	require.Equal(t, 0.625, c.Fitness())
	c.Reset()
	require.Zero(t, c.Games())
	require.Zero(t, c.Fitness(), "No games should mean zero fitness")
}

func TestRunTournament(t *testing.T) {
	strong, weak := uniform(9), uniform(1)
	newTrainer := func(t *testing.T, size int) *Trainer {
		config := testConfig()
		config.PopulationSize = size
		tr, err := New(config)
		require.NoError(t, err)
		tr.newAgent = func(config string, w genome.Weights, seed uint64) (agent.Agent, error) {
			if w == strong {
				return &rowAgent{}, nil
			}
			return originAgent{}, nil
		}
		return tr
	}

	t.Run("winner takes all", func(t *testing.T) {
		tr := newTrainer(t, 2)
		pop := Population{{Weights: strong, Wins: 7}, {Weights: weak}}

		records, err := tr.RunTournament(context.Background(), pop)
		require.NoError(t, err)
		require.Equal(t, 1.0, pop[0].Fitness(), "Candidate winning every game should have fitness 1")
		require.Equal(t, 0.0, pop[1].Fitness(), "Candidate losing every game should have fitness 0")
		require.Equal(t, 4, pop[0].Wins, "Counters should be reset before the tournament")
		require.Len(t, records, 4)

		starters := 0
		for _, r := range records {
			require.Equal(t, 0, r.Winner)
			starters += r.StartingPlayer
		}
		require.Equal(t, 2, starters, "Starting player should alternate")
	})

	t.Run("round robin", func(t *testing.T) {
		tr := newTrainer(t, 3)
		pop := Population{{Weights: weak}, {Weights: strong}, {Weights: uniform(2)}}

		records, err := tr.RunTournament(context.Background(), pop)
		require.NoError(t, err)
		require.Len(t, records, 3*4)
		for i := range pop {
			require.Equal(t, 8, pop[i].Games(), "Every candidate should meet both others")
		}
		require.Equal(t, 1.0, pop[1].Fitness())
		require.Equal(t, 0.25, pop[0].Fitness(), "Weak candidates should split their own matchup")
		require.Equal(t, 1, pop.Best())
	})

	t.Run("cancelled context", func(t *testing.T) {
		tr := newTrainer(t, 2)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tr.RunTournament(ctx, Population{{Weights: strong}, {Weights: weak}})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestEvolvePopulation(t *testing.T) {
	config := testConfig()
	config.PopulationSize = 10
	config.MutationRate = 1e-9
	tr, err := New(config)
	require.NoError(t, err)

	// candidate k has every gene k+1 and fitness falling with k
	pop := make(Population, 10)
	for k := range pop {
		pop[len(pop)-1-k] = Candidate{Weights: uniform(k + 1), Wins: 10 - k, Losses: k}
	}

	next := tr.EvolvePopulation(pop)
	require.Len(t, next, 10)
	require.Equal(t, uniform(1), next[0].Weights, "Best candidate should survive unchanged")
	require.Equal(t, uniform(2), next[1].Weights, "Elites should be the top fifth")
	for _, c := range next {
		require.Zero(t, c.Games(), "New generation should start without a record")
		for _, v := range c.Weights {
			require.LessOrEqual(t, v, 5, "Genes should come from the top half")
		}
	}
}

func TestTrainKeepsBestEver(t *testing.T) {
	config := testConfig()
	config.PopulationSize = 6
	config.GamesPerMatchup = 2
	recorder := &memoryRecorder{}
	tr, err := New(config, WithRecorder(recorder))
	require.NoError(t, err)
	tr.play = func(w1, w2 genome.Weights, first bool, seeds [2]uint64) (Outcome, metrics.GameMetric, error) {
		switch {
		case w1[genome.FourOpen] > w2[genome.FourOpen]:
			return Win, metrics.GameMetric{}, nil
		case w1[genome.FourOpen] < w2[genome.FourOpen]:
			return Loss, metrics.GameMetric{}, nil
		}
		return Draw, metrics.GameMetric{}, nil
	}

	got, err := tr.Train(context.Background(), 3, genome.Default())
	require.NoError(t, err)
	require.Len(t, recorder.generations, 3)

	want := genome.Default()
	bestFitness := 0.0
	for gen, records := range recorder.generations {
		require.Len(t, records, 6)
		require.Equal(t, 1, records[0].Rank)
		require.Equal(t, gen, records[0].Generation)
		if records[0].Fitness > bestFitness {
			bestFitness = records[0].Fitness
			want = records[0].Weights
		}
	}
	require.Equal(t, want, got, "Should return the best weights of any generation")
	require.Greater(t, bestFitness, 0.5)
}

func TestTrainWithAgents(t *testing.T) {
	config := testConfig()
	config.PopulationSize = 3
	config.GamesPerMatchup = 2
	config.MaxMoves = 30
	config.Player = "tactical:level=2"
	writer, err := metrics.NewWriter(t.TempDir())
	require.NoError(t, err)
	tr, err := New(config, WithWriter(writer))
	require.NoError(t, err)

	_, err = tr.Train(context.Background(), 2, genome.Default())
	require.NoError(t, err)
	for _, name := range []string{"generation_000.csv", "games_000.csv", "generation_001.csv", "games_001.csv"} {
		_, err := os.Stat(filepath.Join(writer.Dir(), name))
		require.NoError(t, err, "Should write %s", name)
	}
}

func TestConfig(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	for name, edit := range map[string]func(*Config){
		"odd games":      func(c *Config) { c.GamesPerMatchup = 3 },
		"tiny":           func(c *Config) { c.PopulationSize = 1 },
		"no moves":       func(c *Config) { c.MaxMoves = 0 },
		"rate too large": func(c *Config) { c.MutationRate = 1.5 },
		"no workers":     func(c *Config) { c.Workers = 0 },
		"bad player":     func(c *Config) { c.Player = "oracle" },
	} {
		t.Run(name, func(t *testing.T) {
			config := testConfig()
			edit(&config)
			_, err := New(config)
			require.Error(t, err)
		})
	}
}
