package experiments

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"gomoku/genome"
	"gomoku/metrics"

	"github.com/stretchr/testify/require"
)

func smallExperiment() Experiment {
	a := metrics.AgentConfig{ID: 1, Config: "tactical"}
	b := metrics.AgentConfig{ID: 2, Config: "random"}
	return Experiment{
		Name:     "small",
		Configs:  []metrics.AgentConfig{a, b},
		MatchUps: []MatchUp{{Agent1: a, Agent2: b}},
		NumGames: 4,
		MaxMoves: 30,
		Weights:  genome.Default(),
		Seed:     7,
	}
}

func TestRun(t *testing.T) {
	t.Run("tallies every game", func(t *testing.T) {
		tallies, err := Run(context.Background(), smallExperiment(), nil)
		require.NoError(t, err)
		require.Len(t, tallies, 1)
		tally := tallies[0]
		require.Equal(t, 4, tally.Wins+tally.Losses+tally.Draws, "Should count each game once")
		require.Equal(t, 1, tally.Agent1.ID)
	})

	t.Run("is deterministic for a fixed seed", func(t *testing.T) {
		first, err := Run(context.Background(), smallExperiment(), nil)
		require.NoError(t, err)
		second, err := Run(context.Background(), smallExperiment(), nil)
		require.NoError(t, err)
		require.Equal(t, first, second, "Should replay the same games")
	})

	t.Run("writes records", func(t *testing.T) {
		writer, err := metrics.NewWriter(t.TempDir())
		require.NoError(t, err)
		_, err = Run(context.Background(), smallExperiment(), writer)
		require.NoError(t, err)
		for _, name := range []string{"agent_configs.csv", "small_games.csv", "small_moves.csv"} {
			_, err := os.Stat(filepath.Join(writer.Dir(), name))
			require.NoError(t, err, "Should write %s", name)
		}
	})

	t.Run("numbers moves and games by agent", func(t *testing.T) {
		writer, err := metrics.NewWriter(t.TempDir())
		require.NoError(t, err)
		_, err = Run(context.Background(), smallExperiment(), writer)
		require.NoError(t, err)

		games := readCSV(t, filepath.Join(writer.Dir(), "small_games.csv"))
		moves := readCSV(t, filepath.Join(writer.Dir(), "small_moves.csv"))
		starters := map[string]string{}
		for _, row := range games[1:] {
			starters[row[0]] = row[4] // id -> starting_player
		}
		require.Equal(t, map[string]string{"1": "0", "2": "1", "3": "0", "4": "1"}, starters,
			"Should alternate the starting agent")
		for _, row := range moves[1:] {
			if row[1] == "1" { // first step
				require.Equal(t, starters[row[0]], row[2], "Should credit game %s's first move to its starter", row[0])
			}
		}
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, smallExperiment(), nil)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects a bad config", func(t *testing.T) {
		e := smallExperiment()
		e.MatchUps[0].Agent2.Config = "chess"
		_, err := Run(context.Background(), e, nil)
		require.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	e, err := Lookup("pruning", 2, genome.Default(), 1)
	require.NoError(t, err)
	require.Len(t, e.MatchUps, 3)
	require.Len(t, e.Configs, 6)

	e, err = Lookup("strength", 2, genome.Default(), 1)
	require.NoError(t, err)
	require.Len(t, e.MatchUps, len(strengthConfigs))
	require.Equal(t, 0, e.MatchUps[0].Agent1.ID, "Should use the baseline as agent1")

	_, err = Lookup("nope", 2, genome.Default(), 1)
	require.Error(t, err)
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
