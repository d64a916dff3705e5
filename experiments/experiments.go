package experiments

import (
	"context"
	"fmt"

	"gomoku/engine"
	"gomoku/genome"
	"gomoku/metrics"
	"gomoku/searcher/agent"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const NumGames = 20 // Per match up

// MatchUp pairs two agent configs. Agent1 plays X in even games and O in odd
// ones.
type MatchUp struct {
	Agent1 metrics.AgentConfig
	Agent2 metrics.AgentConfig
}

// Tally counts results from Agent1's side.
type Tally struct {
	MatchUp
	Wins   int
	Losses int
	Draws  int
}

func (t Tally) String() string {
	return fmt.Sprintf("agent%d vs agent%d: %d-%d-%d", t.Agent1.ID, t.Agent2.ID, t.Wins, t.Losses, t.Draws)
}

type Experiment struct {
	Name     string
	Configs  []metrics.AgentConfig
	MatchUps []MatchUp
	NumGames int
	MaxMoves int
	Weights  genome.Weights
	Seed     uint64 // 0 draws fresh seeds per agent
}

var strengthConfigs = []metrics.AgentConfig{
	{ID: 1, Config: "random"},
	{ID: 2, Config: "tactical:level=2"},
	{ID: 3, Config: "hybrid"},
	{ID: 4, Config: "timed:depth=3,budget_ms=50"},
	{ID: 5, Config: "minimax:depth=3,top_n=8"},
}

// StrengthExperiment pairs each agent kind against the default minimax
// baseline.
func StrengthExperiment(numGames int, weights genome.Weights, seed uint64) Experiment {
	baseline := metrics.AgentConfig{ID: 0, Config: agent.DefaultConfig}
	matchUps := []MatchUp{}
	for _, config := range strengthConfigs {
		matchUps = append(matchUps, MatchUp{Agent1: baseline, Agent2: config})
	}
	return Experiment{
		Name:     "strength",
		Configs:  append([]metrics.AgentConfig{baseline}, strengthConfigs...),
		MatchUps: matchUps,
		NumGames: numGames,
		Weights:  weights,
		Seed:     seed,
	}
}

// PruningExperiment plays minimax with and without alpha-beta cutoffs at
// increasing depths. Both sides search to the same values, so node counts
// and durations carry the comparison; moves still differ through random
// tie-breaks.
func PruningExperiment(numGames int, weights genome.Weights, seed uint64) Experiment {
	configs := []metrics.AgentConfig{}
	matchUps := []MatchUp{}
	for depth := 2; depth <= 4; depth++ {
		pruned := metrics.AgentConfig{ID: len(configs) + 1, Config: fmt.Sprintf("minimax:depth=%d,ab=true", depth)}
		full := metrics.AgentConfig{ID: len(configs) + 2, Config: fmt.Sprintf("minimax:depth=%d,ab=false", depth)}
		configs = append(configs, pruned, full)
		matchUps = append(matchUps, MatchUp{Agent1: pruned, Agent2: full})
	}
	return Experiment{
		Name:     "pruning",
		Configs:  configs,
		MatchUps: matchUps,
		NumGames: numGames,
		Weights:  weights,
		Seed:     seed,
	}
}

// Lookup returns the named experiment.
func Lookup(name string, numGames int, weights genome.Weights, seed uint64) (Experiment, error) {
	switch name {
	case "strength":
		return StrengthExperiment(numGames, weights, seed), nil
	case "pruning":
		return PruningExperiment(numGames, weights, seed), nil
	}
	return Experiment{}, errors.Errorf("unknown experiment %q", name)
}

// Run plays every match up and stores configs, games and moves through
// writer when it is non-nil.
func Run(ctx context.Context, e Experiment, writer *metrics.Writer) ([]Tally, error) {
	numGames := e.NumGames
	if numGames <= 0 {
		numGames = NumGames
	}

	count := 0
	tallies := make([]Tally, 0, len(e.MatchUps))
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", e.Name)

	for mi, matchUp := range e.MatchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(e.MatchUps), matchUp.Agent1, matchUp.Agent2)

		tally := Tally{MatchUp: matchUp}
		for i := 0; i < numGames; i++ {
			if err := ctx.Err(); err != nil {
				return tallies, err
			}

			seed := e.Seed
			if seed != 0 {
				seed += uint64(2 * count)
			}
			result, err := runGame(matchUp, i%2 == 0, e.Weights, seed, e.MaxMoves)
			if err != nil {
				return tallies, errors.WithMessagef(err, "matchup %d game %d", mi+1, i+1)
			}
			count++
			metric := result.GameMetric

			switch metric.Winner {
			case 0:
				tally.Wins++
			case 1:
				tally.Losses++
			default:
				tally.Draws++
			}

			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     matchUp.Agent1.ID,
				Agent2:     matchUp.Agent2.ID,
				GameMetric: metric,
			})
			for _, mm := range result.MoveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Debug().Msgf("completed matchup %d of %d game %d with winner %d (%s)", mi+1, len(e.MatchUps), i+1, metric.Winner, metric.Reason)
		}
		tallies = append(tallies, tally)
		log.Info().Msgf("completed matchup %d of %d: %s", mi+1, len(e.MatchUps), tally)
	}

	log.Info().Msgf("completed %s experiment", e.Name)

	if writer == nil {
		return tallies, nil
	}
	return tallies, store(writer, e, gameRecords, moveRecords)
}

func store(writer *metrics.Writer, e Experiment, games []metrics.GameRecord, moves []metrics.MoveRecord) error {
	if err := writer.WriteAgentConfigs(e.Configs); err != nil {
		return errors.WithMessage(err, "failed to store agent configs")
	}
	if err := writer.WriteGames(e.Name+"_games.csv", games); err != nil {
		return errors.WithMessage(err, "failed to write game records")
	}
	if err := writer.WriteMoveRecords(e.Name+"_moves.csv", moves); err != nil {
		return errors.WithMessage(err, "failed to write move records")
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")
	return nil
}

// runGame plays one game with player ids relative to the match up: 0 is
// Agent1, 1 is Agent2.
func runGame(m MatchUp, agent1First bool, weights genome.Weights, seed uint64, maxMoves int) (engine.Result, error) {
	var seed2 uint64
	if seed != 0 {
		seed2 = seed + 1
	}
	a1, err := agent.New(m.Agent1.Config, weights, seed)
	if err != nil {
		return engine.Result{}, err
	}
	a2, err := agent.New(m.Agent2.Config, weights, seed2)
	if err != nil {
		return engine.Result{}, err
	}

	return engine.PlayPair(a1, a2, agent1First, maxMoves), nil
}
