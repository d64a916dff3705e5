package trainer

import (
	"context"

	"gomoku/engine"
	"gomoku/genome"
	"gomoku/metrics"
	"gomoku/searcher/agent"
	"gomoku/utils"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Outcome of a game from the first candidate's point of view.
type Outcome int

const (
	Loss Outcome = -1
	Draw Outcome = 0
	Win  Outcome = 1
)

// Recorder persists the ranked population of each generation.
type Recorder interface {
	RecordGeneration(ctx context.Context, generation int, records []metrics.GenerationRecord) error
}

type Option func(t *Trainer)

type agentFactory func(config string, weights genome.Weights, seed uint64) (agent.Agent, error)

// playFunc plays one game between two genomes. first says whether the first
// genome moves first.
type playFunc func(w1, w2 genome.Weights, first bool, seeds [2]uint64) (Outcome, metrics.GameMetric, error)

type Trainer struct {
	config   Config
	rng      *rand.Rand
	newAgent agentFactory
	play     playFunc
	writer   *metrics.Writer
	recorder Recorder
}

// WithWriter stores per-generation rankings and game records as CSV.
func WithWriter(writer *metrics.Writer) Option {
	return func(t *Trainer) {
		t.writer = writer
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(t *Trainer) {
		t.recorder = recorder
	}
}

func New(config Config, options ...Option) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid trainer config")
	}
	// Fail early on a bad player configuration rather than in the first game
	if _, err := agent.New(config.Player, genome.Default(), 1); err != nil {
		return nil, err
	}

	t := &Trainer{
		config:   config,
		rng:      utils.NewRand(config.Seed),
		newAgent: agent.New,
	}
	t.play = t.playGame
	for _, option := range options {
		option(t)
	}
	return t, nil
}

// InitialPopulation holds start itself plus PopulationSize-1 large
// mutations of it.
func (t *Trainer) InitialPopulation(start genome.Weights) Population {
	pop := make(Population, t.config.PopulationSize)
	pop[0] = Candidate{Weights: start}
	for i := 1; i < len(pop); i++ {
		pop[i] = Candidate{Weights: start.Mutate(t.config.InitialMutationRate, t.rng)}
	}
	return pop
}

type scheduled struct {
	i, j  int
	first bool // candidate i moves first
	seeds [2]uint64
}

type played struct {
	outcome Outcome
	metric  metrics.GameMetric
}

// RunTournament resets every candidate's record and plays GamesPerMatchup
// games for each unordered pair, alternating who starts. Games run
// concurrently on Workers goroutines, each with its own board and agents.
func (t *Trainer) RunTournament(ctx context.Context, pop Population) ([]metrics.GameRecord, error) {
	for i := range pop {
		pop[i].Reset()
	}

	// Seeds are drawn up front so results do not depend on scheduling
	var games []scheduled
	for i := 0; i < len(pop); i++ {
		for j := i + 1; j < len(pop); j++ {
			for n := 0; n < t.config.GamesPerMatchup; n++ {
				games = append(games, scheduled{i: i, j: j, first: n%2 == 0, seeds: [2]uint64{t.rng.Uint64() | 1, t.rng.Uint64() | 1}})
			}
		}
	}

	results := make([]played, len(games))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Workers)
	for k, s := range games {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, metric, err := t.play(pop[s.i].Weights, pop[s.j].Weights, s.first, s.seeds)
			if err != nil {
				return errors.WithMessagef(err, "game %d between %d and %d", k, s.i, s.j)
			}
			results[k] = played{outcome: outcome, metric: metric}
			log.Debug().Msgf("game %d: candidate %d vs %d, outcome %d", k, s.i, s.j, outcome)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WithMessage(err, "tournament aborted")
	}

	records := make([]metrics.GameRecord, len(games))
	for k, s := range games {
		switch results[k].outcome {
		case Win:
			pop[s.i].Wins++
			pop[s.j].Losses++
		case Loss:
			pop[s.i].Losses++
			pop[s.j].Wins++
		default:
			pop[s.i].Draws++
			pop[s.j].Draws++
		}
		records[k] = metrics.GameRecord{ID: k + 1, Agent1: s.i, Agent2: s.j, GameMetric: results[k].metric}
	}
	return records, nil
}

// playGame plays w1 against w2 with the configured player and reports the
// result with player ids relative to the candidates: 0 is w1, 1 is w2.
func (t *Trainer) playGame(w1, w2 genome.Weights, first bool, seeds [2]uint64) (Outcome, metrics.GameMetric, error) {
	a1, err := t.newAgent(t.config.Player, w1, seeds[0])
	if err != nil {
		return Draw, metrics.GameMetric{}, err
	}
	a2, err := t.newAgent(t.config.Player, w2, seeds[1])
	if err != nil {
		return Draw, metrics.GameMetric{}, err
	}

	result := engine.PlayPair(a1, a2, first, t.config.MaxMoves)
	switch result.GameMetric.Winner {
	case -1:
		return Draw, result.GameMetric, nil
	case 0:
		return Win, result.GameMetric, nil
	default:
		return Loss, result.GameMetric, nil
	}
}

// EvolvePopulation keeps the best PopulationSize/5 candidates and fills the
// rest with children of two parents drawn uniformly from the top half,
// mutated with probability MutationRate. Records of the result are zero.
func (t *Trainer) EvolvePopulation(pop Population) Population {
	sorted := pop.Sorted()
	size := t.config.PopulationSize
	next := make(Population, 0, size)

	elites := min(size/5, len(sorted))
	for i := 0; i < elites; i++ {
		next = append(next, Candidate{Weights: sorted[i].Weights})
	}

	parents := max(1, min(size/2, len(sorted)))
	for len(next) < size {
		p1 := sorted[t.rng.Intn(parents)].Weights
		p2 := sorted[t.rng.Intn(parents)].Weights
		child := p1.Crossover(p2, t.rng)
		if t.rng.Float64() < t.config.MutationRate {
			child = child.Mutate(t.config.MutationRate, t.rng)
		}
		next = append(next, Candidate{Weights: child})
	}
	return next
}

// Train evolves a population seeded from start for the given number of
// generations and returns the best weights seen in any generation. A
// generation's best replaces the best-ever only with strictly higher fitness.
func (t *Trainer) Train(ctx context.Context, generations int, start genome.Weights) (genome.Weights, error) {
	log.Info().Msgf("training %d candidates over %d generations with %q", t.config.PopulationSize, generations, t.config.Player)

	pop := t.InitialPopulation(start)
	bestEver := start
	bestEverFitness := 0.0

	for gen := 0; gen < generations; gen++ {
		games, err := t.RunTournament(ctx, pop)
		if err != nil {
			return bestEver, errors.WithMessagef(err, "generation %d", gen)
		}

		best := &pop[pop.Best()]
		log.Info().
			Object("weights", best.Weights).
			Msgf("generation %d: best fitness %.3f (W%d L%d D%d)", gen, best.Fitness(), best.Wins, best.Losses, best.Draws)

		if best.Fitness() > bestEverFitness {
			bestEverFitness = best.Fitness()
			bestEver = best.Weights
		}

		if err := t.record(ctx, gen, pop, games); err != nil {
			return bestEver, err
		}

		if gen < generations-1 {
			pop = t.EvolvePopulation(pop)
		}
	}

	log.Info().Object("weights", bestEver).Msgf("best ever fitness %.3f", bestEverFitness)
	return bestEver, nil
}

func (t *Trainer) record(ctx context.Context, gen int, pop Population, games []metrics.GameRecord) error {
	records := pop.Records(gen)
	if t.writer != nil {
		for i := range games {
			games[i].Generation = gen
		}
		if err := t.writer.WriteGenerations(gen, records); err != nil {
			return err
		}
		if err := t.writer.WriteGameRecords(gen, games); err != nil {
			return err
		}
	}
	if t.recorder != nil {
		if err := t.recorder.RecordGeneration(ctx, gen, records); err != nil {
			return errors.WithMessagef(err, "failed to record generation %d", gen)
		}
	}
	return nil
}
