package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gomoku/engine"
	"gomoku/experiments"
	"gomoku/genome"
	"gomoku/meta"
	"gomoku/metrics"
	"gomoku/searcher/agent"
	"gomoku/store"
	"gomoku/trainer"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type flags struct {
	mode        string
	generations int
	population  int
	games       int
	maxMoves    int
	player      string
	weights     string
	out         string
	records     bool
	ledger      string
	resume      bool
	seed        uint64
	workers     int
	experiment  string
	addr        string
	remote      string
	agent       string
	logLevel    string
}

func parseFlags() flags {
	defaults := trainer.DefaultConfig()
	f := flags{}
	flag.StringVar(&f.mode, "mode", "train", "train, match, serve or remote")
	flag.IntVar(&f.generations, "generations", 20, "Number of training generations")
	flag.IntVar(&f.population, "population", defaults.PopulationSize, "Candidates per generation")
	flag.IntVar(&f.games, "games", defaults.GamesPerMatchup, "Games per matchup (even when training)")
	flag.IntVar(&f.maxMoves, "max-moves", meta.MAX_MOVES, "Move cap per game, reaching it is a draw")
	flag.StringVar(&f.player, "player", defaults.Player, "Agent configuration used by training candidates")
	flag.StringVar(&f.weights, "weights", "weights.txt", "Weight file to start from, and to save the best training result to")
	flag.StringVar(&f.out, "out", "results", "Directory for CSV records")
	flag.BoolVar(&f.records, "records", false, "Write CSV records under -out")
	flag.StringVar(&f.ledger, "ledger", "", "SQLite ledger of training generations")
	flag.BoolVar(&f.resume, "resume", false, "Start training from the best weights in -ledger")
	flag.Uint64Var(&f.seed, "seed", 0, "Random seed, 0 for a fresh one")
	flag.IntVar(&f.workers, "workers", defaults.Workers, "Concurrent training games")
	flag.StringVar(&f.experiment, "experiment", "strength", "Match experiment: strength or pruning")
	flag.StringVar(&f.addr, "addr", ":8080", "Move server listen address")
	flag.StringVar(&f.remote, "remote", "http://localhost:8080", "Move server URL played against in remote mode")
	flag.StringVar(&f.agent, "agent", agent.DefaultConfig, "Agent configuration served by the move server, or played locally in remote mode")
	flag.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	level, err := zerolog.ParseLevel(f.logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch f.mode {
	case "train":
		err = train(ctx, f)
	case "match":
		err = match(ctx, f)
	case "serve":
		err = serve(ctx, f)
	case "remote":
		err = remote(ctx, f)
	default:
		err = errors.Errorf("unknown mode %q", f.mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", f.mode)
	}
}

func newWriter(f flags) (*metrics.Writer, error) {
	if !f.records {
		return nil, nil
	}
	return metrics.NewWriter(f.out)
}

func train(ctx context.Context, f flags) error {
	config := trainer.DefaultConfig()
	config.PopulationSize = f.population
	config.GamesPerMatchup = f.games
	config.MaxMoves = f.maxMoves
	config.Player = f.player
	config.Workers = f.workers
	config.Seed = f.seed

	options := []trainer.Option{}
	writer, err := newWriter(f)
	if err != nil {
		return err
	}
	if writer != nil {
		options = append(options, trainer.WithWriter(writer))
	}

	start := genome.LoadOrDefault(f.weights)
	var run *store.Run
	if f.ledger != "" {
		ledger, err := store.Open(f.ledger)
		if err != nil {
			return err
		}
		defer ledger.Close()

		if f.resume {
			best, fitness, err := ledger.BestWeights(ctx)
			switch {
			case errors.Is(err, store.ErrEmpty):
				log.Info().Msg("ledger is empty, starting from the weight file")
			case err != nil:
				return err
			default:
				log.Info().Object("weights", best).Msgf("resuming from ledger best with fitness %.3f", fitness)
				start = best
			}
		}

		run, err = ledger.StartRun(ctx, f.player, start)
		if err != nil {
			return err
		}
		options = append(options, trainer.WithRecorder(run))
	}

	t, err := trainer.New(config, options...)
	if err != nil {
		return err
	}
	best, err := t.Train(ctx, f.generations, start)
	if err != nil {
		return err
	}
	if err := best.Save(f.weights); err != nil {
		return err
	}
	log.Info().Str("path", f.weights).Msg("saved best weights")

	if run != nil {
		n, err := run.Generations(ctx)
		if err != nil {
			return err
		}
		log.Info().Msgf("ledger %s run %d holds %d generations", f.ledger, run.ID, n)
	}
	return nil
}

func match(ctx context.Context, f flags) error {
	e, err := experiments.Lookup(f.experiment, f.games, genome.LoadOrDefault(f.weights), f.seed)
	if err != nil {
		return err
	}
	e.MaxMoves = f.maxMoves

	writer, err := newWriter(f)
	if err != nil {
		return err
	}
	tallies, err := experiments.Run(ctx, e, writer)
	if err != nil {
		return err
	}
	for _, tally := range tallies {
		log.Info().Msg(tally.String())
	}
	return nil
}

func serve(ctx context.Context, f flags) error {
	server, err := agent.NewServer(f.agent, genome.LoadOrDefault(f.weights), f.seed)
	if err != nil {
		return err
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", f.addr).Str("agent", f.agent).Msg("serving moves")
		errs <- server.Start(f.addr)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// remote plays the local -agent against the move server at -remote,
// alternating who starts.
func remote(ctx context.Context, f flags) error {
	weights := genome.LoadOrDefault(f.weights)
	wins, losses, draws := 0, 0, 0
	for i := 0; i < f.games; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		seed := f.seed
		if seed != 0 {
			seed += uint64(i)
		}
		local, err := agent.New(f.agent, weights, seed)
		if err != nil {
			return err
		}
		opponent := engine.NewRemoteAgent(f.remote, 30*time.Second)

		result := engine.PlayPair(local, opponent, i%2 == 0, f.maxMoves)
		switch result.GameMetric.Winner {
		case -1:
			draws++
		case 0:
			wins++
		default:
			losses++
		}
		log.Info().Msgf("game %d: local started %t, winner %v by %s after %d moves", i+1, i%2 == 0, result.Winner, result.Reason, len(result.Moves))
		log.Debug().Msg("\n" + result.Board.String())
	}
	log.Info().Msgf("local %q vs %s: %d-%d-%d", f.agent, f.remote, wins, losses, draws)
	return nil
}
