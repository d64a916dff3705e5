package searcher

import (
	"time"

	"gomoku/genome"
	"gomoku/meta"
	"gomoku/metrics"
	"gomoku/utils"

	"golang.org/x/exp/rand"
)

type Option func(s *settings)

type settings struct {
	depth     int
	topN      int
	alphaBeta bool
	verify    bool
	budget    time.Duration
	weights   genome.Weights
	rng       *rand.Rand
	metrics   metrics.Collector
}

func newSettings(depth int, options []Option) settings {
	s := settings{ // Default values
		depth:     depth,
		topN:      meta.TOP_N,
		alphaBeta: true,
		budget:    meta.TIME_BUDGET,
		weights:   genome.Default(),
		metrics:   metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(&s)
	}
	if s.rng == nil {
		s.rng = utils.NewRand(0)
	}
	return s
}

func WithDepth(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithTopN(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.topN = n
		}
	}
}

func WithAlphaBeta(enabled bool) Option {
	return func(s *settings) {
		s.alphaBeta = enabled
	}
}

func WithWeights(weights genome.Weights) Option {
	return func(s *settings) {
		s.weights = weights
	}
}

// WithRand makes tie-breaking reproducible. The generator must not be
// shared with another goroutine.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.rng = utils.NewRand(seed)
	}
}

func WithMetrics() Option {
	return func(s *settings) {
		s.metrics = metrics.NewCollector()
	}
}

// WithVerify cross-checks every root candidate's incremental deltas against
// the full evaluator and logs disagreements.
func WithVerify() Option {
	return func(s *settings) {
		s.verify = true
	}
}

// WithBudget sets the wall-clock budget of the time-boxed search.
func WithBudget(budget time.Duration) Option {
	return func(s *settings) {
		if budget > 0 {
			s.budget = budget
		}
	}
}
