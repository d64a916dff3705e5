package agent

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"gomoku/genome"
	"gomoku/meta"
	"gomoku/searcher"
	"gomoku/utils"

	"github.com/pkg/errors"
)

// DefaultConfig is used when an agent is requested with an empty config.
const DefaultConfig = "minimax"

// Kinds lists the agent names New accepts.
var Kinds = []string{"random", "tactical", "hybrid", "minimax", "timed"}

// New creates an agent from a configuration string: the agent kind, then
// optionally a colon and a comma-separated list of key=value parameters.
// A key without a value is a true flag. Examples:
//
//	random
//	tactical:level=1
//	minimax:depth=3,top_n=8,ab=false,verify
//	timed:depth=2,budget_ms=250
//
// weights parameterizes the evaluating kinds. A zero seed draws a fresh one.
func New(config string, weights genome.Weights, seed uint64) (Agent, error) {
	if config == "" {
		config = DefaultConfig
	}
	kind := config
	params := map[string]string{}
	if split := strings.Index(config, ":"); split != -1 {
		kind = config[:split]
		params = splitConfig(config[split+1:])
	}
	if utils.FindIndex(Kinds, kind) < 0 {
		return nil, errors.Errorf("unknown agent %q, want one of %s", kind, strings.Join(Kinds, ", "))
	}

	a, err := build(kind, params, weights, seed)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create agent %q", kind)
	}
	if len(params) > 0 {
		unknown := make([]string, 0, len(params))
		for key := range params {
			unknown = append(unknown, key)
		}
		sort.Strings(unknown)
		return nil, errors.Errorf("agent %q does not take parameters %v", kind, unknown)
	}
	return a, nil
}

func build(kind string, params map[string]string, weights genome.Weights, seed uint64) (Agent, error) {
	switch kind {
	case "random":
		return NewRandom(utils.NewRand(seed)), nil

	case "tactical":
		level, err := PopParamOr(params, "level", LevelBlock)
		if err != nil {
			return nil, err
		}
		if level < LevelRandom || level > LevelBlock {
			return nil, errors.Errorf("tactical level %d out of range [%d, %d]", level, LevelRandom, LevelBlock)
		}
		return NewTactical(level, utils.NewRand(seed)), nil

	case "hybrid":
		return NewHybrid(weights, utils.NewRand(seed)), nil

	case "minimax":
		depth, err := PopParamOr(params, "depth", meta.SEARCH_DEPTH)
		if err != nil {
			return nil, err
		}
		topN, err := PopParamOr(params, "top_n", meta.TOP_N)
		if err != nil {
			return nil, err
		}
		alphaBeta, err := PopParamOr(params, "ab", true)
		if err != nil {
			return nil, err
		}
		verify, err := PopParamOr(params, "verify", false)
		if err != nil {
			return nil, err
		}
		options := []searcher.Option{
			searcher.WithDepth(depth),
			searcher.WithTopN(topN),
			searcher.WithAlphaBeta(alphaBeta),
			searcher.WithWeights(weights),
			searcher.WithSeed(seed),
			searcher.WithMetrics(),
		}
		if verify {
			options = append(options, searcher.WithVerify())
		}
		return searcher.NewMinimax(options...), nil

	case "timed":
		depth, err := PopParamOr(params, "depth", meta.TIMED_DEPTH)
		if err != nil {
			return nil, err
		}
		budgetMs, err := PopParamOr(params, "budget_ms", int(meta.TIME_BUDGET/time.Millisecond))
		if err != nil {
			return nil, err
		}
		return searcher.NewTimed(
			searcher.WithDepth(depth),
			searcher.WithBudget(time.Duration(budgetMs)*time.Millisecond),
			searcher.WithWeights(weights),
			searcher.WithSeed(seed),
			searcher.WithMetrics(),
		), nil
	}
	return nil, errors.Errorf("unknown agent %q", kind)
}

// splitConfig splits "a=1,b,c=x" into a map of keys to (possibly empty) values.
func splitConfig(config string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(config, ",") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		params[key] = value
	}
	return params
}

// ParamOr parses params[key] to T, or returns defaultValue when the key is
// absent. For bools, a key without a value means true.
func ParamOr[T interface{ bool | int | float64 }](params map[string]string, key string, defaultValue T) (T, error) {
	value, exists := params[key]
	if !exists {
		return defaultValue, nil
	}

	var parsed any
	var err error
	switch any(defaultValue).(type) {
	case int:
		parsed, err = strconv.Atoi(value)
	case float64:
		parsed, err = strconv.ParseFloat(value, 64)
	case bool:
		if value == "" {
			parsed = true
		} else {
			parsed, err = strconv.ParseBool(value)
		}
	}
	if err != nil {
		return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q", key, value)
	}
	return parsed.(T), nil
}

// PopParamOr is ParamOr that also deletes key from params.
func PopParamOr[T interface{ bool | int | float64 }](params map[string]string, key string, defaultValue T) (T, error) {
	value, err := ParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}
