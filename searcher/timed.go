package searcher

import (
	"math"
	"time"

	"gomoku/game"
	"gomoku/meta"
	"gomoku/metrics"

	"github.com/rs/zerolog/log"
)

// Timed is the baseline searcher: full-board evaluation at the leaves, every
// frontier cell expanded, and a wall-clock budget after which unfinished
// branches score 0.
type Timed struct {
	settings
	eval    *game.Evaluator
	tracker *Tracker
	start   time.Time
	last    metrics.SearchMetric
}

func NewTimed(options ...Option) *Timed {
	s := newSettings(meta.TIMED_DEPTH, options)
	return &Timed{
		settings: s,
		eval:     game.NewEvaluator(s.weights),
		tracker:  NewTracker(),
	}
}

func (t *Timed) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	t.metrics.Start(t.depth, 0)
	t.start = time.Now()

	frontier := t.tracker.Sync(b, last)
	if b.Len() == 0 {
		return t.finish(b, game.Origin, metrics.StageOpening)
	}
	if frontier.Len() == 0 {
		return t.finish(b, game.NoCell, metrics.StageNone)
	}

	work := b.Clone()
	cells := frontier.Cells()
	t.metrics.SetCandidates(len(cells))

	best := math.MinInt
	var bestCells []game.Cell
	for _, c := range cells {
		work.Place(c, mark)
		frontier.Push(work, c)
		value := t.minimax(work, frontier, c, 0, math.MinInt, math.MaxInt, false, mark)
		frontier.Pop()
		work.Remove(c)

		if value > best {
			best = value
			bestCells = bestCells[:0]
		}
		if value == best {
			bestCells = append(bestCells, c)
		}
	}
	return t.finish(b, Pick(t.rng, bestCells), metrics.StageSearch)
}

func (t *Timed) finish(b *game.Board, choice game.Cell, stage metrics.Stage) game.Cell {
	t.tracker.Commit(b, choice)
	t.last = t.metrics.Complete(stage)
	log.Debug().Msgf("timed search chose %v (%s) in %v", choice, stage, t.last.Duration)
	return choice
}

func (t *Timed) LastMetric() metrics.SearchMetric {
	return t.last
}

// minimax values the position after lastMove, ply moves below the root.
func (t *Timed) minimax(b *game.Board, frontier *game.Frontier, lastMove game.Cell, ply, alpha, beta int, maximizing bool, own game.Mark) int {
	t.metrics.AddNode()
	if b.IsWin(lastMove) {
		if b.At(lastMove) == own {
			return meta.WIN_SCORE - ply
		}
		return -meta.WIN_SCORE + ply
	}
	if time.Since(t.start) >= t.budget {
		t.metrics.AddTimeout()
		return 0
	}
	if ply >= t.depth {
		return t.eval.ScoreFull(b, own) - t.eval.ScoreFull(b, own.Opponent())
	}
	if frontier.Len() == 0 {
		return 0
	}

	mover := own
	best := math.MinInt
	if !maximizing {
		mover = own.Opponent()
		best = math.MaxInt
	}
	for _, c := range frontier.Cells() {
		b.Place(c, mover)
		frontier.Push(b, c)
		value := t.minimax(b, frontier, c, ply+1, alpha, beta, !maximizing, own)
		frontier.Pop()
		b.Remove(c)

		if maximizing {
			best = max(best, value)
			alpha = max(alpha, value)
		} else {
			best = min(best, value)
			beta = min(beta, value)
		}
		if t.alphaBeta && beta <= alpha {
			t.metrics.AddCutoff()
			break
		}
	}
	return best
}
