package searcher

import (
	"math"
	"sort"

	"gomoku/game"
	"gomoku/meta"
	"gomoku/metrics"

	"github.com/rs/zerolog/log"
)

// Minimax picks moves in three stages: take a win, block the opponent's win,
// otherwise run a depth-limited alpha-beta search over the top-N ranked
// candidates. Scores are threaded through the recursion as incremental
// deltas instead of re-evaluating the board at every node.
type Minimax struct {
	settings
	eval       *game.Evaluator
	tracker    *Tracker
	last       metrics.SearchMetric
	mismatches int
}

func NewMinimax(options ...Option) *Minimax {
	s := newSettings(meta.SEARCH_DEPTH, options)
	return &Minimax{
		settings: s,
		eval:     game.NewEvaluator(s.weights),
		tracker:  NewTracker(),
	}
}

type candidate struct {
	cell       game.Cell
	score      int
	moverDelta int // mover's own score change
	otherDelta int // the other side's score change
}

func (m *Minimax) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	m.metrics.Start(m.depth, m.topN)

	frontier := m.tracker.Sync(b, last)
	if b.Len() == 0 {
		return m.finish(b, mark, game.Origin, metrics.StageOpening)
	}
	if frontier.Len() == 0 {
		return m.finish(b, mark, game.NoCell, metrics.StageNone)
	}

	work := b.Clone()
	cells := frontier.Cells()
	if wins := Winning(work, cells, mark); len(wins) > 0 {
		return m.finish(b, mark, Pick(m.rng, wins), metrics.StageWin)
	}
	if blocks := Winning(work, cells, mark.Opponent()); len(blocks) > 0 {
		return m.finish(b, mark, Pick(m.rng, blocks), metrics.StageBlock)
	}
	return m.finish(b, mark, m.search(work, frontier, mark), metrics.StageSearch)
}

func (m *Minimax) finish(b *game.Board, mark game.Mark, choice game.Cell, stage metrics.Stage) game.Cell {
	m.tracker.Commit(b, choice)
	m.last = m.metrics.Complete(stage)
	log.Debug().
		Str("mark", mark.String()).
		Stringer("move", choice).
		Str("stage", string(stage)).
		Int("nodes", m.last.Nodes).
		Msg("minimax chose move")
	return choice
}

func (m *Minimax) LastMetric() metrics.SearchMetric {
	return m.last
}

func (m *Minimax) search(b *game.Board, frontier *game.Frontier, mark game.Mark) game.Cell {
	own := m.eval.ScoreFull(b, mark)
	opp := m.eval.ScoreFull(b, mark.Opponent())

	ranked := m.rank(b, frontier, mark)
	m.metrics.SetCandidates(len(ranked))
	if m.verify {
		m.verifyDeltas(b, ranked, mark)
	}

	best := math.MinInt
	var bestCells []game.Cell
	for _, c := range ranked {
		value := c.score
		if m.depth > 1 {
			b.Place(c.cell, mark)
			frontier.Push(b, c.cell)
			value = m.minimax(b, frontier, m.depth-1, math.MinInt, math.MaxInt, false, mark, own+c.moverDelta, opp+c.otherDelta)
			frontier.Pop()
			b.Remove(c.cell)
		}

		if value > best {
			best = value
			bestCells = bestCells[:0]
		}
		if value == best {
			bestCells = append(bestCells, c.cell)
		}
	}

	log.Debug().Msgf("minimax: %d candidates, best value %d shared by %d", len(ranked), best, len(bestCells))
	return Pick(m.rng, bestCells)
}

// rank scores every frontier cell for mover by its own gain minus the other
// side's gain, with immediate wins on top, and keeps the best topN.
func (m *Minimax) rank(b *game.Board, frontier *game.Frontier, mover game.Mark) []candidate {
	other := mover.Opponent()
	cells := frontier.Cells()
	ranked := make([]candidate, 0, len(cells))
	for _, c := range cells {
		moverDelta := m.eval.ScoreDelta(b, c, mover, mover)
		otherDelta := m.eval.ScoreDelta(b, c, mover, other)
		score := moverDelta - otherDelta
		if b.IsWinningMove(c, mover) {
			score += meta.WIN_SCORE
		}
		ranked = append(ranked, candidate{cell: c, score: score, moverDelta: moverDelta, otherDelta: otherDelta})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > m.topN {
		ranked = ranked[:m.topN]
	}
	return ranked
}

// minimax returns the value of the position for own. ownScore and oppScore
// are the running evaluations of both sides.
func (m *Minimax) minimax(b *game.Board, frontier *game.Frontier, depth, alpha, beta int, maximizing bool, own game.Mark, ownScore, oppScore int) int {
	m.metrics.AddNode()
	if depth == 0 {
		return ownScore - oppScore
	}
	if frontier.Len() == 0 {
		return 0
	}

	mover := own
	if !maximizing {
		mover = own.Opponent()
	}

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	for _, c := range m.rank(b, frontier, mover) {
		b.Place(c.cell, mover)
		if b.IsWin(c.cell) {
			b.Remove(c.cell)
			// Remaining depth rewards faster wins and slower losses
			if maximizing {
				return meta.WIN_SCORE + depth
			}
			return -(meta.WIN_SCORE + depth)
		}

		ownDelta, oppDelta := c.moverDelta, c.otherDelta
		if !maximizing {
			ownDelta, oppDelta = oppDelta, ownDelta
		}
		frontier.Push(b, c.cell)
		value := m.minimax(b, frontier, depth-1, alpha, beta, !maximizing, own, ownScore+ownDelta, oppScore+oppDelta)
		frontier.Pop()
		b.Remove(c.cell)

		if maximizing {
			best = max(best, value)
			if m.alphaBeta {
				alpha = max(alpha, value)
				if alpha >= beta {
					m.metrics.AddCutoff()
					break
				}
			}
		} else {
			best = min(best, value)
			if m.alphaBeta {
				beta = min(beta, value)
				if beta <= alpha {
					m.metrics.AddCutoff()
					break
				}
			}
		}
	}
	return best
}

// verifyDeltas compares each candidate's incremental deltas with the full
// evaluator restricted to the windows through the candidate.
func (m *Minimax) verifyDeltas(b *game.Board, ranked []candidate, mover game.Mark) {
	other := mover.Opponent()
	for _, c := range ranked {
		for _, check := range []struct {
			eval  game.Mark
			delta int
		}{{mover, c.moverDelta}, {other, c.otherDelta}} {
			before := m.eval.ScoreTouching(b, c.cell, check.eval)
			b.Place(c.cell, mover)
			after := m.eval.ScoreTouching(b, c.cell, check.eval)
			b.Remove(c.cell)

			if after-before != check.delta {
				m.mismatches++
				log.Warn().Msgf("evaluation mismatch at %v mark=%v eval=%v: incremental=%d full=%d",
					c.cell, mover, check.eval, check.delta, after-before)
			}
		}
	}
}
