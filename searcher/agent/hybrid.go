package agent

import (
	"gomoku/game"
	"gomoku/genome"
	"gomoku/searcher"
	"gomoku/utils"

	"golang.org/x/exp/rand"
)

type hybridAgent struct {
	tactical *tacticalAgent
	eval     *game.Evaluator
}

// NewHybrid returns a one-ply agent: win, block, else the cell maximizing
// the full-board score difference after playing it.
func NewHybrid(weights genome.Weights, rng *rand.Rand) Agent {
	return &hybridAgent{
		tactical: &tacticalAgent{level: LevelBlock, rng: rng, tracker: searcher.NewTracker()},
		eval:     game.NewEvaluator(weights),
	}
}

func (a *hybridAgent) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	t := a.tactical
	frontier := t.tracker.Sync(b, last)
	choice := a.choose(b, frontier, mark)
	t.tracker.Commit(b, choice)
	return choice
}

func (a *hybridAgent) choose(b *game.Board, frontier *game.Frontier, mark game.Mark) game.Cell {
	if b.Len() == 0 || frontier.Len() == 0 {
		return a.tactical.choose(b, frontier, mark)
	}
	work := b.Clone()
	cells := frontier.Cells()
	if wins := searcher.Winning(work, cells, mark); len(wins) > 0 {
		return searcher.Pick(a.tactical.rng, wins)
	}
	if blocks := searcher.Winning(work, cells, mark.Opponent()); len(blocks) > 0 {
		return searcher.Pick(a.tactical.rng, blocks)
	}

	scores := make([]int, len(cells))
	for i, c := range cells {
		work.Place(c, mark)
		scores[i] = a.eval.ScoreFull(work, mark) - a.eval.ScoreFull(work, mark.Opponent())
		work.Remove(c)
	}
	best := scores[utils.ArgMax(scores, func(s int) int { return s })]

	var ties []game.Cell
	for i, s := range scores {
		if s == best {
			ties = append(ties, cells[i])
		}
	}
	return searcher.Pick(a.tactical.rng, ties)
}
