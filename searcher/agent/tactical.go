package agent

import (
	"gomoku/game"
	"gomoku/searcher"

	"golang.org/x/exp/rand"
)

// Tactical levels: each one includes the previous.
const (
	LevelRandom = iota
	LevelWin
	LevelBlock
)

type tacticalAgent struct {
	level   int
	rng     *rand.Rand
	tracker *searcher.Tracker
}

// NewTactical returns an agent that plays uniformly at random over the
// frontier, first taking a win (level >= LevelWin) and then blocking the
// opponent's win (level >= LevelBlock) when one exists.
func NewTactical(level int, rng *rand.Rand) Agent {
	return &tacticalAgent{level: level, rng: rng, tracker: searcher.NewTracker()}
}

func NewRandom(rng *rand.Rand) Agent {
	return NewTactical(LevelRandom, rng)
}

func (a *tacticalAgent) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	frontier := a.tracker.Sync(b, last)
	choice := a.choose(b, frontier, mark)
	a.tracker.Commit(b, choice)
	return choice
}

func (a *tacticalAgent) choose(b *game.Board, frontier *game.Frontier, mark game.Mark) game.Cell {
	if b.Len() == 0 {
		return game.Origin
	}
	cells := frontier.Cells()
	if len(cells) == 0 {
		return game.NoCell
	}

	work := b.Clone()
	if a.level >= LevelWin {
		if wins := searcher.Winning(work, cells, mark); len(wins) > 0 {
			return searcher.Pick(a.rng, wins)
		}
	}
	if a.level >= LevelBlock {
		if blocks := searcher.Winning(work, cells, mark.Opponent()); len(blocks) > 0 {
			return searcher.Pick(a.rng, blocks)
		}
	}
	return searcher.Pick(a.rng, cells)
}
