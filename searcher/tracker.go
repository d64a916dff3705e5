package searcher

import (
	"gomoku/game"

	"golang.org/x/exp/rand"
)

// Tracker keeps one agent's frontier in step with the real game across
// turns, so most calls only fold in the opponent's last move.
type Tracker struct {
	frontier *game.Frontier
	stones   int
	seeded   bool
}

func NewTracker() *Tracker {
	return &Tracker{frontier: game.NewFrontier()}
}

// Sync applies the opponent's last move to the frontier. It reseeds from the
// board when last is unknown, on the first call, or when the board does not
// hold exactly one more stone than after this agent's previous move.
func (t *Tracker) Sync(b *game.Board, last game.Cell) *game.Frontier {
	if !t.seeded || last.IsNone() || b.Len() != t.stones+1 || !b.IsOccupied(last) {
		t.frontier.Seed(b)
		t.seeded = true
	} else {
		t.frontier.AfterPlace(b, last)
	}
	t.frontier.Prune(b)
	t.stones = b.Len()
	return t.frontier
}

// Commit records this agent's chosen move. The caller places it on its own
// board afterwards, so b does not hold c yet.
func (t *Tracker) Commit(b *game.Board, c game.Cell) {
	if c.IsNone() {
		return
	}
	t.frontier.AfterPlace(b, c)
	t.stones = b.Len() + 1
}

func (t *Tracker) Frontier() *game.Frontier {
	return t.frontier
}

// Winning returns the cells that complete five in a row for mark.
func Winning(b *game.Board, cells []game.Cell, mark game.Mark) []game.Cell {
	var wins []game.Cell
	for _, c := range cells {
		if b.IsWinningMove(c, mark) {
			wins = append(wins, c)
		}
	}
	return wins
}

// Pick chooses uniformly among cells.
func Pick(rng *rand.Rand, cells []game.Cell) game.Cell {
	if len(cells) == 0 {
		return game.NoCell
	}
	return cells[rng.Intn(len(cells))]
}
