package engine

import (
	"gomoku/game"

	"github.com/pkg/errors"
)

var ErrGameOver = errors.New("game is over")

// Game tracks turns for two humans sharing one board. X moves first.
type Game struct {
	board  *game.Board
	turn   game.Mark
	winner game.Mark
	moves  []game.Cell
}

func NewGame() *Game {
	return &Game{board: game.NewBoard(), turn: game.X}
}

// Play places the current player's mark at c and passes the turn.
func (g *Game) Play(c game.Cell) error {
	if g.IsOver() {
		return ErrGameOver
	}
	if err := g.board.TryPlace(c, g.turn); err != nil {
		return err
	}
	g.moves = append(g.moves, c)
	if g.board.IsWin(c) {
		g.winner = g.turn
		return nil
	}
	g.turn = g.turn.Opponent()
	return nil
}

// Undo takes back the last move.
func (g *Game) Undo() error {
	if len(g.moves) == 0 {
		return errors.New("no move to undo")
	}
	last := g.moves[len(g.moves)-1]
	g.moves = g.moves[:len(g.moves)-1]
	g.turn = g.board.At(last)
	g.board.Remove(last)
	g.winner = game.None
	return nil
}

func (g *Game) IsOver() bool {
	return g.winner != game.None
}

func (g *Game) Turn() game.Mark {
	return g.turn
}

func (g *Game) Winner() game.Mark {
	return g.winner
}

// Last returns the most recent move, or game.NoCell before the first one.
func (g *Game) Last() game.Cell {
	if len(g.moves) == 0 {
		return game.NoCell
	}
	return g.moves[len(g.moves)-1]
}

// Board returns a copy of the board.
func (g *Game) Board() *game.Board {
	return g.board.Clone()
}
