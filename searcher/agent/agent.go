package agent

import (
	"gomoku/game"
	"gomoku/searcher"
)

// Agent chooses moves for one side of a game. Implementations keep per-game
// state (their own frontier), so a single Agent must not play two games at
// once.
type Agent interface {
	// ChooseMove returns an empty cell for mark to play, or game.NoCell when
	// there is no legal move. last is the opponent's most recent move, or
	// game.NoCell when unknown.
	ChooseMove(board *game.Board, mark game.Mark, last game.Cell) game.Cell
}

var (
	_ Agent = (*searcher.Minimax)(nil)
	_ Agent = (*searcher.Timed)(nil)
	_ Agent = (*tacticalAgent)(nil)
	_ Agent = (*hybridAgent)(nil)
)
