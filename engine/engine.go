package engine

import (
	"gomoku/game"
	"gomoku/metrics"
)

// Reasons a game ends.
const (
	ReasonFive     = "five"
	ReasonMaxMoves = "max-moves"
	ReasonNoMove   = "no-move"
	ReasonForfeit  = "forfeit"
)

type Result struct {
	Winner      game.Mark // game.None for a draw
	Reason      string
	Moves       []game.Cell
	Board       *game.Board
	GameMetric  metrics.GameMetric
	MoveMetrics []metrics.MoveMetric
}

func (r Result) IsDraw() bool {
	return r.Winner == game.None
}

type Engine interface {
	// Run plays a game till there's a winner or the move cap is reached
	Run() Result
}

// PlayerID maps marks to the player ids used in metrics: X is 0, O is 1,
// and None (a draw) is -1.
func PlayerID(m game.Mark) int {
	switch m {
	case game.X:
		return 0
	case game.O:
		return 1
	}
	return -1
}
