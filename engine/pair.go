package engine

import (
	"gomoku/game"
	"gomoku/searcher/agent"
)

// PlayPair plays a1 against a2, with a1 as X when a1First. Player ids in
// result.GameMetric and result.MoveMetrics are relative to the pair: 0 is
// a1, 1 is a2, and a -1 winner is a draw. Winner stays a mark.
func PlayPair(a1, a2 agent.Agent, a1First bool, maxMoves int) Result {
	mark1 := game.X
	x, o := a1, a2
	if !a1First {
		mark1 = game.O
		x, o = a2, a1
	}
	result := LocalEngine(x, o, maxMoves).Run()

	pairID := func(m game.Mark) int {
		switch m {
		case game.None:
			return -1
		case mark1:
			return 0
		}
		return 1
	}
	for i, move := range result.MoveMetrics {
		// Move metrics carry the mover's mark id, X first
		mover := game.X
		if move.Player == PlayerID(game.O) {
			mover = game.O
		}
		result.MoveMetrics[i].Player = pairID(mover)
	}
	result.GameMetric.StartingPlayer = pairID(game.X)
	result.GameMetric.Winner = pairID(result.Winner)
	return result
}
