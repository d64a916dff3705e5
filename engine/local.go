package engine

import (
	"time"

	"gomoku/game"
	"gomoku/meta"
	"gomoku/metrics"
	"gomoku/searcher/agent"

	"github.com/rs/zerolog/log"
)

type Local struct {
	agents   map[game.Mark]agent.Agent
	maxMoves int
}

// LocalEngine runs a game between two in-process agents. X moves first.
func LocalEngine(x, o agent.Agent, maxMoves int) *Local {
	if x == nil || o == nil {
		panic("need two agents")
	}
	if maxMoves <= 0 {
		maxMoves = meta.MAX_MOVES
	}
	return &Local{
		agents:   map[game.Mark]agent.Agent{game.X: x, game.O: o},
		maxMoves: maxMoves,
	}
}

// Run executes the entire game loop until a five, a forfeit, a missing
// move, or the move cap.
func (e *Local) Run() Result {
	board := game.NewBoard()
	result := Result{Board: board, Reason: ReasonMaxMoves}
	start := time.Now()

	mark := game.X
	last := game.NoCell
	for step := 1; step <= e.maxMoves; step++ {
		a := e.agents[mark]
		move := a.ChooseMove(board, mark, last)

		moveMetric := metrics.MoveMetric{Step: step, Player: PlayerID(mark), X: move.X, Y: move.Y}
		if reporter, ok := a.(metrics.Reporter); ok {
			moveMetric.SearchMetric = reporter.LastMetric()
		}
		result.MoveMetrics = append(result.MoveMetrics, moveMetric)

		if move.IsNone() {
			log.Debug().Msgf("%v has no move at step %d", mark, step)
			result.Reason = ReasonNoMove
			break
		}
		if err := board.TryPlace(move, mark); err != nil {
			log.Warn().Err(err).Msgf("%v forfeits with invalid move %v at step %d", mark, move, step)
			result.Winner = mark.Opponent()
			result.Reason = ReasonForfeit
			break
		}
		result.Moves = append(result.Moves, move)
		log.Debug().Msgf("step %d: %v plays %v", step, mark, move)

		if board.IsWin(move) {
			result.Winner = mark
			result.Reason = ReasonFive
			break
		}
		last = move
		mark = mark.Opponent()
	}

	end := time.Now()
	result.GameMetric = metrics.GameMetric{
		StartingPlayer: PlayerID(game.X),
		Winner:         PlayerID(result.Winner),
		Reason:         result.Reason,
		StartTime:      start,
		EndTime:        end,
		Duration:       end.Sub(start),
		TotalMoves:     len(result.Moves),
	}
	return result
}
