package engine

import (
	"net/http/httptest"
	"testing"
	"time"

	"gomoku/game"
	"gomoku/genome"
	"gomoku/metrics"
	"gomoku/searcher"
	"gomoku/searcher/agent"
	"gomoku/utils"

	"github.com/stretchr/testify/require"
)

// scripted plays a fixed list of moves, then passes.
type scripted struct {
	moves []game.Cell
	next  int
}

func (s *scripted) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	if s.next >= len(s.moves) {
		return game.NoCell
	}
	s.next++
	return s.moves[s.next-1]
}

func rowCells(y int, xs ...int) []game.Cell {
	cells := make([]game.Cell, len(xs))
	for i, x := range xs {
		cells[i] = game.Cell{X: x, Y: y}
	}
	return cells
}

func TestLocalEngine(t *testing.T) {
	t.Run("five in a row wins", func(t *testing.T) {
		x := &scripted{moves: rowCells(0, 0, 1, 2, 3, 4)}
		o := &scripted{moves: rowCells(5, 0, 1, 2, 3, 4)}

		result := LocalEngine(x, o, 0).Run()
		require.Equal(t, game.X, result.Winner)
		require.Equal(t, ReasonFive, result.Reason)
		require.Len(t, result.Moves, 9, "X's fifth move should end the game")
		require.Equal(t, 0, result.GameMetric.Winner)
		require.Equal(t, 9, result.GameMetric.TotalMoves)
	})

	t.Run("invalid move forfeits", func(t *testing.T) {
		x := &scripted{moves: rowCells(0, 0, 1)}
		o := &scripted{moves: rowCells(0, 5, 0)}

		result := LocalEngine(x, o, 0).Run()
		require.Equal(t, game.X, result.Winner, "O should lose by playing on an occupied cell")
		require.Equal(t, ReasonForfeit, result.Reason)
		require.Len(t, result.Moves, 3)
	})

	t.Run("no move is a draw", func(t *testing.T) {
		x := &scripted{moves: rowCells(0, 0)}
		o := &scripted{}

		result := LocalEngine(x, o, 0).Run()
		require.True(t, result.IsDraw())
		require.Equal(t, ReasonNoMove, result.Reason)
		require.Equal(t, -1, result.GameMetric.Winner)
	})

	t.Run("move cap is a draw", func(t *testing.T) {
		x := agent.NewRandom(utils.NewRand(1))
		o := agent.NewRandom(utils.NewRand(2))

		result := LocalEngine(x, o, 6).Run()
		require.True(t, result.IsDraw())
		require.Equal(t, ReasonMaxMoves, result.Reason)
		require.Len(t, result.Moves, 6)
		require.Equal(t, 6, result.Board.Len())
	})

	t.Run("collects search metrics", func(t *testing.T) {
		x := searcher.NewMinimax(searcher.WithSeed(1), searcher.WithMetrics())
		o := agent.NewTactical(agent.LevelBlock, utils.NewRand(3))

		result := LocalEngine(x, o, 4).Run()
		require.Len(t, result.MoveMetrics, 4)
		require.Equal(t, metrics.StageOpening, result.MoveMetrics[0].Stage)
		require.Equal(t, 0, result.MoveMetrics[0].Player)
		require.Equal(t, metrics.StageSearch, result.MoveMetrics[2].Stage)
		require.Zero(t, result.MoveMetrics[1].Nodes, "Agents without metrics report nothing")
	})

	t.Run("search beats random", func(t *testing.T) {
		x := searcher.NewMinimax(searcher.WithSeed(5))
		o := agent.NewRandom(utils.NewRand(6))

		result := LocalEngine(x, o, 200).Run()
		require.Equal(t, game.X, result.Winner)
	})
}

func TestPlayPair(t *testing.T) {
	t.Run("second agent starting and winning", func(t *testing.T) {
		a1 := &scripted{moves: rowCells(5, 0, 1, 2, 3)}
		a2 := &scripted{moves: rowCells(0, 0, 1, 2, 3, 4)}

		result := PlayPair(a1, a2, false, 0)

		require.Equal(t, game.X, result.Winner, "Should keep the winning mark")
		require.Equal(t, 1, result.GameMetric.StartingPlayer, "Should report a2 as the starter")
		require.Equal(t, 1, result.GameMetric.Winner, "Should report a2 as the winner")
		require.Len(t, result.MoveMetrics, 9)
		for i, move := range result.MoveMetrics {
			require.Equal(t, 1-i%2, move.Player, "Should number move %d by agent, not by mark", i+1)
		}
	})

	t.Run("first agent starting", func(t *testing.T) {
		a1 := &scripted{moves: rowCells(0, 0, 1, 2, 3, 4)}
		a2 := &scripted{moves: rowCells(5, 0, 1, 2, 3)}

		result := PlayPair(a1, a2, true, 0)

		require.Equal(t, 0, result.GameMetric.StartingPlayer)
		require.Equal(t, 0, result.GameMetric.Winner)
		require.Equal(t, 0, result.MoveMetrics[0].Player)
		require.Equal(t, 1, result.MoveMetrics[1].Player)
	})

	t.Run("draw", func(t *testing.T) {
		result := PlayPair(&scripted{moves: rowCells(0, 0)}, &scripted{}, false, 0)

		require.Equal(t, -1, result.GameMetric.Winner, "Should report a pass as a draw")
	})
}

func TestRemoteAgent(t *testing.T) {
	server, err := agent.NewServer("minimax:depth=1", genome.Default(), 1)
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	t.Run("plays through the server", func(t *testing.T) {
		remote := NewRemoteAgent(ts.URL+"/", time.Second)
		local := agent.NewRandom(utils.NewRand(2))

		result := LocalEngine(remote, local, 6).Run()
		require.Equal(t, ReasonMaxMoves, result.Reason, "Remote agent should answer every turn")
		require.Equal(t, game.Origin, result.Moves[0])
	})

	t.Run("takes the win", func(t *testing.T) {
		b := game.NewBoard()
		for _, c := range rowCells(0, 0, 1, 2, 3) {
			b.Place(c, game.O)
		}
		b.Place(game.Cell{X: 9, Y: 9}, game.X)

		move, err := NewRemoteAgent(ts.URL, time.Second).RequestMove(b, game.O, game.Cell{X: 9, Y: 9})
		require.NoError(t, err)
		require.Contains(t, []game.Cell{{X: 4}, {X: -1}}, move)
	})

	t.Run("unreachable server", func(t *testing.T) {
		remote := NewRemoteAgent("http://127.0.0.1:1", 100*time.Millisecond)
		require.Equal(t, game.NoCell, remote.ChooseMove(game.NewBoard(), game.X, game.NoCell))
	})
}

func TestGame(t *testing.T) {
	t.Run("alternates turns", func(t *testing.T) {
		g := NewGame()
		require.Equal(t, game.X, g.Turn())
		require.NoError(t, g.Play(game.Origin))
		require.Equal(t, game.O, g.Turn())
		require.Equal(t, game.Origin, g.Last())
		require.ErrorIs(t, g.Play(game.Origin), game.ErrOccupied)
		require.Equal(t, game.O, g.Turn(), "Rejected move should not pass the turn")
	})

	t.Run("ends on five", func(t *testing.T) {
		g := NewGame()
		for i := 0; i < 5; i++ {
			require.NoError(t, g.Play(game.Cell{X: i}))
			if i < 4 {
				require.NoError(t, g.Play(game.Cell{X: i, Y: 3}))
			}
		}
		require.True(t, g.IsOver())
		require.Equal(t, game.X, g.Winner())
		require.ErrorIs(t, g.Play(game.Cell{X: 7, Y: 7}), ErrGameOver)

		require.NoError(t, g.Undo())
		require.False(t, g.IsOver(), "Undoing the winning move should reopen the game")
		require.Equal(t, game.X, g.Turn())
	})

	t.Run("undo on empty game", func(t *testing.T) {
		require.Error(t, NewGame().Undo())
	})
}
