package agent

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gomoku/game"
	"gomoku/genome"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Stone struct {
	game.Cell
	Mark game.Mark `json:"mark"`
}

// MoveRequest asks for mark's next move on board. Last is the opponent's
// most recent move, if known.
type MoveRequest struct {
	Board []Stone    `json:"board"`
	Mark  game.Mark  `json:"mark"`
	Last  *game.Cell `json:"last,omitempty"`
}

type MoveResponse struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Server answers move requests over HTTP with one agent per mark.
type Server struct {
	mu     sync.Mutex
	agents map[game.Mark]Agent
	echo   *echo.Echo
}

func NewServer(config string, weights genome.Weights, seed uint64) (*Server, error) {
	s := &Server{agents: make(map[game.Mark]Agent, 2)}
	for i, mark := range []game.Mark{game.X, game.O} {
		agentSeed := seed
		if seed != 0 {
			agentSeed = seed + uint64(i)
		}
		a, err := New(config, weights, agentSeed)
		if err != nil {
			return nil, err
		}
		s.agents[mark] = a
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(requestLogger)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/findmove", s.handleFindMove)
	s.echo = e
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	log.Info().Msgf("agent server listening on %s", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleFindMove(c echo.Context) error {
	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request: "+err.Error())
	}
	a, ok := s.agents[req.Mark]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "mark must be X or O")
	}

	board := game.NewBoard()
	for _, stone := range req.Board {
		if err := board.TryPlace(stone.Cell, stone.Mark); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "bad board: "+err.Error())
		}
	}
	if winner, won := board.HasWin(); won {
		return echo.NewHTTPError(http.StatusConflict, "game is over, "+winner.String()+" has five")
	}
	last := game.NoCell
	if req.Last != nil {
		last = *req.Last
	}

	s.mu.Lock()
	move := a.ChooseMove(board, req.Mark, last)
	s.mu.Unlock()

	if move.IsNone() {
		return echo.NewHTTPError(http.StatusConflict, "no legal move")
	}
	return c.JSON(http.StatusOK, MoveResponse{X: move.X, Y: move.Y})
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		log.Debug().
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Int("status", c.Response().Status).
			Dur("took", time.Since(start)).
			Msg("request")
		return nil
	}
}
