package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"gomoku/game"
	"gomoku/searcher/agent"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RemoteAgent asks an agent server for moves over HTTP.
type RemoteAgent struct {
	url    string
	client *http.Client
}

func NewRemoteAgent(baseURL string, timeout time.Duration) *RemoteAgent {
	return &RemoteAgent{
		url:    strings.TrimSuffix(baseURL, "/") + "/findmove",
		client: &http.Client{Timeout: timeout},
	}
}

// ChooseMove returns game.NoCell when the server cannot be reached or has no
// move, which ends the game as a draw.
func (r *RemoteAgent) ChooseMove(b *game.Board, mark game.Mark, last game.Cell) game.Cell {
	move, err := r.RequestMove(b, mark, last)
	if err != nil {
		log.Error().Err(err).Msgf("remote agent %s failed", r.url)
		return game.NoCell
	}
	return move
}

// RequestMove encodes the board and posts it to /findmove on the agent side.
func (r *RemoteAgent) RequestMove(b *game.Board, mark game.Mark, last game.Cell) (game.Cell, error) {
	payload := agent.MoveRequest{Mark: mark}
	for _, c := range b.Cells() {
		payload.Board = append(payload.Board, agent.Stone{Cell: c, Mark: b.At(c)})
	}
	if !last.IsNone() {
		payload.Last = &last
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return game.NoCell, errors.Wrap(err, "failed to encode move request")
	}
	resp, err := r.client.Post(r.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return game.NoCell, errors.Wrap(err, "failed to post move request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return game.NoCell, nil
	}
	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return game.NoCell, errors.Errorf("agent returned status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
	}

	var move agent.MoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&move); err != nil {
		return game.NoCell, errors.Wrap(err, "failed to decode move")
	}
	return game.Cell{X: move.X, Y: move.Y}, nil
}
