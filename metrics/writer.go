package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gomoku/genome"

	"github.com/pkg/errors"
)

// AgentConfig names an agent configuration string (see agent.New) in
// experiment records.
type AgentConfig struct {
	ID     int
	Config string
}

type GameRecord struct {
	ID         int
	Generation int
	Agent1     int // population index or AgentConfig.ID
	Agent2     int // population index or AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type GenerationRecord struct {
	Generation int
	Rank       int
	Fitness    float64
	Wins       int
	Losses     int
	Draws      int
	Weights    genome.Weights
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by the current timestamp.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create directory")
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", name)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return errors.Wrapf(err, "failed to write %s header", name)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return errors.Wrapf(err, "failed to write %s rows", name)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{strconv.Itoa(config.ID), config.Config})
	}
	return w.write("agent_configs.csv", []string{"id", "config"}, rows)
}

func (w *Writer) WriteGenerations(generation int, records []GenerationRecord) error {
	header := []string{"generation", "rank", "fitness", "wins", "losses", "draws"}
	for p := genome.Param(0); p < genome.NumParams; p++ {
		header = append(header, p.String())
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := []string{
			strconv.Itoa(record.Generation),
			strconv.Itoa(record.Rank),
			strconv.FormatFloat(record.Fitness, 'f', 4, 64),
			strconv.Itoa(record.Wins),
			strconv.Itoa(record.Losses),
			strconv.Itoa(record.Draws),
		}
		for _, v := range record.Weights {
			row = append(row, strconv.Itoa(v))
		}
		rows = append(rows, row)
	}
	return w.write(fmt.Sprintf("generation_%03d.csv", generation), header, rows)
}

func (w *Writer) WriteGameRecords(generation int, records []GameRecord) error {
	return w.WriteGames(fmt.Sprintf("games_%03d.csv", generation), records)
}

func (w *Writer) WriteGames(name string, records []GameRecord) error {
	header := []string{"id", "generation", "agent1", "agent2", "starting_player", "winner", "reason", "start_time", "end_time", "duration", "total_moves"}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Generation),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			strconv.Itoa(record.Winner),
			record.Reason,
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		})
	}
	return w.write(name, header, rows)
}

func (w *Writer) WriteMoveRecords(name string, records []MoveRecord) error {
	header := []string{"game", "step", "player", "x", "y", "stage", "duration", "candidates", "nodes", "cutoffs", "timeouts"}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			strconv.Itoa(record.X),
			strconv.Itoa(record.Y),
			string(record.Stage),
			record.Duration.String(),
			strconv.Itoa(record.Candidates),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Cutoffs),
			strconv.Itoa(record.Timeouts),
		})
	}
	return w.write(name, header, rows)
}
