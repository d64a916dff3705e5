package trainer

import (
	"sort"

	"gomoku/genome"
	"gomoku/metrics"
	"gomoku/utils"
)

// Candidate is a genome with its record in the current tournament.
type Candidate struct {
	Weights genome.Weights
	Wins    int
	Losses  int
	Draws   int
}

func (c *Candidate) Games() int {
	return c.Wins + c.Losses + c.Draws
}

// Fitness is the tournament score with draws counted as half a win, or 0
// before any game.
func (c *Candidate) Fitness() float64 {
	games := c.Games()
	if games == 0 {
		return 0
	}
	return (float64(c.Wins) + 0.5*float64(c.Draws)) / float64(games)
}

func (c *Candidate) Reset() {
	c.Wins, c.Losses, c.Draws = 0, 0, 0
}

type Population []Candidate

// Best returns the index of the first candidate with the highest fitness.
func (p Population) Best() int {
	return utils.ArgMax(p, func(c Candidate) float64 { return c.Fitness() })
}

// Sorted returns a copy ordered by descending fitness. Equal candidates
// keep their order.
func (p Population) Sorted() Population {
	sorted := make(Population, len(p))
	copy(sorted, p)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fitness() > sorted[j].Fitness() })
	return sorted
}

// Records ranks the population for the CSV writer and the ledger.
func (p Population) Records(generation int) []metrics.GenerationRecord {
	sorted := p.Sorted()
	records := make([]metrics.GenerationRecord, len(sorted))
	for i, c := range sorted {
		records[i] = metrics.GenerationRecord{
			Generation: generation,
			Rank:       i + 1,
			Fitness:    c.Fitness(),
			Wins:       c.Wins,
			Losses:     c.Losses,
			Draws:      c.Draws,
			Weights:    c.Weights,
		}
	}
	return records
}
