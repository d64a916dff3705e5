package game

import (
	"gomoku/genome"
	"gomoku/meta"
)

// Window is a run of WIN_LENGTH cells starting at Start along Directions[Dir].
// Start is always the lexicographically smaller endpoint, so a window has
// exactly one key no matter which of its cells it was reached from.
type Window struct {
	Start Cell
	Dir   uint8
}

func (w Window) At(i int) Cell {
	d := Directions[w.Dir]
	return w.Start.Offset(d[0], d[1], i)
}

func (w Window) Contains(c Cell) bool {
	for i := 0; i < meta.WIN_LENGTH; i++ {
		if w.At(i) == c {
			return true
		}
	}
	return false
}

// windowsThrough calls fn for each of the WIN_LENGTH windows per direction
// that contain c.
func windowsThrough(c Cell, fn func(Window)) {
	for dir, d := range Directions {
		for offset := 0; offset < meta.WIN_LENGTH; offset++ {
			fn(Window{Start: c.Offset(d[0], d[1], -offset), Dir: uint8(dir)})
		}
	}
}

// Evaluator scores positions as a weighted sum of window patterns.
type Evaluator struct {
	weights genome.Weights
}

func NewEvaluator(weights genome.Weights) *Evaluator {
	return &Evaluator{weights: weights}
}

func (e *Evaluator) Weights() genome.Weights {
	return e.weights
}

// scoreWindow scores one window for mark. The cell that would complete a
// four is reported through threat when the window holds one.
func (e *Evaluator) scoreWindow(b *Board, w Window, mark Mark) (score int, threat Cell, isFour bool) {
	opponent := mark.Opponent()
	friendly, empty := 0, 0
	threat = NoCell
	for i := 0; i < meta.WIN_LENGTH; i++ {
		switch c := w.At(i); b.At(c) {
		case mark:
			friendly++
		case None:
			empty++
			threat = c
		default:
			return 0, NoCell, false
		}
	}
	if friendly < 2 {
		return 0, NoCell, false
	}

	open := b.At(w.At(-1)) != opponent && b.At(w.At(meta.WIN_LENGTH)) != opponent
	switch {
	case friendly == 4:
		if open {
			return e.weights[genome.FourOpen], threat, true
		}
		return e.weights[genome.FourBlocked], threat, true
	case friendly == 3 && empty == 2:
		if open {
			return e.weights[genome.ThreeOpen], NoCell, false
		}
		return e.weights[genome.ThreeBlocked], NoCell, false
	case friendly == 2 && empty == 3 && open:
		return e.weights[genome.TwoOpen], NoCell, false
	}
	return 0, NoCell, false
}

// Windows scores every window holding at least one of mark's cells. Each
// window appears once and zero-scoring windows are left out.
func (e *Evaluator) Windows(b *Board, mark Mark) map[Window]int {
	scores := make(map[Window]int)
	seen := make(map[Window]struct{})
	for c, m := range b.cells {
		if m != mark {
			continue
		}
		windowsThrough(c, func(w Window) {
			if _, ok := seen[w]; ok {
				return
			}
			seen[w] = struct{}{}
			if score, _, _ := e.scoreWindow(b, w, mark); score != 0 {
				scores[w] = score
			}
		})
	}
	return scores
}

// ScoreFull scores the whole board for mark, including the double-threat
// bonus when two or more distinct cells would each complete a five.
func (e *Evaluator) ScoreFull(b *Board, mark Mark) int {
	total := 0
	seen := make(map[Window]struct{})
	threats := make(map[Cell]struct{})
	for c, m := range b.cells {
		if m != mark {
			continue
		}
		windowsThrough(c, func(w Window) {
			if _, ok := seen[w]; ok {
				return
			}
			seen[w] = struct{}{}
			score, threat, isFour := e.scoreWindow(b, w, mark)
			total += score
			if isFour {
				threats[threat] = struct{}{}
			}
		})
	}
	if len(threats) >= 2 {
		total += e.weights[genome.DoubleThreat]
	}
	return total
}

// ScoreIncremental scores only the windows through c. It never adds the
// double-threat bonus, which cannot be seen from a single cell.
func (e *Evaluator) ScoreIncremental(b *Board, c Cell, mark Mark) int {
	total := 0
	windowsThrough(c, func(w Window) {
		score, _, _ := e.scoreWindow(b, w, mark)
		total += score
	})
	return total
}

// ScoreDelta is the change in evalMark's incremental score at c caused by
// moveMark playing there. c must be empty; the board is left unchanged.
func (e *Evaluator) ScoreDelta(b *Board, c Cell, moveMark, evalMark Mark) int {
	before := e.ScoreIncremental(b, c, evalMark)
	b.Place(c, moveMark)
	after := e.ScoreIncremental(b, c, evalMark)
	b.Remove(c)
	return after - before
}

// ScoreTouching sums the full evaluator's window scores for mark over the
// windows containing c. It is the reference ScoreIncremental must agree with.
func (e *Evaluator) ScoreTouching(b *Board, c Cell, mark Mark) int {
	total := 0
	for w, score := range e.Windows(b, mark) {
		if w.Contains(c) {
			total += score
		}
	}
	return total
}
