package game

import "sort"

// Frontier is the candidate-move set: empty cells in the 8-neighborhood of
// any occupied cell, or the origin alone while the board is empty.
//
// Speculative moves go through Push/Pop, which keep an undo log so every
// Pop reverses exactly what the matching Push changed.
type Frontier struct {
	cells map[Cell]struct{}
	undo  []frontierStep
}

type frontierStep struct {
	cell   Cell
	member bool
	added  []Cell
}

func NewFrontier() *Frontier {
	return &Frontier{cells: make(map[Cell]struct{})}
}

// Seed rebuilds the frontier from scratch. The undo log is discarded.
func (f *Frontier) Seed(b *Board) {
	clear(f.cells)
	f.undo = f.undo[:0]
	if b.Len() == 0 {
		f.cells[Origin] = struct{}{}
		return
	}
	for c := range b.cells {
		forNeighbors(c, func(n Cell) {
			if !b.IsOccupied(n) {
				f.cells[n] = struct{}{}
			}
		})
	}
}

// AfterPlace updates the frontier for a mark just placed at c and returns
// the neighbors it newly inserted.
func (f *Frontier) AfterPlace(b *Board, c Cell) []Cell {
	delete(f.cells, c)
	var added []Cell
	forNeighbors(c, func(n Cell) {
		if b.IsOccupied(n) {
			return
		}
		if _, ok := f.cells[n]; !ok {
			f.cells[n] = struct{}{}
			added = append(added, n)
		}
	})
	return added
}

// restore undoes AfterPlace(b, c) given the cells it returned. c goes back
// only if it was a member before.
func (f *Frontier) restore(c Cell, added []Cell, member bool) {
	for _, n := range added {
		delete(f.cells, n)
	}
	if member {
		f.cells[c] = struct{}{}
	}
}

// Push is AfterPlace with the change recorded on the undo log.
func (f *Frontier) Push(b *Board, c Cell) {
	_, member := f.cells[c]
	added := f.AfterPlace(b, c)
	f.undo = append(f.undo, frontierStep{cell: c, member: member, added: added})
}

// Pop reverses the most recent Push.
func (f *Frontier) Pop() {
	last := len(f.undo) - 1
	if last < 0 {
		panic("frontier: pop without push")
	}
	step := f.undo[last]
	f.undo = f.undo[:last]
	f.restore(step.cell, step.added, step.member)
}

// Depth is the number of Push calls not yet popped.
func (f *Frontier) Depth() int {
	return len(f.undo)
}

// Prune drops cells that were occupied behind the frontier's back.
func (f *Frontier) Prune(b *Board) {
	for c := range f.cells {
		if b.IsOccupied(c) {
			delete(f.cells, c)
		}
	}
}

func (f *Frontier) Contains(c Cell) bool {
	_, ok := f.cells[c]
	return ok
}

func (f *Frontier) Len() int {
	return len(f.cells)
}

// Cells returns the members in Cell.Less order so that iteration, and
// therefore seeded play, is reproducible.
func (f *Frontier) Cells() []Cell {
	cells := make([]Cell, 0, len(f.cells))
	for c := range f.cells {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	return cells
}

func forNeighbors(c Cell, fn func(Cell)) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				fn(Cell{X: c.X + dx, Y: c.Y + dy})
			}
		}
	}
}
