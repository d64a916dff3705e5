package game

import (
	"sort"
	"strconv"
	"strings"

	"gomoku/meta"

	"github.com/pkg/errors"
)

var ErrOccupied = errors.New("cell is occupied")

// Board is a sparse grid: a cell is present iff it holds a mark.
type Board struct {
	cells map[Cell]Mark
}

func NewBoard() *Board {
	return &Board{cells: make(map[Cell]Mark)}
}

func (b *Board) IsOccupied(c Cell) bool {
	_, ok := b.cells[c]
	return ok
}

// At returns the mark at c, or None for an empty cell.
func (b *Board) At(c Cell) Mark {
	return b.cells[c]
}

func (b *Board) Len() int {
	return len(b.cells)
}

// Place puts mark on an empty cell. Search code only places frontier
// cells, so an occupied cell here is a broken invariant and panics.
func (b *Board) Place(c Cell, mark Mark) {
	if err := b.TryPlace(c, mark); err != nil {
		panic(err)
	}
}

// TryPlace is Place for callers that validate untrusted moves.
func (b *Board) TryPlace(c Cell, mark Mark) error {
	if mark != X && mark != O {
		return errors.Errorf("cannot place mark %d", mark)
	}
	if c.IsNone() {
		return errors.New("cannot place on the no-move sentinel")
	}
	if current, ok := b.cells[c]; ok {
		return errors.Wrapf(ErrOccupied, "%v holds %v", c, current)
	}
	b.cells[c] = mark
	return nil
}

// Remove undoes a Place at c.
func (b *Board) Remove(c Cell) {
	delete(b.cells, c)
}

// Occupants returns a copy of every occupied cell.
func (b *Board) Occupants() map[Cell]Mark {
	out := make(map[Cell]Mark, len(b.cells))
	for c, m := range b.cells {
		out[c] = m
	}
	return out
}

// Clone returns an independent copy for simulation.
func (b *Board) Clone() *Board {
	return &Board{cells: b.Occupants()}
}

// run counts consecutive cells holding mark from c (exclusive) along (dx, dy).
func (b *Board) run(c Cell, dx, dy int, mark Mark) int {
	n := 0
	for next := c.Offset(dx, dy, 1); b.cells[next] == mark; next = next.Offset(dx, dy, 1) {
		n++
	}
	return n
}

// IsWin reports whether the mark at c is part of a line of at least five.
func (b *Board) IsWin(c Cell) bool {
	mark, ok := b.cells[c]
	if !ok {
		return false
	}
	for _, d := range Directions {
		if 1+b.run(c, d[0], d[1], mark)+b.run(c, -d[0], -d[1], mark) >= meta.WIN_LENGTH {
			return true
		}
	}
	return false
}

// IsWinningMove reports whether placing mark on the empty cell c completes
// five in a row. The board is restored before returning.
func (b *Board) IsWinningMove(c Cell, mark Mark) bool {
	b.Place(c, mark)
	wins := b.IsWin(c)
	b.Remove(c)
	return wins
}

// HasWin scans the whole board for a completed line.
func (b *Board) HasWin() (Mark, bool) {
	for c, mark := range b.cells {
		if b.IsWin(c) {
			return mark, true
		}
	}
	return None, false
}

// Bounds returns the smallest box holding every mark.
func (b *Board) Bounds() (lo, hi Cell, ok bool) {
	for c := range b.cells {
		if !ok {
			lo, hi, ok = c, c, true
			continue
		}
		lo.X, lo.Y = min(lo.X, c.X), min(lo.Y, c.Y)
		hi.X, hi.Y = max(hi.X, c.X), max(hi.Y, c.Y)
	}
	return lo, hi, ok
}

// Cells returns the occupied cells in Cell.Less order.
func (b *Board) Cells() []Cell {
	cells := make([]Cell, 0, len(b.cells))
	for c := range b.cells {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	return cells
}

// String draws the occupied area with y growing upwards and coordinates
// on the right and bottom edges.
func (b *Board) String() string {
	lo, hi, ok := b.Bounds()
	if !ok {
		return "(empty board)\n"
	}

	width := 1
	for _, v := range []int{lo.X, hi.X, lo.Y, hi.Y} {
		width = max(width, len(strconv.Itoa(v)))
	}
	pad := func(s string) string {
		return strings.Repeat(" ", width+1-len(s)) + s
	}

	var sb strings.Builder
	for y := hi.Y; y >= lo.Y; y-- {
		for x := lo.X; x <= hi.X; x++ {
			sb.WriteString(pad(b.At(Cell{X: x, Y: y}).String()))
		}
		sb.WriteString("  " + strconv.Itoa(y) + "\n")
	}
	for x := lo.X; x <= hi.X; x++ {
		sb.WriteString(pad(strconv.Itoa(x)))
	}
	sb.WriteString("\n")
	return sb.String()
}
