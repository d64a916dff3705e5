package game

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Mark is the content of a cell.
type Mark uint8

const (
	None Mark = iota
	X
	O
)

func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	}
	return None
}

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	}
	return "."
}

func ParseMark(s string) (Mark, error) {
	switch s {
	case "X", "x":
		return X, nil
	case "O", "o":
		return O, nil
	}
	return None, errors.Errorf("unknown mark %q", s)
}

func (m Mark) MarshalText() ([]byte, error) {
	if m != X && m != O {
		return nil, errors.Errorf("cannot encode mark %d", m)
	}
	return []byte(m.String()), nil
}

func (m *Mark) UnmarshalText(text []byte) error {
	parsed, err := ParseMark(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Cell is a coordinate on the unbounded grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoCell is returned when there is no legal move, and passed as the last
// move when it is unknown.
var NoCell = Cell{X: math.MinInt, Y: math.MinInt}

// Origin is the opening move on an empty board.
var Origin = Cell{}

func (c Cell) IsNone() bool {
	return c == NoCell
}

func (c Cell) Offset(dx, dy, steps int) Cell {
	return Cell{X: c.X + dx*steps, Y: c.Y + dy*steps}
}

// Less orders cells by X, then Y.
func (c Cell) Less(other Cell) bool {
	if c.X != other.X {
		return c.X < other.X
	}
	return c.Y < other.Y
}

func (c Cell) String() string {
	if c.IsNone() {
		return "(none)"
	}
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Directions are the four line axes: horizontal, vertical and both diagonals.
var Directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
