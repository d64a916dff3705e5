package genome

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Param names one scoring parameter. The order is the persisted file order.
type Param int

const (
	FourOpen Param = iota
	FourBlocked
	ThreeOpen
	ThreeBlocked
	TwoOpen
	DoubleThreat
	NumParams
)

var paramNames = [NumParams]string{
	"four-open",
	"four-blocked",
	"three-open",
	"three-blocked",
	"two-open",
	"double-threat-bonus",
}

func (p Param) String() string {
	if p < 0 || p >= NumParams {
		return fmt.Sprintf("param(%d)", int(p))
	}
	return paramNames[p]
}

// Weights is the linear pattern weight vector tuned by the trainer.
// A value copy is immutable from the point of view of whoever holds it.
type Weights [NumParams]int

// Default returns the hand-tuned starting weights.
func Default() Weights {
	return Weights{
		FourOpen:     500,
		FourBlocked:  200,
		ThreeOpen:    50,
		ThreeBlocked: 20,
		TwoOpen:      5,
		DoubleThreat: 10000,
	}
}

// Mutate perturbs every weight by an independent relative change drawn
// uniformly from [-rate, +rate]. Results never drop below 1.
func (w Weights) Mutate(rate float64, rng *rand.Rand) Weights {
	var mutated Weights
	for i, value := range w {
		change := (rng.Float64()*2 - 1) * rate
		mutated[i] = max(1, int(float64(value)*(1+change)))
	}
	return mutated
}

// Crossover takes every weight from w or other with equal probability.
func (w Weights) Crossover(other Weights, rng *rand.Rand) Weights {
	var child Weights
	for i := range w {
		if rng.Intn(2) == 0 {
			child[i] = w[i]
		} else {
			child[i] = other[i]
		}
	}
	return child
}

// WriteTo writes one decimal value per line in Param order.
func (w Weights) WriteTo(out io.Writer) (int64, error) {
	var written int64
	for _, value := range w {
		n, err := fmt.Fprintf(out, "%d\n", value)
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "failed to write weight")
		}
	}
	return written, nil
}

// Read parses the persisted format. Missing trailing values keep their
// defaults, so files written before the double-threat bonus existed still
// load. Extra lines are ignored.
func Read(in io.Reader) (Weights, error) {
	w := Default()
	count := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() && count < int(NumParams) {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		value, err := strconv.Atoi(line)
		if err != nil {
			return w, errors.Wrapf(err, "failed to parse %s=%q", Param(count), line)
		}
		if value < 1 {
			return w, errors.Errorf("weight %s must be positive, got %d", Param(count), value)
		}
		w[count] = value
		count++
	}
	if err := scanner.Err(); err != nil {
		return w, errors.Wrap(err, "failed to read weights")
	}
	return w, nil
}

func (w Weights) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create weight file %s", path)
	}
	defer f.Close()

	if _, err := w.WriteTo(f); err != nil {
		return err
	}
	return errors.Wrapf(f.Sync(), "failed to flush weight file %s", path)
}

func Load(path string) (Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		return Default(), errors.Wrapf(err, "failed to open weight file %s", path)
	}
	defer f.Close()

	w, err := Read(f)
	if err != nil {
		return Default(), errors.WithMessagef(err, "weight file %s", path)
	}
	return w, nil
}

// LoadOrDefault loads path and falls back to the defaults when it is
// empty or unreadable.
func LoadOrDefault(path string) Weights {
	if path == "" {
		return Default()
	}
	w, err := Load(path)
	if err != nil {
		log.Warn().Err(err).Msg("using default weights")
		return Default()
	}
	return w
}

func (w Weights) String() string {
	parts := make([]string, len(w))
	for i, value := range w {
		parts[i] = fmt.Sprintf("%s=%d", Param(i), value)
	}
	return strings.Join(parts, " ")
}

func (w Weights) MarshalZerologObject(e *zerolog.Event) {
	for i, value := range w {
		e.Int(Param(i).String(), value)
	}
}
