package genome

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestWeightsMutate(t *testing.T) {
	t.Run("keeping every weight positive", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for _, rate := range []float64{0.01, 0.15, 0.5, 0.99} {
			w := Weights{1, 1, 2, 1, 1, 3}
			for i := 0; i < 200; i++ {
				w = w.Mutate(rate, rng)
				for p, value := range w {
					require.GreaterOrEqual(t, value, 1, "Should floor %s at 1 (rate %v)", Param(p), rate)
				}
			}
		}
	})

	t.Run("staying within the relative rate", func(t *testing.T) {
		rng := rand.New(rand.NewSource(11))
		w := Default()
		for i := 0; i < 100; i++ {
			got := w.Mutate(0.1, rng)
			for p := range w {
				require.InDelta(t, float64(w[p]), float64(got[p]), float64(w[p])*0.1+1,
					"Should change %s by at most 10%%", Param(p))
			}
		}
	})

	t.Run("leaving the parent untouched", func(t *testing.T) {
		w := Default()
		_ = w.Mutate(0.5, rand.New(rand.NewSource(1)))

		require.Equal(t, Default(), w, "Should return a new vector")
	})
}

func TestWeightsCrossover(t *testing.T) {
	t.Run("taking every gene from one parent", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		a := Weights{1, 2, 3, 4, 5, 6}
		b := Weights{10, 20, 30, 40, 50, 60}
		sawA, sawB := false, false
		for i := 0; i < 50; i++ {
			child := a.Crossover(b, rng)
			for p := range child {
				require.True(t, child[p] == a[p] || child[p] == b[p], "Should inherit %s from a parent", Param(p))
				sawA = sawA || child[p] == a[p]
				sawB = sawB || child[p] == b[p]
			}
		}
		require.True(t, sawA && sawB, "Should mix genes from both parents")
	})
}

func TestWeightsPersistence(t *testing.T) {
	t.Run("round trip through text", func(t *testing.T) {
		w := Weights{612, 187, 44, 23, 7, 9100}
		var buf bytes.Buffer

		_, err := w.WriteTo(&buf)
		require.NoError(t, err)
		require.Equal(t, "612\n187\n44\n23\n7\n9100\n", buf.String(), "Should write one value per line")

		got, err := Read(&buf)
		require.NoError(t, err)
		require.Equal(t, w, got, "Should restore all six fields")
	})

	t.Run("reading a file without the double-threat line", func(t *testing.T) {
		got, err := Read(strings.NewReader("400\n150\n60\n25\n8\n"))

		require.NoError(t, err)
		require.Equal(t, Weights{400, 150, 60, 25, 8, Default()[DoubleThreat]}, got,
			"Should keep the default for the missing trailing field")
	})

	t.Run("reading a truncated file", func(t *testing.T) {
		got, err := Read(strings.NewReader("600\n250\n60\n25\n"))

		require.NoError(t, err)
		want := Default()
		want[FourOpen], want[FourBlocked], want[ThreeOpen], want[ThreeBlocked] = 600, 250, 60, 25
		require.Equal(t, want, got, "Should keep the four values read and default the rest")

		got, err = Read(strings.NewReader(""))
		require.NoError(t, err)
		require.Equal(t, Default(), got, "Should default every field of an empty file")
	})

	t.Run("rejecting garbage", func(t *testing.T) {
		_, err := Read(strings.NewReader("400\nabc\n60\n25\n8\n"))
		require.Error(t, err, "Should fail on a non-integer line")

		_, err = Read(strings.NewReader("400\n0\n60\n25\n8\n"))
		require.Error(t, err, "Should fail on a non-positive weight")
	})

	t.Run("saving and loading a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.txt")
		w := Default().Mutate(0.2, rand.New(rand.NewSource(5)))

		require.NoError(t, w.Save(path))
		got, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, w, got, "Should load what was saved")
	})

	t.Run("falling back to defaults", func(t *testing.T) {
		got := LoadOrDefault(filepath.Join(t.TempDir(), "missing.txt"))

		require.Equal(t, Default(), got, "Should use defaults for an unreadable file")
	})
}

func TestParamString(t *testing.T) {
	require.Equal(t, "four-open", FourOpen.String())
	require.Equal(t, "double-threat-bonus", DoubleThreat.String())
	require.Contains(t, Default().String(), "two-open=5")
}
