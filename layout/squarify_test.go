package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquarifyTilesCanvas(t *testing.T) {
	values := []float64{6, 6, 4, 3, 2, 2, 1}
	rects := Squarify(values, 600, 400, 0)
	require.Len(t, rects, len(values))

	var area float64
	for i, r := range rects {
		area += r.Area()
		assert.GreaterOrEqual(t, r.X, -1e-9)
		assert.GreaterOrEqual(t, r.Y, -1e-9)
		assert.LessOrEqual(t, r.X+r.Width, 600+1e-6)
		assert.LessOrEqual(t, r.Y+r.Height, 400+1e-6)
		// area proportional to value
		assert.InDelta(t, values[i]/24*600*400, r.Area(), 1e-6)
	}
	assert.InDelta(t, 600*400, area, 1e-6)
}

func TestSquarifyNoOverlap(t *testing.T) {
	rects := Squarify([]float64{5, 4, 3, 2, 1}, 300, 200, 0)
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			ox := math.Min(a.X+a.Width, b.X+b.Width) - math.Max(a.X, b.X)
			oy := math.Min(a.Y+a.Height, b.Y+b.Height) - math.Max(a.Y, b.Y)
			if ox > 1e-6 && oy > 1e-6 {
				t.Errorf("rects %d and %d overlap: %+v %+v", i, j, a, b)
			}
		}
	}
}

func TestSquarifyMinimumCell(t *testing.T) {
	rects := Squarify([]float64{1000, 1, 0}, 200, 100, DefaultMinCell)
	require.Len(t, rects, 3)
	for _, r := range rects {
		assert.GreaterOrEqual(t, r.Width, DefaultMinCell)
		assert.GreaterOrEqual(t, r.Height, DefaultMinCell)
		assert.LessOrEqual(t, r.X+r.Width, 200.0+1e-9)
		assert.LessOrEqual(t, r.Y+r.Height, 100.0+1e-9)
	}
}

func TestSquarifyAspectRatios(t *testing.T) {
	rects := Squarify([]float64{1, 1, 1, 1}, 100, 100, 0)
	for _, r := range rects {
		assert.InDelta(t, 50, r.Width, 1e-9)
		assert.InDelta(t, 50, r.Height, 1e-9)
	}
}

func TestSquarifyEmpty(t *testing.T) {
	assert.Empty(t, Squarify(nil, 100, 100, 10))
	assert.Len(t, Squarify([]float64{1}, 0, 100, 10), 1)
}
