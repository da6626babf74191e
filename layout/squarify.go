// Package layout computes squarified treemap rectangles.
package layout

import (
	"math"
	"sort"
)

// DefaultMinCell is the smallest width and height a rectangle is given so
// its label stays legible.
const DefaultMinCell = 10.0

// Rect is a placed rectangle in canvas coordinates (origin top-left).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns Width·Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Squarify places one rectangle per value on a width×height canvas with
// area proportional to value. The result is indexed like values.
//
// Items are taken largest first. A row keeps growing while adding the next
// item does not worsen the row's worst aspect ratio; the finished row is laid
// along the shorter side of the remaining space. Rectangles smaller than
// minCell in either direction are enlarged to minCell and pulled back inside
// the canvas. Non-positive values get a minCell square at the last free
// corner.
func Squarify(values []float64, width, height, minCell float64) []Rect {
	rects := make([]Rect, len(values))
	if len(values) == 0 || width <= 0 || height <= 0 {
		return rects
	}
	if minCell < 0 {
		minCell = 0
	}

	var total float64
	order := make([]int, 0, len(values))
	var empty []int
	for i, v := range values {
		if v > 0 {
			total += v
			order = append(order, i)
		} else {
			empty = append(empty, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	scale := 0.0
	if total > 0 {
		scale = width * height / total
	}
	areas := make(map[int]float64, len(order))
	for _, i := range order {
		areas[i] = values[i] * scale
	}

	s := &space{w: width, h: height}
	var row []int
	for k := 0; k < len(order); {
		side := math.Min(s.w, s.h)
		cand := append(append([]int(nil), row...), order[k])
		if len(row) == 0 || worst(cand, areas, side) <= worst(row, areas, side) {
			row = cand
			k++
			continue
		}
		s.place(row, areas, rects)
		row = nil
	}
	if len(row) > 0 {
		s.place(row, areas, rects)
	}

	for _, i := range empty {
		rects[i] = Rect{X: s.x, Y: s.y}
	}
	for i := range rects {
		rects[i] = clamp(rects[i], width, height, minCell)
	}
	return rects
}

// space is the free area left after placing rows.
type space struct {
	x, y, w, h float64
}

// place lays a finished row along the shorter side and shrinks the space.
func (s *space) place(row []int, areas map[int]float64, rects []Rect) {
	var rowArea float64
	for _, i := range row {
		rowArea += areas[i]
	}
	if rowArea <= 0 {
		return
	}

	if s.w >= s.h {
		// column on the left
		colW := rowArea / s.h
		y := s.y
		for _, i := range row {
			h := areas[i] / colW
			rects[i] = Rect{X: s.x, Y: y, Width: colW, Height: h}
			y += h
		}
		s.x += colW
		s.w -= colW
		return
	}

	// row along the top
	rowH := rowArea / s.w
	x := s.x
	for _, i := range row {
		w := areas[i] / rowH
		rects[i] = Rect{X: x, Y: s.y, Width: w, Height: rowH}
		x += w
	}
	s.y += rowH
	s.h -= rowH
}

// worst returns the largest aspect ratio in a row laid along side.
func worst(row []int, areas map[int]float64, side float64) float64 {
	var sum, lo, hi float64
	lo = math.Inf(1)
	for _, i := range row {
		a := areas[i]
		sum += a
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	if sum <= 0 || lo <= 0 {
		return math.Inf(1)
	}
	s2 := sum * sum
	side2 := side * side
	return math.Max(side2*hi/s2, s2/(side2*lo))
}

func clamp(r Rect, width, height, minCell float64) Rect {
	if r.Width < minCell {
		r.Width = minCell
	}
	if r.Height < minCell {
		r.Height = minCell
	}
	if r.X+r.Width > width {
		r.X = math.Max(0, width-r.Width)
	}
	if r.Y+r.Height > height {
		r.Y = math.Max(0, height-r.Height)
	}
	return r
}
