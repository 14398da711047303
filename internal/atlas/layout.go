// Package atlas composes item images into one square texture atlas.
//
// Items occupy cells in row-major order; the sphere shaders look a cell up
// from the item index and the grid side, so the layout here and the
// fragment stage must agree.
package atlas

import (
	"image"
	gomath "math"
)

// DefaultCellSize is the edge length of one atlas cell in pixels.
const DefaultCellSize = 1024

// Layout describes a Side x Side grid of square cells.
type Layout struct {
	Side     int
	CellSize int
}

// NewLayout returns the smallest square grid holding count items.
func NewLayout(count, cellSize int) Layout {
	if count < 1 {
		count = 1
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return Layout{
		Side:     int(gomath.Ceil(gomath.Sqrt(float64(count)))),
		CellSize: cellSize,
	}
}

// Size returns the atlas edge length in pixels.
func (l Layout) Size() int {
	return l.Side * l.CellSize
}

// Cell returns the column and row of item i.
func (l Layout) Cell(i int) (col, row int) {
	return i % l.Side, i / l.Side
}

// Rect returns the pixel rectangle of item i.
func (l Layout) Rect(i int) image.Rectangle {
	col, row := l.Cell(i)
	origin := image.Pt(col*l.CellSize, row*l.CellSize)
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(l.CellSize, l.CellSize))}
}
