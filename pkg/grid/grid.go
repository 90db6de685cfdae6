package grid

import (
	"fmt"
	"math"
	"strings"
)

// Reference print resolution in pixels per inch. All physical sizes in this
// package convert through px = mm * DPI / 25.4.
const DPI = 150.0

// MarginMM is the physical bleed margin added around every tile, applied
// symmetrically on all four sides.
const MarginMM = 10.0

// PxFromMM converts a physical length to pixels at the reference resolution.
func PxFromMM(mm float64) int {
	return int(math.Round(mm * DPI / 25.4))
}

// MMFromPx converts pixels at the reference resolution to millimetres.
func MMFromPx(px int) float64 {
	return float64(px) * 25.4 / DPI
}

// MarginPx returns the bleed margin in pixels at the reference resolution.
func MarginPx() int {
	return PxFromMM(MarginMM)
}

// Layout identifies one of the supported print grid layouts.
type Layout int

const (
	Layout2x3 Layout = iota
	Layout3x3
)

// Spec describes the fixed geometry of a layout: the grid partition counts
// and the nominal full-image pixel dimensions the layout was designed for.
type Spec struct {
	Rows, Cols       int
	ExpectedWidthPx  int
	ExpectedHeightPx int
}

// TotalTiles returns Rows*Cols.
func (s Spec) TotalTiles() int {
	return s.Rows * s.Cols
}

var specs = map[Layout]Spec{
	Layout2x3: {Rows: 2, Cols: 3, ExpectedWidthPx: 3366, ExpectedHeightPx: 3276},
	Layout3x3: {Rows: 3, Cols: 3, ExpectedWidthPx: 3366, ExpectedHeightPx: 4914},
}

// Spec returns the fixed geometry for the layout.
func (l Layout) Spec() Spec {
	return specs[l]
}

func (l Layout) String() string {
	s := specs[l]
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// ParseLayout parses a "RxC" layout name such as "2x3" or "3x3".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2x3":
		return Layout2x3, nil
	case "3x3":
		return Layout3x3, nil
	default:
		return 0, fmt.Errorf("unknown grid layout: %q (supported: 2x3, 3x3)", s)
	}
}

// Tile is one rectangular sub-region of the source image, in row-major order.
// X/Y/Width/Height are in source-image pixels, before margins.
type Tile struct {
	Row, Col int // 0-based
	Ordinal  int // 1-based, row-major
	X, Y     int
	Width    int
	Height   int
}

// Label returns the reassembly label stamped in the tile's corners.
func (t Tile) Label() string {
	return fmt.Sprintf("%d-%d", t.Row+1, t.Col+1)
}

// Partition splits a width×height image into rows*cols tiles in row-major
// order. Tile boundaries are rounded to the nearest pixel; adjacent tiles
// share boundaries, so the tiles cover the image exactly with no gaps or
// overlaps regardless of how the division rounds.
func Partition(width, height, rows, cols int) []Tile {
	xs := boundaries(width, cols)
	ys := boundaries(height, rows)

	tiles := make([]Tile, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			tiles = append(tiles, Tile{
				Row:     row,
				Col:     col,
				Ordinal: row*cols + col + 1,
				X:       xs[col],
				Y:       ys[row],
				Width:   xs[col+1] - xs[col],
				Height:  ys[row+1] - ys[row],
			})
		}
	}
	return tiles
}

// boundaries returns the parts+1 pixel boundaries of an axis, with the first
// at 0 and the last exactly at length.
func boundaries(length, parts int) []int {
	bs := make([]int, parts+1)
	for k := 0; k <= parts; k++ {
		bs[k] = int(math.Round(float64(k) * float64(length) / float64(parts)))
	}
	return bs
}
