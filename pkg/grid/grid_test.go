package grid

import (
	"fmt"
	"testing"
)

func TestMarginPx(t *testing.T) {
	// 10mm at 150dpi
	if got := MarginPx(); got != 59 {
		t.Errorf("Expected margin of 59px, got %d", got)
	}
}

func TestPxMMRoundTrip(t *testing.T) {
	if got := PxFromMM(25.4); got != 150 {
		t.Errorf("Expected 25.4mm = 150px, got %d", got)
	}
	mm := MMFromPx(150)
	if mm < 25.39 || mm > 25.41 {
		t.Errorf("Expected 150px = 25.4mm, got %f", mm)
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("2x3")
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}
	if l != Layout2x3 {
		t.Errorf("Expected Layout2x3, got %v", l)
	}

	l, err = ParseLayout(" 3X3 ")
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}
	if l != Layout3x3 {
		t.Errorf("Expected Layout3x3, got %v", l)
	}

	if _, err := ParseLayout("4x4"); err == nil {
		t.Error("Expected error for unsupported layout")
	}
}

func TestSpecCatalog(t *testing.T) {
	s := Layout2x3.Spec()
	if s.Rows != 2 || s.Cols != 3 {
		t.Errorf("Expected 2x3, got %dx%d", s.Rows, s.Cols)
	}
	if s.ExpectedWidthPx != 3366 || s.ExpectedHeightPx != 3276 {
		t.Errorf("Unexpected nominal dimensions: %dx%d", s.ExpectedWidthPx, s.ExpectedHeightPx)
	}
	if s.TotalTiles() != 6 {
		t.Errorf("Expected 6 tiles, got %d", s.TotalTiles())
	}

	s = Layout3x3.Spec()
	if s.ExpectedWidthPx != 3366 || s.ExpectedHeightPx != 4914 {
		t.Errorf("Unexpected nominal dimensions: %dx%d", s.ExpectedWidthPx, s.ExpectedHeightPx)
	}
}

func TestPartitionRowMajorOrder(t *testing.T) {
	tiles := Partition(3366, 3276, 2, 3)
	if len(tiles) != 6 {
		t.Fatalf("Expected 6 tiles, got %d", len(tiles))
	}

	for i, tile := range tiles {
		if tile.Ordinal != i+1 {
			t.Errorf("Tile %d has ordinal %d, expected %d", i, tile.Ordinal, i+1)
		}
		wantRow, wantCol := i/3, i%3
		if tile.Row != wantRow || tile.Col != wantCol {
			t.Errorf("Tile %d at (%d,%d), expected (%d,%d)", i, tile.Row, tile.Col, wantRow, wantCol)
		}
	}
}

func TestTileLabel(t *testing.T) {
	tiles := Partition(300, 200, 2, 3)
	for _, tile := range tiles {
		want := fmt.Sprintf("%d-%d", tile.Row+1, tile.Col+1)
		if tile.Label() != want {
			t.Errorf("Tile %d label = %q, expected %q", tile.Ordinal, tile.Label(), want)
		}
	}
	if tiles[5].Label() != "2-3" {
		t.Errorf("Last tile label = %q, expected 2-3", tiles[5].Label())
	}
}

// Partitioning any image must cover it exactly: no gaps, no overlaps, and
// every tile with positive extent, even when the division doesn't come out
// even.
func TestPartitionExactCoverage(t *testing.T) {
	cases := []struct {
		w, h, rows, cols int
	}{
		{3366, 3276, 2, 3},
		{3366, 4914, 3, 3},
		{100, 100, 3, 3},   // 100/3 is fractional
		{7, 5, 2, 3},       // tiny, heavy rounding
		{3201, 3103, 3, 3}, // odd dimensions
		{1, 1, 1, 1},
	}

	for _, c := range cases {
		tiles := Partition(c.w, c.h, c.rows, c.cols)
		if len(tiles) != c.rows*c.cols {
			t.Errorf("%dx%d %dx%d: got %d tiles, expected %d", c.w, c.h, c.rows, c.cols, len(tiles), c.rows*c.cols)
			continue
		}

		covered := make([]bool, c.w*c.h)
		for _, tile := range tiles {
			if tile.Width <= 0 || tile.Height <= 0 {
				t.Errorf("%dx%d %dx%d: tile %d has non-positive extent %dx%d", c.w, c.h, c.rows, c.cols, tile.Ordinal, tile.Width, tile.Height)
			}
			for y := tile.Y; y < tile.Y+tile.Height; y++ {
				for x := tile.X; x < tile.X+tile.Width; x++ {
					if x < 0 || y < 0 || x >= c.w || y >= c.h {
						t.Fatalf("%dx%d %dx%d: tile %d exceeds image at (%d,%d)", c.w, c.h, c.rows, c.cols, tile.Ordinal, x, y)
					}
					idx := y*c.w + x
					if covered[idx] {
						t.Fatalf("%dx%d %dx%d: pixel (%d,%d) covered twice", c.w, c.h, c.rows, c.cols, x, y)
					}
					covered[idx] = true
				}
			}
		}
		for i, ok := range covered {
			if !ok {
				t.Fatalf("%dx%d %dx%d: pixel (%d,%d) not covered", c.w, c.h, c.rows, c.cols, i%c.w, i/c.w)
			}
		}
	}
}

func TestPartitionRowWidthsSum(t *testing.T) {
	tiles := Partition(3367, 2000, 2, 3)
	sum := 0
	for _, tile := range tiles {
		if tile.Row == 0 {
			sum += tile.Width
		}
	}
	if sum != 3367 {
		t.Errorf("Row tile widths sum to %d, expected 3367", sum)
	}
}
