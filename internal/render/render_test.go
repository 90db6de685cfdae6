package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/tilecut/tilecut/pkg/grid"
)

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// The margin is additive: canvas dimensions are the source rect plus the
// margin on every side.
func TestTileCanvasDimensions(t *testing.T) {
	src := solidImage(100, 80, color.RGBA{255, 0, 0, 255})
	margin := grid.MarginPx()

	for _, tile := range grid.Partition(100, 80, 2, 2) {
		out, err := Tile(src, tile, margin)
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		b := out.Bounds()
		if b.Dx()-2*margin != tile.Width {
			t.Errorf("Tile %d: canvas width %d - 2*%d != source width %d", tile.Ordinal, b.Dx(), margin, tile.Width)
		}
		if b.Dy()-2*margin != tile.Height {
			t.Errorf("Tile %d: canvas height %d - 2*%d != source height %d", tile.Ordinal, b.Dy(), margin, tile.Height)
		}
	}
}

func TestTileMarginIsOpaqueWhite(t *testing.T) {
	src := solidImage(100, 80, color.RGBA{255, 0, 0, 255})
	margin := grid.MarginPx()
	tile := grid.Partition(100, 80, 2, 2)[0]

	out, err := Tile(src, tile, margin)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Middle of the top margin strip, clear of the corner labels.
	b := out.Bounds()
	r, g, bl, a := out.At(b.Dx()/2, 2).RGBA()
	if r != 0xffff || g != 0xffff || bl != 0xffff {
		t.Errorf("Margin pixel is not white: %d %d %d", r>>8, g>>8, bl>>8)
	}
	if a != 0xffff {
		t.Errorf("Margin pixel is not opaque: alpha %d", a>>8)
	}
}

func TestTileContentCopiedUnscaled(t *testing.T) {
	src := solidImage(100, 80, color.RGBA{255, 0, 0, 255})
	margin := grid.MarginPx()
	tile := grid.Partition(100, 80, 2, 2)[0]

	out, err := Tile(src, tile, margin)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Centre of the tile content region.
	x := margin + tile.Width/2
	y := margin + tile.Height/2
	r, g, bl, a := out.At(x, y).RGBA()
	if r != 0xffff || g != 0 || bl != 0 {
		t.Errorf("Content pixel is not source red: %d %d %d", r>>8, g>>8, bl>>8)
	}
	if a != 0xffff {
		t.Errorf("Content pixel is not opaque: alpha %d", a>>8)
	}
}

// Labels darken all four corner regions; without them each region would be
// pure margin white.
func TestTileCornerLabelsStamped(t *testing.T) {
	src := solidImage(200, 200, color.RGBA{255, 255, 255, 255})
	margin := grid.MarginPx()
	tile := grid.Partition(200, 200, 2, 2)[3] // label "2-2"

	out, err := Tile(src, tile, margin)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	b := out.Bounds()
	regions := []image.Rectangle{
		image.Rect(0, 0, 80, 80),
		image.Rect(b.Dx()-80, 0, b.Dx(), 80),
		image.Rect(0, b.Dy()-80, 80, b.Dy()),
		image.Rect(b.Dx()-80, b.Dy()-80, b.Dx(), b.Dy()),
	}

	for i, region := range regions {
		if !regionHasDarkPixel(out, region) {
			t.Errorf("Corner region %d carries no label pixels", i)
		}
	}
}

func regionHasDarkPixel(img image.Image, region image.Rectangle) bool {
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r < 0x4000 && g < 0x4000 && b < 0x4000 {
				return true
			}
		}
	}
	return false
}
