package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/tilecut/tilecut/pkg/grid"
)

const (
	// Distance of each corner label from the true canvas corner.
	cornerInset = 15

	labelFontSize = 32

	// Halo radius of the white outline drawn beneath each label.
	outlineRadius = 2
)

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

func labelFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			faceErr = fmt.Errorf("parse label font: %w", err)
			return
		}
		face, faceErr = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    labelFontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	})
	return face, faceErr
}

// Tile renders one finished tile: an opaque white canvas of the tile's source
// region plus a marginPx border on every side, the source pixels copied 1:1
// at (marginPx, marginPx), and the tile's reassembly label stamped in all
// four corners with a white outline under black text.
func Tile(src image.Image, t grid.Tile, marginPx int) (image.Image, error) {
	fc, err := labelFace()
	if err != nil {
		return nil, err
	}

	w := t.Width + 2*marginPx
	h := t.Height + 2*marginPx

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()

	region := imaging.Crop(src, image.Rect(t.X, t.Y, t.X+t.Width, t.Y+t.Height))
	dc.DrawImage(region, marginPx, marginPx)

	dc.SetFontFace(fc)
	label := t.Label()
	fw := float64(w)
	fh := float64(h)

	drawOutlined(dc, label, cornerInset, cornerInset, 0, 1)
	drawOutlined(dc, label, fw-cornerInset, cornerInset, 1, 1)
	drawOutlined(dc, label, cornerInset, fh-cornerInset, 0, 0)
	drawOutlined(dc, label, fw-cornerInset, fh-cornerInset, 1, 0)

	return dc.Image(), nil
}

// drawOutlined draws the string in white at every offset within the outline
// radius, then in black at the anchor, so the label stays legible over any
// underlying image content.
func drawOutlined(dc *gg.Context, s string, x, y, ax, ay float64) {
	dc.SetColor(color.White)
	for dy := -outlineRadius; dy <= outlineRadius; dy++ {
		for dx := -outlineRadius; dx <= outlineRadius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dc.DrawStringAnchored(s, x+float64(dx), y+float64(dy), ax, ay)
		}
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(s, x, y, ax, ay)
}
