// Package encode turns rendered tile images into output artifacts.
package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/signintech/gopdf"

	"github.com/tilecut/tilecut/pkg/grid"
)

// Format selects the output artifact type for an export run.
type Format int

const (
	FormatPNG Format = iota
	FormatPDF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format name. The empty string defaults to PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return 0, fmt.Errorf("unknown output format: %q (supported: png, pdf)", s)
	}
}

// Encoder serializes one rendered tile to bytes.
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
	Ext() string
}

// For returns the encoder backing a format.
func For(f Format) Encoder {
	if f == FormatPDF {
		return PDF{}
	}
	return PNG{}
}

// PNG encodes tiles as lossless PNG rasters.
type PNG struct{}

func (PNG) Ext() string { return "png" }

func (PNG) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF encodes each tile as a single-page PDF. The page's physical size is
// derived from the raster at the reference resolution and the image is placed
// at the page origin filling the page exactly; margins are already baked into
// the raster.
type PDF struct{}

func (PDF) Ext() string { return "pdf" }

func (PDF) Encode(img image.Image) ([]byte, error) {
	raster, err := PNG{}.Encode(img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w := ptFromPx(b.Dx())
	h := ptFromPx(b.Dy())

	doc := gopdf.GoPdf{}
	doc.Start(gopdf.Config{PageSize: gopdf.Rect{W: w, H: h}})
	doc.AddPage()

	holder, err := gopdf.ImageHolderByBytes(raster)
	if err != nil {
		return nil, fmt.Errorf("load raster into pdf: %w", err)
	}
	if err := doc.ImageByHolder(holder, 0, 0, &gopdf.Rect{W: w, H: h}); err != nil {
		return nil, fmt.Errorf("place raster on pdf page: %w", err)
	}

	out, err := doc.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("serialize pdf: %w", err)
	}
	return out, nil
}

// ptFromPx converts pixels at the reference resolution to PDF points
// (1 pt = 1/72 inch).
func ptFromPx(px int) float64 {
	return float64(px) / grid.DPI * 72.0
}
