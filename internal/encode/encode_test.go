package encode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"PDF", FormatPDF, false},
		{"", FormatPNG, false},
		{"webp", 0, true},
	}
	for _, c := range cases {
		got, err := ParseFormat(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseFormat(%q) = %v, expected %v", c.in, got, c.want)
		}
	}
}

func TestPNGEncodeRoundTrip(t *testing.T) {
	data, err := PNG{}.Encode(testImage(40, 30))
	if err != nil {
		t.Fatalf("PNG encode failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("PNG encode returned empty artifact")
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode encoded PNG: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("Decoded dimensions %dx%d, expected 40x30", b.Dx(), b.Dy())
	}
}

func TestPDFEncodeProducesDocument(t *testing.T) {
	data, err := PDF{}.Encode(testImage(40, 30))
	if err != nil {
		t.Fatalf("PDF encode failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("PDF encode returned empty artifact")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("PDF output missing header, starts with %q", data[:min(8, len(data))])
	}
}

func TestForFormat(t *testing.T) {
	if For(FormatPNG).Ext() != "png" {
		t.Error("FormatPNG encoder has wrong extension")
	}
	if For(FormatPDF).Ext() != "pdf" {
		t.Error("FormatPDF encoder has wrong extension")
	}
}
