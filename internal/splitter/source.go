package splitter

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Source is the decoded user-supplied raster, held for one export session
// and replaced wholesale when a new file is loaded.
type Source struct {
	Image    image.Image
	Width    int
	Height   int
	ByteSize int64  // original file size, display only
	Name     string // original filename
}

// LoadSource decodes an uploaded image. EXIF orientation is applied during
// decode, so Width and Height reflect what the user sees. Empty or
// non-image input is rejected here, before any export state exists.
func LoadSource(r io.Reader, name string, byteSize int64) (*Source, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("image has zero dimensions")
	}

	return &Source{
		Image:    img,
		Width:    b.Dx(),
		Height:   b.Dy(),
		ByteSize: byteSize,
		Name:     name,
	}, nil
}
