package glowaux

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Encoder writes a row-major 8-bit raster to w. buf holds 3 bytes per pixel,
// or 4 if hasAlpha is set.
type Encoder interface {
	Encode(w io.Writer, width, height int, buf []byte, hasAlpha bool) error
}

// EncoderFunc adapts an image encoding function such as [png.Encode] to an [Encoder].
type EncoderFunc func(w io.Writer, img image.Image) error

// Encode implements [Encoder].
func (fn EncoderFunc) Encode(w io.Writer, width, height int, buf []byte, hasAlpha bool) error {
	img, err := NewImage(width, height, buf, hasAlpha)
	if err != nil {
		return err
	}
	return fn(w, img)
}

var (
	PNG  Encoder = EncoderFunc(png.Encode)
	BMP  Encoder = EncoderFunc(bmp.Encode)
	TIFF Encoder = EncoderFunc(func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	})
)

var errUnknownFormat = errors.New("unknown image format")

// EncoderForFile picks an encoder from the filename extension: .png, .bmp, .tif or .tiff.
func EncoderForFile(filename string) (Encoder, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	}
	return nil, fmt.Errorf("%w %q", errUnknownFormat, ext)
}

// NewImage wraps a row-major RGB or RGBA buffer as an image. RGB buffers are
// copied into an opaque [image.NRGBA].
func NewImage(width, height int, buf []byte, hasAlpha bool) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	bpp := 3
	if hasAlpha {
		bpp = 4
	}
	if len(buf) != bpp*width*height {
		return nil, fmt.Errorf("want %d byte buffer for %dx%d image, got %d", bpp*width*height, width, height, len(buf))
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if hasAlpha {
		copy(img.Pix, buf)
		return img, nil
	}
	for i, j := 0, 0; i < len(buf); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 255
	}
	return img, nil
}
