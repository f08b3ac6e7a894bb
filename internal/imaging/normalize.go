package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/motion-detector/internal/frame"
)

var (
	// ErrUnsupportedEncoding is returned for frames whose encoding is unset or
	// outside the supported set.
	ErrUnsupportedEncoding = errors.New("unsupported or missing image encoding")

	// ErrSizeMismatch is returned when a frame's buffer cannot hold the pixels
	// its width and height declare.
	ErrSizeMismatch = errors.New("invalid buffer size")
)

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// maxDimension bounds width and height so that buffer size arithmetic cannot
// overflow.
const maxDimension = 1 << 16

// Normalize converts f into a grayscale image of f.Width x f.Height.
//
// The returned image never aliases f.Data.
func Normalize(f frame.Frame) (*image.Gray, error) {
	if !f.Encoding.Known() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, f.Encoding)
	}
	if f.Width <= 0 || f.Height <= 0 || f.Width > maxDimension || f.Height > maxDimension {
		return nil, fmt.Errorf("%w: %s frame has invalid dimensions %dx%d",
			ErrSizeMismatch, f.Encoding, f.Width, f.Height)
	}

	switch f.Encoding {
	case frame.EncodingYUV420, frame.EncodingYUV422, frame.EncodingYUV444:
		return lumaToGray(f)
	case frame.EncodingRGB888:
		return rgbToGray(f)
	case frame.EncodingRGBA8888:
		return rgbaToGray(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, f.Encoding)
	}
}

// lumaToGray copies the leading Y plane. Chroma layout does not matter.
func lumaToGray(f frame.Frame) (*image.Gray, error) {
	planeSize := f.Width * f.Height
	if len(f.Data) < planeSize {
		return nil, fmt.Errorf("%w: %s got %d bytes, expected at least %d",
			ErrSizeMismatch, f.Encoding, len(f.Data), planeSize)
	}

	gray := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	copy(gray.Pix, f.Data[:planeSize])
	return gray, nil
}

func rgbToGray(f frame.Frame) (*image.Gray, error) {
	expected := f.Width * f.Height * 3
	if len(f.Data) != expected {
		return nil, fmt.Errorf("%w: %s got %d bytes, expected %d",
			ErrSizeMismatch, f.Encoding, len(f.Data), expected)
	}

	// bild works on RGBA, so widen each pixel with an opaque alpha.
	rgba := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Data); i, j = i+3, j+4 {
		rgba.Pix[j] = f.Data[i]
		rgba.Pix[j+1] = f.Data[i+1]
		rgba.Pix[j+2] = f.Data[i+2]
		rgba.Pix[j+3] = 0xff
	}

	weighted := effect.GrayscaleWithWeights(rgba, lumaR, lumaG, lumaB)
	return firstChannel(weighted.Pix, weighted.Stride, f.Width, f.Height), nil
}

func rgbaToGray(f frame.Frame) (*image.Gray, error) {
	expected := f.Width * f.Height * 4
	if len(f.Data) != expected {
		return nil, fmt.Errorf("%w: %s got %d bytes, expected %d",
			ErrSizeMismatch, f.Encoding, len(f.Data), expected)
	}

	// Read-only view over the frame buffer; bild reads the first three
	// channels of each pixel and never writes to its source.
	src := &image.RGBA{
		Pix:    f.Data,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
	weighted := effect.GrayscaleWithWeights(src, lumaR, lumaG, lumaB)
	return firstChannel(weighted.Pix, weighted.Stride, f.Width, f.Height), nil
}

// firstChannel copies byte 0 of every 4-byte pixel in pix into a new w x h
// gray image. Callers pass images whose color channels are already equal.
func firstChannel(pix []byte, stride, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := pix[y*stride : y*stride+w*4]
		dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range dstRow {
			dstRow[x] = srcRow[x*4]
		}
	}
	return dst
}
