package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrResize is returned when a grayscale image cannot be resized.
var ErrResize = errors.New("failed to downsample")

// TargetSize returns the dimensions of a width x height image scaled to
// targetWidth with its aspect ratio preserved:
//
//	targetHeight = round(targetWidth * height / width)
//
// The height is never less than one pixel. Non-positive inputs are rejected
// rather than divided by.
func TargetSize(width, height, targetWidth int) (int, int, error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: degenerate source size %dx%d", ErrResize, width, height)
	}
	if targetWidth <= 0 {
		return 0, 0, fmt.Errorf("%w: target width %d must be positive", ErrResize, targetWidth)
	}

	targetHeight := int(math.Round(float64(targetWidth) * float64(height) / float64(width)))
	if targetHeight < 1 {
		targetHeight = 1
	}
	return targetWidth, targetHeight, nil
}

// Downsample resizes src to targetWidth using linear interpolation.
func Downsample(src *image.Gray, targetWidth int) (*image.Gray, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrResize)
	}

	bounds := src.Bounds()
	w, h, err := TargetSize(bounds.Dx(), bounds.Dy(), targetWidth)
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(src, w, h, imaging.Linear)
	if rb := resized.Bounds(); rb.Dx() != w || rb.Dy() != h {
		return nil, fmt.Errorf("%w: resize produced %dx%d, want %dx%d", ErrResize, rb.Dx(), rb.Dy(), w, h)
	}

	// The resampler always yields NRGBA with equal color channels.
	return firstChannel(resized.Pix, resized.Stride, w, h), nil
}
