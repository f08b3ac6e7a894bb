//go:build gocv

package motion

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

func newBackgroundModel(p Params) (BackgroundModel, error) {
	return NewCVModel(p)
}

// CVModel wraps OpenCV's BackgroundSubtractorMOG2.
//
// OpenCV reports every pixel of the first frame as foreground. CVModel still
// feeds that frame to the subtractor but returns an all-background mask for it,
// and likewise for the first frame after a size change, matching MOG2.
type CVModel struct {
	sub  gocv.BackgroundSubtractorMOG2
	size image.Point
}

// NewCVModel creates an OpenCV-backed model. Close releases it.
func NewCVModel(p Params) (*CVModel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &CVModel{
		sub: gocv.NewBackgroundSubtractorMOG2WithParams(p.History, p.VarThreshold, p.DetectShadows),
	}, nil
}

// Apply runs the subtractor with automatic learning rate.
func (m *CVModel) Apply(frame *image.Gray) (*image.Gray, error) {
	src, err := gocv.ImageGrayToMatGray(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer src.Close()

	fg := gocv.NewMat()
	defer fg.Close()
	m.sub.Apply(src, &fg)

	if size := frame.Bounds().Size(); size != m.size {
		m.size = size
		return image.NewGray(image.Rect(0, 0, size.X, size.Y)), nil
	}

	img, err := fg.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	mask, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mask type %T", img)
	}
	return mask, nil
}

// Close frees the native subtractor.
func (m *CVModel) Close() error {
	return m.sub.Close()
}
