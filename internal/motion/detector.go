package motion

import (
	"errors"
	"fmt"
	"image"
)

// DefaultMotionPixels is the foreground pixel count a frame must exceed to
// count as motion.
const DefaultMotionPixels = 500

// ErrDetection is returned when the background model cannot score a frame.
var ErrDetection = errors.New("motion detection failed")

// Result is the outcome of one Detect call.
type Result struct {
	// Motion is true when ForegroundPixels exceeds the detector threshold.
	Motion bool

	// ForegroundPixels counts non-zero mask pixels, shadows included.
	ForegroundPixels int
}

// Detector scores downsampled grayscale frames against a background model.
type Detector struct {
	model     BackgroundModel
	threshold int
	frames    int
}

// NewDetector builds a Detector on the default backend.
//
// motionPixels is the strict lower bound on foreground pixels for a frame to
// count as motion; it must not be negative.
func NewDetector(p Params, motionPixels int) (*Detector, error) {
	model, err := newBackgroundModel(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create background model: %w", err)
	}
	return NewDetectorWithModel(model, motionPixels)
}

// NewDetectorWithModel builds a Detector around an existing model.
func NewDetectorWithModel(model BackgroundModel, motionPixels int) (*Detector, error) {
	if model == nil {
		return nil, fmt.Errorf("nil background model")
	}
	if motionPixels < 0 {
		return nil, fmt.Errorf("motion pixel threshold must not be negative, got %d", motionPixels)
	}
	return &Detector{model: model, threshold: motionPixels}, nil
}

// Detect updates the background model with frame and reports whether frame
// contains motion.
func (d *Detector) Detect(frame *image.Gray) (Result, error) {
	mask, err := d.model.Apply(frame)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDetection, err)
	}
	d.frames++

	if mask == nil || mask.Bounds() != frame.Bounds().Sub(frame.Bounds().Min) {
		return Result{}, fmt.Errorf("%w: mask does not match frame bounds", ErrDetection)
	}

	n := CountNonZero(mask)
	return Result{Motion: n > d.threshold, ForegroundPixels: n}, nil
}

// Frames returns how many frames have been passed to the model.
func (d *Detector) Frames() int {
	return d.frames
}

// CountNonZero returns the number of non-zero pixels in mask.
func CountNonZero(mask *image.Gray) int {
	b := mask.Bounds()
	n := 0
	for y := 0; y < b.Dy(); y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
