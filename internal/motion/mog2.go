package motion

import (
	"fmt"
	"image"
)

// MOG2 tuning constants. Only History, VarThreshold and DetectShadows are
// configurable.
const (
	maxModes            = 5
	backgroundRatio     = 0.9
	varThresholdGen     = 9.0
	varInit             = 15.0
	varMin              = 4.0
	varMax              = 75.0
	complexityReduction = 0.05
	shadowThreshold     = 0.5
)

// Mask values written by the model.
const (
	MaskBackground uint8 = 0
	MaskShadow     uint8 = 127
	MaskForeground uint8 = 255
)

// Params configures a background model.
type Params struct {
	// History is the number of frames the model remembers. Must be positive.
	History int

	// VarThreshold is the squared Mahalanobis distance below which a sample
	// matches a background mode. Must be positive.
	VarThreshold float64

	// DetectShadows marks shadow pixels with MaskShadow instead of
	// MaskForeground.
	DetectShadows bool
}

// Validate reports whether p can build a model.
func (p Params) Validate() error {
	if p.History <= 0 {
		return fmt.Errorf("history must be positive, got %d", p.History)
	}
	if p.VarThreshold <= 0 {
		return fmt.Errorf("variance threshold must be positive, got %g", p.VarThreshold)
	}
	return nil
}

// BackgroundModel consumes frames in order and returns a per-pixel mask of
// MaskBackground, MaskShadow or MaskForeground values for each one.
type BackgroundModel interface {
	Apply(frame *image.Gray) (*image.Gray, error)
}

type gaussian struct {
	weight   float32
	mean     float32
	variance float32
}

// MOG2 is the pure Go Gaussian-mixture background model.
type MOG2 struct {
	params Params

	width, height int
	frames        int

	// modes holds maxModes gaussians per pixel, sorted by weight.
	modes []gaussian
	used  []uint8
}

// NewMOG2 creates an uninitialized model.
func NewMOG2(p Params) (*MOG2, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &MOG2{params: p}, nil
}

// Frames returns the number of frames applied since the model was last
// seeded.
func (m *MOG2) Frames() int {
	return m.frames
}

// Apply classifies frame against the model and then learns from it.
func (m *MOG2) Apply(frame *image.Gray) (*image.Gray, error) {
	if frame == nil {
		return nil, fmt.Errorf("nil frame")
	}
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty frame %dx%d", w, h)
	}

	mask := image.NewGray(image.Rect(0, 0, w, h))

	if m.frames == 0 || w != m.width || h != m.height {
		m.seed(frame)
		return mask, nil
	}

	m.frames++
	n := 2 * m.frames
	if n > m.params.History {
		n = m.params.History
	}
	alpha := float32(1.0 / float64(n))

	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride:]
		for x := 0; x < w; x++ {
			px := y*w + x
			mask.Pix[y*mask.Stride+x] = m.update(px, float32(row[x]), alpha)
		}
	}

	return mask, nil
}

// seed resets the model to one Gaussian per pixel centered on frame.
func (m *MOG2) seed(frame *image.Gray) {
	b := frame.Bounds()
	m.width, m.height = b.Dx(), b.Dy()
	n := m.width * m.height

	if cap(m.modes) >= n*maxModes {
		m.modes = m.modes[:n*maxModes]
		m.used = m.used[:n]
	} else {
		m.modes = make([]gaussian, n*maxModes)
		m.used = make([]uint8, n)
	}

	for y := 0; y < m.height; y++ {
		row := frame.Pix[y*frame.Stride:]
		for x := 0; x < m.width; x++ {
			px := y*m.width + x
			g := m.modes[px*maxModes : (px+1)*maxModes]
			for i := range g {
				g[i] = gaussian{}
			}
			g[0] = gaussian{weight: 1, mean: float32(row[x]), variance: varInit}
			m.used[px] = 1
		}
	}
	m.frames = 1
}

// update runs one MOG2 step for a single pixel and returns its mask value.
func (m *MOG2) update(px int, v float32, alpha float32) uint8 {
	g := m.modes[px*maxModes : (px+1)*maxModes]
	nmodes := int(m.used[px])

	tb := float32(m.params.VarThreshold)
	prune := -alpha * complexityReduction
	alpha1 := 1 - alpha

	background := false
	fits := false
	var totalWeight float32

	for mode := 0; mode < nmodes; mode++ {
		weight := alpha1*g[mode].weight + prune
		swaps := 0

		if !fits {
			variance := g[mode].variance
			d := g[mode].mean - v
			dist2 := d * d

			if totalWeight < backgroundRatio && dist2 < tb*variance {
				background = true
			}

			if dist2 < varThresholdGen*variance {
				fits = true

				weight += alpha
				k := alpha / weight
				g[mode].mean -= k * d

				nv := variance + k*(dist2-variance)
				if nv < varMin {
					nv = varMin
				} else if nv > varMax {
					nv = varMax
				}
				g[mode].variance = nv

				// Keep modes sorted by weight, heaviest first.
				for i := mode; i > 0; i-- {
					if weight < g[i-1].weight {
						break
					}
					swaps++
					g[i], g[i-1] = g[i-1], g[i]
				}
			}
		}

		if weight < -prune {
			weight = 0
			nmodes--
		}

		g[mode-swaps].weight = weight
		totalWeight += weight
	}

	if totalWeight > 0 {
		inv := 1 / totalWeight
		for mode := 0; mode < nmodes; mode++ {
			g[mode].weight *= inv
		}
	}

	if !fits {
		var mode int
		if nmodes == maxModes {
			mode = maxModes - 1
		} else {
			mode = nmodes
			nmodes++
		}

		if nmodes == 1 {
			g[mode].weight = 1
		} else {
			g[mode].weight = alpha
			for i := 0; i < nmodes-1; i++ {
				g[i].weight *= alpha1
			}
		}
		g[mode].mean = v
		g[mode].variance = varInit

		for i := nmodes - 1; i > 0; i-- {
			if alpha < g[i-1].weight {
				break
			}
			g[i], g[i-1] = g[i-1], g[i]
		}
	}

	m.used[px] = uint8(nmodes)

	switch {
	case background:
		return MaskBackground
	case m.params.DetectShadows && m.isShadow(g[:nmodes], v):
		return MaskShadow
	default:
		return MaskForeground
	}
}

// isShadow reports whether v looks like a darkened background mode: a scaled
// copy of the mode mean by a factor in [shadowThreshold, 1].
func (m *MOG2) isShadow(g []gaussian, v float32) bool {
	tb := float32(m.params.VarThreshold)
	var totalWeight float32

	for _, mode := range g {
		numerator := v * mode.mean
		denominator := mode.mean * mode.mean
		if denominator == 0 {
			return false
		}

		if numerator <= denominator && numerator >= shadowThreshold*denominator {
			a := numerator / denominator
			d := a*mode.mean - v
			if d*d < tb*mode.variance*a*a {
				return true
			}
		}

		totalWeight += mode.weight
		if totalWeight > backgroundRatio {
			return false
		}
	}
	return false
}
