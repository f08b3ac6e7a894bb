package pipeline

import (
	"errors"
	"sync/atomic"

	"github.com/ironsheep/motion-detector/internal/imaging"
	"github.com/ironsheep/motion-detector/internal/motion"
)

// Stats is a point-in-time snapshot of pipeline counters.
type Stats struct {
	Received        uint64 `json:"received"`
	Still           uint64 `json:"still"`
	Motion          uint64 `json:"motion"`
	Forwarded       uint64 `json:"forwarded"`
	PublishFailures uint64 `json:"publish_failures"`

	DroppedUnsupported uint64 `json:"dropped_unsupported"`
	DroppedSize        uint64 `json:"dropped_size"`
	DroppedResize      uint64 `json:"dropped_resize"`
	DroppedDetection   uint64 `json:"dropped_detection"`
}

// Dropped is the total number of frames that did not reach a motion
// decision.
func (s Stats) Dropped() uint64 {
	return s.DroppedUnsupported + s.DroppedSize + s.DroppedResize + s.DroppedDetection
}

type counters struct {
	received        atomic.Uint64
	still           atomic.Uint64
	motion          atomic.Uint64
	forwarded       atomic.Uint64
	publishFailures atomic.Uint64

	unsupported atomic.Uint64
	size        atomic.Uint64
	resize      atomic.Uint64
	detection   atomic.Uint64
}

func (c *counters) countDrop(err error) {
	switch {
	case errors.Is(err, imaging.ErrUnsupportedEncoding):
		c.unsupported.Add(1)
	case errors.Is(err, imaging.ErrSizeMismatch):
		c.size.Add(1)
	case errors.Is(err, imaging.ErrResize):
		c.resize.Add(1)
	case errors.Is(err, motion.ErrDetection):
		c.detection.Add(1)
	}
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Received:           p.stats.received.Load(),
		Still:              p.stats.still.Load(),
		Motion:             p.stats.motion.Load(),
		Forwarded:          p.stats.forwarded.Load(),
		PublishFailures:    p.stats.publishFailures.Load(),
		DroppedUnsupported: p.stats.unsupported.Load(),
		DroppedSize:        p.stats.size.Load(),
		DroppedResize:      p.stats.resize.Load(),
		DroppedDetection:   p.stats.detection.Load(),
	}
}
