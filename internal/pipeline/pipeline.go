package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/motion-detector/internal/frame"
	"github.com/ironsheep/motion-detector/internal/imaging"
	"github.com/ironsheep/motion-detector/internal/motion"
)

// ErrPublish is returned when an accepted frame cannot be forwarded.
var ErrPublish = errors.New("failed to publish frame")

// Detector is the stateful motion classifier. Implementations need not be
// safe for concurrent use.
type Detector interface {
	Detect(frame *image.Gray) (motion.Result, error)
}

// Sink receives frames that contain motion.
type Sink interface {
	Publish(f frame.Frame) error
}

// Source delivers frames to a handler until ctx ends or delivery fails.
type Source interface {
	Subscribe(ctx context.Context, handler func(frame.Frame)) error
}

// Pipeline is the per-frame orchestrator.
type Pipeline struct {
	targetWidth int
	sink        Sink
	log         logrus.FieldLogger

	mu       sync.Mutex
	detector Detector

	stats counters
}

// New creates a Pipeline that downsamples to targetWidth before detection.
func New(targetWidth int, detector Detector, sink Sink, log logrus.FieldLogger) (*Pipeline, error) {
	if targetWidth <= 0 {
		return nil, fmt.Errorf("target width must be positive, got %d", targetWidth)
	}
	if detector == nil {
		return nil, errors.New("nil detector")
	}
	if sink == nil {
		return nil, errors.New("nil sink")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Pipeline{
		targetWidth: targetWidth,
		detector:    detector,
		sink:        sink,
		log:         log.WithField("component", "pipeline"),
	}, nil
}

// HandleFrame processes f and logs any error. It is the subscription
// callback.
func (p *Pipeline) HandleFrame(f frame.Frame) {
	forwarded, err := p.Process(f)
	if err != nil {
		entry := p.log.WithFields(logrus.Fields{
			"encoding": f.Encoding.String(),
			"width":    f.Width,
			"height":   f.Height,
			"bytes":    len(f.Data),
		})
		if errors.Is(err, ErrPublish) {
			entry.WithError(err).Error("Motion frame not delivered")
		} else {
			entry.WithError(err).Warn("Dropped frame")
		}
		return
	}

	if forwarded {
		p.log.WithFields(logrus.Fields{
			"encoding": f.Encoding.String(),
			"width":    f.Width,
			"height":   f.Height,
		}).Debug("Forwarded motion frame")
	}
}

// Process runs f through the pipeline. It reports whether f was published
// and returns the error that stopped it, if any.
func (p *Pipeline) Process(f frame.Frame) (bool, error) {
	p.stats.received.Add(1)

	gray, err := imaging.Normalize(f)
	if err != nil {
		p.stats.countDrop(err)
		return false, err
	}

	small, err := imaging.Downsample(gray, p.targetWidth)
	if err != nil {
		p.stats.countDrop(err)
		return false, err
	}

	res, err := p.detect(small)
	if err != nil {
		p.stats.countDrop(err)
		return false, err
	}

	if !res.Motion {
		p.stats.still.Add(1)
		return false, nil
	}

	p.stats.motion.Add(1)
	p.log.WithFields(logrus.Fields{
		"foreground_pixels": res.ForegroundPixels,
		"encoding":          f.Encoding.String(),
	}).Info("Motion detected")

	if err := p.sink.Publish(f); err != nil {
		p.stats.publishFailures.Add(1)
		return false, fmt.Errorf("%w: %v", ErrPublish, err)
	}

	p.stats.forwarded.Add(1)
	return true, nil
}

// detect holds the detector lock for exactly one Detect call.
func (p *Pipeline) detect(small *image.Gray) (motion.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res, err := p.detector.Detect(small)
	if err != nil && !errors.Is(err, motion.ErrDetection) {
		err = fmt.Errorf("%w: %v", motion.ErrDetection, err)
	}
	return res, err
}

// Run subscribes HandleFrame to src and blocks until the subscription ends.
func (p *Pipeline) Run(ctx context.Context, src Source) error {
	return src.Subscribe(ctx, p.HandleFrame)
}
