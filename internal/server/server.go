package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/motion-detector/internal/config"
	"github.com/ironsheep/motion-detector/internal/motion"
	"github.com/ironsheep/motion-detector/internal/pipeline"
	"github.com/ironsheep/motion-detector/internal/transport"
)

// OutputPath is the HTTP path of the output topic.
const OutputPath = "/MOTION_IMAGE_RAW"

const shutdownTimeout = 5 * time.Second

// Server owns the running pipeline and its transports.
type Server struct {
	cfg      config.Config
	log      logrus.FieldLogger
	hub      *transport.Hub
	source   pipeline.Source
	pipeline *pipeline.Pipeline
}

// New creates a server from cfg.
func New(cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	detector, err := motion.NewDetector(cfg.Model, cfg.MotionPixels)
	if err != nil {
		return nil, err
	}

	hub := transport.NewHub(log)
	p, err := pipeline.New(cfg.TargetWidth, detector, hub, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &Server{
		cfg:      *cfg,
		log:      log.WithField("component", "server"),
		hub:      hub,
		source:   transport.NewSubscriber(cfg.InputURL, log),
		pipeline: p,
	}, nil
}

// Stats returns the pipeline counters.
func (s *Server) Stats() pipeline.Stats {
	return s.pipeline.Stats()
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.OutputAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.OutputAddr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(OutputPath, s.hub)
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	s.log.WithFields(logrus.Fields{
		"input":         s.cfg.InputURL,
		"output":        ln.Addr().String() + OutputPath,
		"target_width":  s.cfg.TargetWidth,
		"history":       s.cfg.Model.History,
		"var_threshold": s.cfg.Model.VarThreshold,
		"shadows":       s.cfg.Model.DetectShadows,
		"motion_pixels": s.cfg.MotionPixels,
	}).Info("Motion detector starting")

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	subDone := make(chan struct{})
	go func() {
		defer close(subDone)
		_ = s.pipeline.Run(runCtx, s.source)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("output server failed: %w", err)
		}
	}

	cancel()
	<-subDone

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Warn("Output server shutdown incomplete")
	}
	_ = s.hub.Close()

	stats := s.pipeline.Stats()
	s.log.WithFields(logrus.Fields{
		"received":  stats.Received,
		"motion":    stats.Motion,
		"forwarded": stats.Forwarded,
		"dropped":   stats.Dropped(),
	}).Info("Motion detector stopped")

	return runErr
}
