// Command frame-replay serves a directory of still images as an IMAGE_RAW
// frame stream, for running the motion detector without a camera.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/motion-detector/internal/frame"
	"github.com/ironsheep/motion-detector/internal/imaging"
	"github.com/ironsheep/motion-detector/internal/transport"
)

func main() {
	dir := flag.String("dir", ".", "directory of PNG/JPEG/GIF images, played in name order")
	addr := flag.String("addr", ":7447", "listen address")
	fps := flag.Float64("fps", 5, "frames per second")
	encName := flag.String("encoding", "rgb888", "frame encoding: yuv420, yuv422, yuv444, rgb888, rgba8888")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	enc, err := frame.ParseEncoding(*encName)
	if err != nil {
		log.WithError(err).Fatal("Invalid encoding")
	}
	interval, err := tickInterval(*fps)
	if err != nil {
		log.WithError(err).Fatal("Invalid fps")
	}

	frames, err := loadFrames(*dir, enc, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load images")
	}

	hub := transport.NewHub(log)
	mux := http.NewServeMux()
	mux.Handle("/IMAGE_RAW", hub)
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Listen failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"frames":   len(frames),
		"addr":     *addr,
		"encoding": enc.String(),
		"fps":      *fps,
	}).Info("Replaying frames")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % len(frames) {
		select {
		case <-ctx.Done():
			_ = hub.Close()
			_ = srv.Close()
			return
		case <-ticker.C:
			if err := hub.Publish(frames[i]); err != nil {
				log.WithError(err).Warn("Publish failed")
			}
		}
	}
}

// tickInterval converts a frame rate into a ticker period.
func tickInterval(fps float64) (time.Duration, error) {
	if fps <= 0 || math.IsNaN(fps) {
		return 0, fmt.Errorf("fps must be positive, got %v", fps)
	}
	interval := time.Duration(float64(time.Second) / fps)
	if interval < time.Nanosecond {
		return 0, fmt.Errorf("fps %v is too high", fps)
	}
	return interval, nil
}

func loadFrames(dir string, enc frame.Encoding, log logrus.FieldLogger) ([]frame.Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif":
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
	}
	sort.Strings(names)

	frames := make([]frame.Frame, 0, len(names))
	for _, name := range names {
		f, err := imaging.LoadFrame(filepath.Join(dir, name), enc)
		if err != nil {
			log.WithError(err).WithField("file", name).Warn("Skipping image")
			continue
		}
		frames = append(frames, f)
	}

	if len(frames) == 0 {
		return nil, errors.New("no images found in " + dir)
	}
	return frames, nil
}
