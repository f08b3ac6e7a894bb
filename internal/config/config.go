// Package config loads the detector's startup configuration from the
// environment.
//
// Configuration is read once. Blank variables fall back to defaults; a value
// that is set but malformed or out of range is an error, and the process must
// not start with it.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/motion-detector/internal/motion"
)

// Environment variable names.
const (
	EnvTargetWidth   = "PROCESSING_RESCALE_WIDTH"
	EnvHistory       = "MOG2_HISTORY"
	EnvVarThreshold  = "MOG2_VAR_THRESHOLD"
	EnvDetectShadows = "MOG2_DETECT_SHADOWS"
	EnvMotionPixels  = "MOTION_PIXEL_THRESHOLD"
	EnvLogLevel      = "MOTION_LOG_LEVEL"
	EnvInput         = "IMAGE_RAW"
	EnvOutput        = "MOTION_IMAGE_RAW"
)

// Defaults.
const (
	DefaultTargetWidth   = 960
	DefaultHistory       = 500
	DefaultVarThreshold  = 16.0
	DefaultDetectShadows = true
	DefaultInputURL      = "ws://127.0.0.1:7447/IMAGE_RAW"
	DefaultOutputAddr    = ":7448"
)

// ErrInvalidConfig wraps every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the immutable startup configuration.
type Config struct {
	// TargetWidth is the width frames are downsampled to before detection.
	TargetWidth int

	// Model configures the background model.
	Model motion.Params

	// MotionPixels is the foreground pixel count a frame must exceed.
	MotionPixels int

	LogLevel logrus.Level

	// InputURL is the websocket URL frames are read from.
	InputURL string

	// OutputAddr is the listen address downstream consumers connect to.
	OutputAddr string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		TargetWidth: DefaultTargetWidth,
		Model: motion.Params{
			History:       DefaultHistory,
			VarThreshold:  DefaultVarThreshold,
			DetectShadows: DefaultDetectShadows,
		},
		MotionPixels: motion.DefaultMotionPixels,
		LogLevel:     logrus.InfoLevel,
		InputURL:     DefaultInputURL,
		OutputAddr:   DefaultOutputAddr,
	}
}

// Load reads the configuration through getenv, typically os.Getenv.
func Load(getenv func(string) string) (*Config, error) {
	cfg := Default()
	l := loader{getenv: getenv}

	l.positiveInt(EnvTargetWidth, &cfg.TargetWidth)
	l.positiveInt(EnvHistory, &cfg.Model.History)
	l.positiveFloat(EnvVarThreshold, &cfg.Model.VarThreshold)
	l.boolean(EnvDetectShadows, &cfg.Model.DetectShadows)
	l.nonNegativeInt(EnvMotionPixels, &cfg.MotionPixels)
	l.logLevel(EnvLogLevel, &cfg.LogLevel)
	l.str(EnvInput, &cfg.InputURL)
	l.str(EnvOutput, &cfg.OutputAddr)

	if len(l.errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(l.errs...))
	}
	return &cfg, nil
}

// loader collects every bad value so one run reports them all.
type loader struct {
	getenv func(string) string
	errs   []error
}

func (l *loader) lookup(key string) (string, bool) {
	v := strings.TrimSpace(l.getenv(key))
	return v, v != ""
}

func (l *loader) fail(key, raw string, err error) {
	l.errs = append(l.errs, fmt.Errorf("failed to parse %s (%q): %w", key, raw, err))
}

func (l *loader) positiveInt(key string, dst *int) {
	raw, ok := l.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.Atoi(raw)
	if err == nil && v <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		l.fail(key, raw, err)
		return
	}
	*dst = v
}

func (l *loader) nonNegativeInt(key string, dst *int) {
	raw, ok := l.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.Atoi(raw)
	if err == nil && v < 0 {
		err = errors.New("must not be negative")
	}
	if err != nil {
		l.fail(key, raw, err)
		return
	}
	*dst = v
}

func (l *loader) positiveFloat(key string, dst *float64) {
	raw, ok := l.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && !(v > 0) {
		err = errors.New("must be positive")
	}
	if err != nil {
		l.fail(key, raw, err)
		return
	}
	*dst = v
}

func (l *loader) boolean(key string, dst *bool) {
	raw, ok := l.lookup(key)
	if !ok {
		return
	}
	v, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		l.fail(key, raw, err)
		return
	}
	*dst = v
}

func (l *loader) logLevel(key string, dst *logrus.Level) {
	raw, ok := l.lookup(key)
	if !ok {
		return
	}
	v, err := logrus.ParseLevel(raw)
	if err != nil {
		l.fail(key, raw, err)
		return
	}
	*dst = v
}

func (l *loader) str(key string, dst *string) {
	if raw, ok := l.lookup(key); ok {
		*dst = raw
	}
}
