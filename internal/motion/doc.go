// Package motion classifies grayscale frames as containing motion or not,
// using an adaptive Gaussian-mixture background model.
//
// # Background Model
//
// Each pixel is described by up to five weighted Gaussians over intensity
// (the MOG2 scheme of Zivkovic and van der Heijden). The heaviest Gaussians
// whose weights add up to the background ratio describe the static scene. A
// new sample that lies within VarThreshold squared standard deviations of one
// of them is background; otherwise it is foreground, or shadow when shadow
// detection is on and the sample is a darker copy of a background mode.
//
// Scoring and learning are the same call: Apply updates the model with the
// frame it classifies, and there is no way to score without learning. Frame
// order therefore matters.
//
// The learning rate is derived from the history length alone:
//
//	alpha = 1 / min(2*n, History)
//
// where n is the number of frames seen, so the model adapts quickly while
// young and settles at 1/History.
//
// # Lifecycle
//
// A new model is uninitialized. The first frame seeds one Gaussian per pixel
// at the observed intensity and is reported as all background. A frame of a
// different size seeds the model again in the same way.
//
// # Backends
//
// The default backend is implemented in Go. Building with the gocv tag
// switches to OpenCV's BackgroundSubtractorMOG2 through gocv.io/x/gocv.
//
// # Thread Safety
//
// Models and Detectors are not safe for concurrent use. Callers must
// serialize every Detect call.
package motion
