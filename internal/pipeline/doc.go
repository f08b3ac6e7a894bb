// Package pipeline runs each incoming frame through normalize, downsample and
// motion detection, and forwards the frames that contain motion.
//
// # Per-Frame Flow
//
//  1. Normalize the frame to grayscale (imaging.Normalize). Unsupported
//     encodings and bad buffer sizes stop here.
//  2. Downsample to the configured width (imaging.Downsample).
//  3. Lock the detector, run Detect, unlock.
//  4. On motion, publish the original frame, untouched and at full
//     resolution, to the Sink.
//
// A frame that fails at any step is dropped: it is logged once, counted in
// Stats, and never reaches the sink. Normalize and downsample failures also
// skip the detector, so the background model only sees well-formed frames.
// Nothing is retried.
//
// # Concurrency
//
// HandleFrame may be called from any number of goroutines. Steps 1 and 2 run
// without locks; the detector is guarded by a mutex held only for the Detect
// call, because each call mutates the background model.
package pipeline
