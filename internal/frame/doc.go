// Package frame defines the raw camera frame exchanged on the IMAGE_RAW and
// MOTION_IMAGE_RAW topics, and the binary codec used to carry it over the wire.
//
// # Encodings
//
// The set of pixel encodings is closed:
//   - YUV420, YUV422, YUV444: planar/semi-planar YUV. The luma plane always
//     comes first and is Width*Height bytes; chroma layout varies.
//   - RGB888: packed 3-channel truecolor, Width*Height*3 bytes.
//   - RGBA8888: packed 4-channel truecolor with alpha, Width*Height*4 bytes.
//
// EncodingUnset marks a frame that carries no encoding. Any byte value outside
// the set survives decoding unchanged so that the consumer, not the codec,
// decides how to reject it.
//
// # Wire Format
//
// All integers are big endian:
//
//	offset  size  field
//	0       4     magic "MFR1"
//	4       1     encoding
//	5       4     width
//	9       4     height
//	13      4     payload length
//	17      n     payload
//
// Frames are values: once built they are never mutated by this module.
package frame
