// Package imaging turns raw camera frames into the small grayscale images the
// motion detector works on.
//
// Processing happens in two stateless steps:
//
//  1. Normalize: decode a frame.Frame into a single-channel *image.Gray of the
//     same width and height.
//  2. Downsample: resize that image to a fixed width, keeping the aspect ratio.
//
// Both functions are pure and safe to call concurrently on different frames.
//
// # Normalization
//
// YUV frames (4:2:0, 4:2:2 and 4:4:4) only contribute their luma plane; the
// chroma planes are never read, so the buffer only has to be at least
// Width*Height bytes long. Packed RGB888 and RGBA8888 frames must be exactly
// Width*Height*3 or Width*Height*4 bytes and are converted with ITU-R BT.601
// luma weights (0.299*R + 0.587*G + 0.114*B). Alpha is ignored.
//
// # Downsampling
//
// The output height is round(targetWidth * height / width). Resampling uses a
// linear (tent) filter rather than nearest-neighbor so that aliasing does not
// show up as spurious motion.
//
// # Error Handling
//
// Errors wrap one of the package sentinels so callers can classify them with
// errors.Is:
//   - ErrUnsupportedEncoding: the frame has no encoding or an unknown one
//   - ErrSizeMismatch: the buffer length does not fit the declared dimensions,
//     or a dimension is zero
//   - ErrResize: the resize step could not run
package imaging
