package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"

	"github.com/ironsheep/motion-detector/internal/frame"
)

// LoadFrame decodes a still image from disk into a raw frame of the given
// encoding.
//
// Parameters:
//   - path: PNG, JPEG or GIF file. JPEG EXIF orientation is applied.
//   - enc: Target encoding. Any supported encoding is accepted.
//
// Returns:
//   - frame.Frame: A frame whose Data has the exact size the encoding implies.
//   - error: Non-nil if the file cannot be opened or decoded, or if enc is
//     not supported.
func LoadFrame(path string, enc frame.Encoding) (frame.Frame, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return frame.Frame{}, fmt.Errorf("failed to open image: %w", err)
	}
	return FromImage(img, enc)
}

// FromImage encodes img as a raw frame.
//
// YUV encodings are produced planar: a full-resolution Y plane followed by
// U and V planes subsampled according to the chroma layout. Subsampled chroma
// takes the top-left pixel of each block.
func FromImage(img image.Image, enc frame.Encoding) (frame.Frame, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return frame.Frame{}, fmt.Errorf("%w: image has no pixels", ErrSizeMismatch)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	f := frame.Frame{Encoding: enc, Width: w, Height: h}

	switch enc {
	case frame.EncodingRGBA8888:
		f.Data = nrgba.Pix
	case frame.EncodingRGB888:
		f.Data = make([]byte, w*h*3)
		for i, j := 0, 0; j < len(f.Data); i, j = i+4, j+3 {
			copy(f.Data[j:j+3], nrgba.Pix[i:i+3])
		}
	case frame.EncodingYUV420:
		f.Data = toPlanarYUV(nrgba, 2, 2)
	case frame.EncodingYUV422:
		f.Data = toPlanarYUV(nrgba, 2, 1)
	case frame.EncodingYUV444:
		f.Data = toPlanarYUV(nrgba, 1, 1)
	default:
		return frame.Frame{}, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, enc)
	}

	return f, nil
}

// toPlanarYUV lays out Y, then U, then V. sx and sy are the horizontal and
// vertical chroma subsampling factors.
func toPlanarYUV(img *image.NRGBA, sx, sy int) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	cw := (w + sx - 1) / sx
	ch := (h + sy - 1) / sy

	buf := make([]byte, w*h+2*cw*ch)
	yPlane := buf[:w*h]
	uPlane := buf[w*h : w*h+cw*ch]
	vPlane := buf[w*h+cw*ch:]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := img.Pix[y*img.Stride+x*4:]
			yy, cb, cr := color.RGBToYCbCr(p[0], p[1], p[2])
			yPlane[y*w+x] = yy
			if x%sx == 0 && y%sy == 0 {
				ci := (y/sy)*cw + x/sx
				uPlane[ci] = cb
				vPlane[ci] = cr
			}
		}
	}

	return buf
}
