package imaging

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/motion-detector/internal/frame"
)

// packedFrame builds an RGB888 or RGBA8888 frame filled with one color.
func packedFrame(enc frame.Encoding, w, h int, px ...byte) frame.Frame {
	return frame.Frame{
		Encoding: enc,
		Width:    w,
		Height:   h,
		Data:     bytes.Repeat(px, w*h),
	}
}

// yuvFrame builds a planar frame with the given luma bytes and a chroma tail
// of chromaLen bytes all set to chroma.
func yuvFrame(enc frame.Encoding, w, h int, luma []byte, chromaLen int, chroma byte) frame.Frame {
	data := append(append([]byte(nil), luma...), bytes.Repeat([]byte{chroma}, chromaLen)...)
	return frame.Frame{Encoding: enc, Width: w, Height: h, Data: data}
}

func TestNormalize_YUVIgnoresChroma(t *testing.T) {
	const w, h = 8, 4
	luma := make([]byte, w*h)
	for i := range luma {
		luma[i] = byte(i * 7)
	}

	layouts := []struct {
		enc       frame.Encoding
		chromaLen int
	}{
		{frame.EncodingYUV420, 2 * (w / 2) * (h / 2)},
		{frame.EncodingYUV422, 2 * (w / 2) * h},
		{frame.EncodingYUV444, 2 * w * h},
	}

	var reference []byte
	for _, l := range layouts {
		for _, chroma := range []byte{0, 128, 255} {
			gray, err := Normalize(yuvFrame(l.enc, w, h, luma, l.chromaLen, chroma))
			require.NoError(t, err, "%s chroma=%d", l.enc, chroma)
			assert.Equal(t, w, gray.Bounds().Dx())
			assert.Equal(t, h, gray.Bounds().Dy())

			if reference == nil {
				reference = append([]byte(nil), gray.Pix...)
			}
			assert.Equal(t, reference, gray.Pix, "%s chroma=%d", l.enc, chroma)
		}
	}
	assert.Equal(t, luma, reference)
}

func TestNormalize_YUVLumaOnlyBuffer(t *testing.T) {
	luma := []byte{1, 2, 3, 4, 5, 6}
	gray, err := Normalize(frame.Frame{Encoding: frame.EncodingYUV420, Width: 3, Height: 2, Data: luma})
	require.NoError(t, err)
	assert.Equal(t, luma, gray.Pix)
}

func TestNormalize_YUVTooShort(t *testing.T) {
	for _, enc := range []frame.Encoding{frame.EncodingYUV420, frame.EncodingYUV422, frame.EncodingYUV444} {
		t.Run(enc.String(), func(t *testing.T) {
			_, err := Normalize(frame.Frame{Encoding: enc, Width: 4, Height: 4, Data: make([]byte, 15)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSizeMismatch))
		})
	}
}

func TestNormalize_DoesNotAliasInput(t *testing.T) {
	data := []byte{10, 20, 30, 40}
	gray, err := Normalize(frame.Frame{Encoding: frame.EncodingYUV444, Width: 2, Height: 2, Data: data})
	require.NoError(t, err)

	gray.Pix[0] = 99
	assert.Equal(t, byte(10), data[0])
}

func TestNormalize_PackedExactSize(t *testing.T) {
	const w, h = 5, 3

	tests := []struct {
		enc    frame.Encoding
		factor int
	}{
		{frame.EncodingRGB888, 3},
		{frame.EncodingRGBA8888, 4},
	}

	for _, tt := range tests {
		t.Run(tt.enc.String(), func(t *testing.T) {
			exact := w * h * tt.factor
			for _, n := range []int{0, 1, exact - 1, exact + 1, exact * 2, w * h} {
				_, err := Normalize(frame.Frame{Encoding: tt.enc, Width: w, Height: h, Data: make([]byte, n)})
				require.Error(t, err, "length %d", n)
				assert.True(t, errors.Is(err, ErrSizeMismatch), "length %d", n)
			}

			gray, err := Normalize(frame.Frame{Encoding: tt.enc, Width: w, Height: h, Data: make([]byte, exact)})
			require.NoError(t, err)
			assert.Equal(t, w, gray.Bounds().Dx())
			assert.Equal(t, h, gray.Bounds().Dy())
		})
	}
}

func TestNormalize_GrayLayout(t *testing.T) {
	const w, h = 7, 5

	tests := []struct {
		name  string
		frame frame.Frame
	}{
		{"rgb888", packedFrame(frame.EncodingRGB888, w, h, 10, 200, 30)},
		{"rgba8888", packedFrame(frame.EncodingRGBA8888, w, h, 10, 200, 30, 255)},
		{"yuv420", yuvFrame(frame.EncodingYUV420, w, h, bytes.Repeat([]byte{77}, w*h), 2*((w+1)/2)*((h+1)/2), 128)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gray, err := Normalize(tt.frame)
			require.NoError(t, err)
			require.IsType(t, &image.Gray{}, gray)
			assert.Equal(t, image.Rect(0, 0, w, h), gray.Bounds())
			assert.Equal(t, w, gray.Stride)
			assert.Len(t, gray.Pix, w*h)
		})
	}
}

func TestNormalize_Luminance(t *testing.T) {
	tests := []struct {
		name string
		rgb  [3]byte
		want int
	}{
		{"black", [3]byte{0, 0, 0}, 0},
		{"white", [3]byte{255, 255, 255}, 255},
		{"red", [3]byte{255, 0, 0}, 76},
		{"green", [3]byte{0, 255, 0}, 150},
		{"blue", [3]byte{0, 0, 255}, 29},
		{"mid gray", [3]byte{128, 128, 128}, 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rgb, err := Normalize(packedFrame(frame.EncodingRGB888, 4, 4, tt.rgb[0], tt.rgb[1], tt.rgb[2]))
			require.NoError(t, err)
			rgba, err := Normalize(packedFrame(frame.EncodingRGBA8888, 4, 4, tt.rgb[0], tt.rgb[1], tt.rgb[2], 255))
			require.NoError(t, err)

			for i := range rgb.Pix {
				assert.InDelta(t, tt.want, int(rgb.Pix[i]), 1, "rgb pixel %d", i)
				assert.InDelta(t, tt.want, int(rgba.Pix[i]), 1, "rgba pixel %d", i)
			}
		})
	}
}

func TestNormalize_RGBAIgnoresAlpha(t *testing.T) {
	opaque, err := Normalize(packedFrame(frame.EncodingRGBA8888, 3, 3, 40, 120, 200, 255))
	require.NoError(t, err)
	clear, err := Normalize(packedFrame(frame.EncodingRGBA8888, 3, 3, 40, 120, 200, 0))
	require.NoError(t, err)

	assert.Equal(t, opaque.Pix, clear.Pix)
}

func TestNormalize_RGBAPreservesInput(t *testing.T) {
	f := packedFrame(frame.EncodingRGBA8888, 2, 2, 1, 2, 3, 4)
	before := append([]byte(nil), f.Data...)

	_, err := Normalize(f)
	require.NoError(t, err)
	assert.Equal(t, before, f.Data)
}

func TestNormalize_Unsupported(t *testing.T) {
	for _, enc := range []frame.Encoding{frame.EncodingUnset, frame.Encoding(77)} {
		t.Run(enc.String(), func(t *testing.T) {
			_, err := Normalize(frame.Frame{Encoding: enc, Width: 2, Height: 2, Data: make([]byte, 16)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
		})
	}
}

func TestNormalize_DegenerateDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 4},
		{"zero height", 4, 0},
		{"negative", -2, 4},
		{"huge", maxDimension + 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(frame.Frame{Encoding: frame.EncodingYUV420, Width: tt.w, Height: tt.h, Data: make([]byte, 64)})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSizeMismatch))
		})
	}
}
