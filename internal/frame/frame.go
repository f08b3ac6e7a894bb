package frame

import (
	"fmt"
	"strings"
)

// Encoding identifies the pixel layout of a Frame's Data.
type Encoding uint8

const (
	EncodingUnset Encoding = iota
	EncodingYUV420
	EncodingYUV422
	EncodingYUV444
	EncodingRGB888
	EncodingRGBA8888
)

var encodingNames = map[Encoding]string{
	EncodingUnset:    "unset",
	EncodingYUV420:   "yuv420",
	EncodingYUV422:   "yuv422",
	EncodingYUV444:   "yuv444",
	EncodingRGB888:   "rgb888",
	EncodingRGBA8888: "rgba8888",
}

// String returns the lowercase encoding name, or "encoding(N)" for values
// outside the known set.
func (e Encoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return fmt.Sprintf("encoding(%d)", uint8(e))
}

// IsYUV reports whether e is one of the YUV chroma layouts.
func (e Encoding) IsYUV() bool {
	switch e {
	case EncodingYUV420, EncodingYUV422, EncodingYUV444:
		return true
	}
	return false
}

// Known reports whether e is a supported encoding. EncodingUnset is not.
func (e Encoding) Known() bool {
	return e != EncodingUnset && encodingNames[e] != ""
}

// ParseEncoding resolves a name such as "rgb888" or "YUV420" to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for e, name := range encodingNames {
		if e != EncodingUnset && name == want {
			return e, nil
		}
	}
	return EncodingUnset, fmt.Errorf("unknown encoding: %q", s)
}

// Frame is a raw camera image as delivered by the input topic.
type Frame struct {
	Encoding Encoding
	Width    int
	Height   int
	Data     []byte
}

// String gives a short description suitable for log messages.
func (f Frame) String() string {
	return fmt.Sprintf("%s %dx%d (%d bytes)", f.Encoding, f.Width, f.Height, len(f.Data))
}
