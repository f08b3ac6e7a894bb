package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const headerSize = 17

var magic = [4]byte{'M', 'F', 'R', '1'}

// ErrMalformed is returned by Unmarshal for messages that are not frames.
var ErrMalformed = errors.New("malformed frame message")

// Marshal encodes f into its wire representation.
func Marshal(f Frame) []byte {
	buf := make([]byte, headerSize+len(f.Data))
	copy(buf[0:4], magic[:])
	buf[4] = byte(f.Encoding)
	binary.BigEndian.PutUint32(buf[5:9], uint32(f.Width))
	binary.BigEndian.PutUint32(buf[9:13], uint32(f.Height))
	binary.BigEndian.PutUint32(buf[13:17], uint32(len(f.Data)))
	copy(buf[headerSize:], f.Data)
	return buf
}

// Unmarshal decodes a wire message produced by Marshal.
//
// The returned Frame's Data aliases msg; callers that reuse msg must copy.
// The encoding byte is not validated.
func Unmarshal(msg []byte) (Frame, error) {
	if len(msg) < headerSize {
		return Frame{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(msg))
	}
	if [4]byte(msg[0:4]) != magic {
		return Frame{}, fmt.Errorf("%w: bad magic %q", ErrMalformed, msg[0:4])
	}

	n := binary.BigEndian.Uint32(msg[13:17])
	if uint64(len(msg)-headerSize) != uint64(n) {
		return Frame{}, fmt.Errorf("%w: payload length %d, header says %d", ErrMalformed, len(msg)-headerSize, n)
	}

	return Frame{
		Encoding: Encoding(msg[4]),
		Width:    int(binary.BigEndian.Uint32(msg[5:9])),
		Height:   int(binary.BigEndian.Uint32(msg[9:13])),
		Data:     msg[headerSize:],
	}, nil
}
