// Package transport implements the JPIP-over-WebSocket wire framing,
// client connection lifecycle with backoff reconnection, and the
// server-side upgrade handshake (spec.md §4.15).
package transport

import (
	"encoding/binary"

	"github.com/cocosip/jpeg2000-jpip/internal/errs"
)

// FrameType identifies one of the JPIP WebSocket frame kinds.
type FrameType byte

const (
	FrameRequest FrameType = iota
	FrameResponse
	FrameDataBin
	FramePing
	FramePong
	FrameControl
	FrameError
	FramePush
)

func (t FrameType) valid() bool {
	return t <= FramePush
}

// frameHeaderSize is [type:1][requestID:4][length:4].
const frameHeaderSize = 9

// Frame is one decoded wire frame.
type Frame struct {
	Type      FrameType
	RequestID uint32 // 0 = no correlation
	Payload   []byte
}

// Encode serializes f as [type:1][requestID:4 BE][length:4 BE][payload].
func Encode(f Frame) []byte {
	buf := make([]byte, frameHeaderSize+len(f.Payload))
	buf[0] = byte(f.Type)
	binary.BigEndian.PutUint32(buf[1:5], f.RequestID)
	binary.BigEndian.PutUint32(buf[5:9], uint32(len(f.Payload)))
	copy(buf[9:], f.Payload)
	return buf
}

// Decode parses a wire frame, rejecting frames shorter than the
// 9-byte header or carrying an unknown type value (spec.md §4.15).
func Decode(data []byte) (Frame, error) {
	if len(data) < frameHeaderSize {
		return Frame{}, errs.NewJPIP(errs.ProtocolError, "", "", errShortFrame)
	}
	t := FrameType(data[0])
	if !t.valid() {
		return Frame{}, errs.NewJPIP(errs.ProtocolError, "", "", errUnknownFrameType)
	}
	requestID := binary.BigEndian.Uint32(data[1:5])
	length := binary.BigEndian.Uint32(data[5:9])
	if int(length) != len(data)-frameHeaderSize {
		return Frame{}, errs.NewJPIP(errs.ProtocolError, "", "", errLengthMismatch)
	}
	payload := make([]byte, length)
	copy(payload, data[9:])
	return Frame{Type: t, RequestID: requestID, Payload: payload}, nil
}
