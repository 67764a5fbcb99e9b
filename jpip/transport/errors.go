package transport

import "errors"

var (
	errShortFrame       = errors.New("frame shorter than 9-byte header")
	errUnknownFrameType = errors.New("unknown frame type")
	errLengthMismatch   = errors.New("frame length field does not match payload size")

	errMissingUpgradeHeader    = errors.New("missing Upgrade: websocket header")
	errMissingConnectionHeader = errors.New("missing Connection: Upgrade header")
	errMissingKey              = errors.New("missing Sec-WebSocket-Key header")
	errUnsupportedSubprotocol  = errors.New("Sec-WebSocket-Protocol must be jpip when present")
)
