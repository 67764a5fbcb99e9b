// Package errs defines the shared error taxonomy used across the codec
// core and the JPIP delivery stack.
package errs

import "fmt"

// Kind names one entry of the error taxonomy.
type Kind string

const (
	MissingSOC           Kind = "MissingSOC"
	MissingEOC           Kind = "MissingEOC"
	MalformedHeader      Kind = "MalformedHeader"
	DuplicateMarker      Kind = "DuplicateMarker"
	UnknownMarker        Kind = "UnknownMarker"
	TruncatedCodestream  Kind = "TruncatedCodestream"
	InvalidConfiguration Kind = "InvalidConfiguration"
	InvalidSIZ           Kind = "InvalidSIZ"
	InvalidTile          Kind = "InvalidTile"
	UnsupportedProfile   Kind = "UnsupportedProfile"
	PlaneMismatch        Kind = "PlaneMismatch"
	EncodingFailed       Kind = "EncodingFailed"
	DecodingFailed       Kind = "DecodingFailed"
	CacheFull            Kind = "CacheFull"
	QueueFull            Kind = "QueueFull"
	BandwidthExceeded    Kind = "BandwidthExceeded"
	SessionNotFound      Kind = "SessionNotFound"
	SessionClosed        Kind = "SessionClosed"
	ChannelIDUnknown     Kind = "ChannelIDUnknown"
	TargetNotRegistered  Kind = "TargetNotRegistered"
	Timeout              Kind = "Timeout"
	Cancelled            Kind = "Cancelled"
	TransportError       Kind = "TransportError"
	ProtocolError        Kind = "ProtocolError"
	Internal             Kind = "Internal"
)

// CodecError identifies a codec failure by phase, byte offset and,
// where applicable, the marker being processed.
type CodecError struct {
	Kind   Kind
	Phase  string
	Offset int
	Marker uint16
	Err    error
}

func (e *CodecError) Error() string {
	if e.Marker != 0 {
		return fmt.Sprintf("%s: phase=%s offset=%d marker=0x%04X: %v", e.Kind, e.Phase, e.Offset, e.Marker, e.Err)
	}
	return fmt.Sprintf("%s: phase=%s offset=%d: %v", e.Kind, e.Phase, e.Offset, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// NewCodec builds a CodecError.
func NewCodec(kind Kind, phase string, offset int, marker uint16, err error) *CodecError {
	return &CodecError{Kind: kind, Phase: phase, Offset: offset, Marker: marker, Err: err}
}

// JPIPError identifies a JPIP-layer failure by session and request target.
type JPIPError struct {
	Kind      Kind
	SessionID string
	Target    string
	Err       error
}

func (e *JPIPError) Error() string {
	return fmt.Sprintf("%s: session=%s target=%s: %v", e.Kind, e.SessionID, e.Target, e.Err)
}

func (e *JPIPError) Unwrap() error { return e.Err }

// NewJPIP builds a JPIPError.
func NewJPIP(kind Kind, sessionID, target string, err error) *JPIPError {
	return &JPIPError{Kind: kind, SessionID: sessionID, Target: target, Err: err}
}
