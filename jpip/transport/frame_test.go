package transport

import "testing"

func TestEncodeDecode_RoundTrips(t *testing.T) {
	f := Frame{Type: FrameDataBin, RequestID: 42, Payload: []byte("hello")}
	encoded := Encode(f)

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.Type != f.Type || decoded.RequestID != f.RequestID || string(decoded.Payload) != string(f.Payload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, f)
	}
}

func TestDecode_RejectsFrameShorterThanHeader(t *testing.T) {
	_, err := Decode([]byte{0, 0, 0, 0, 1})
	if err == nil {
		t.Fatal("expected error for a frame shorter than 9 bytes")
	}
}

func TestDecode_RejectsUnknownFrameType(t *testing.T) {
	f := Frame{Type: FramePush, RequestID: 1, Payload: nil}
	encoded := Encode(f)
	encoded[0] = 0xFF // not a valid FrameType

	_, err := Decode(encoded)
	if err == nil {
		t.Fatal("expected error for unknown frame type")
	}
}

func TestDecode_RejectsLengthMismatch(t *testing.T) {
	f := Frame{Type: FrameRequest, RequestID: 1, Payload: []byte("abc")}
	encoded := Encode(f)
	encoded = append(encoded, 0xFF) // trailing byte not accounted for in length

	_, err := Decode(encoded)
	if err == nil {
		t.Fatal("expected error for length/payload mismatch")
	}
}

func TestFrame_ZeroRequestIDMeansNoCorrelation(t *testing.T) {
	f := Frame{Type: FramePing, RequestID: 0}
	decoded, err := Decode(Encode(f))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.RequestID != 0 {
		t.Fatalf("RequestID = %d, want 0", decoded.RequestID)
	}
}
