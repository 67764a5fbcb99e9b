package transport

import (
	"net/http"
	"testing"
)

func validHeaders() http.Header {
	h := http.Header{}
	h.Set("Upgrade", "websocket")
	h.Set("Connection", "Upgrade")
	h.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return h
}

func TestValidateUpgrade_AcceptsWellFormedHandshake(t *testing.T) {
	if err := ValidateUpgrade(validHeaders()); err != nil {
		t.Fatalf("expected valid handshake to pass, got %v", err)
	}
}

func TestValidateUpgrade_AcceptsJPIPSubprotocol(t *testing.T) {
	h := validHeaders()
	h.Set("Sec-WebSocket-Protocol", "jpip")
	if err := ValidateUpgrade(h); err != nil {
		t.Fatalf("expected jpip subprotocol to pass, got %v", err)
	}
}

func TestValidateUpgrade_RejectsOtherSubprotocol(t *testing.T) {
	h := validHeaders()
	h.Set("Sec-WebSocket-Protocol", "other-protocol")
	if err := ValidateUpgrade(h); err == nil {
		t.Fatal("expected non-jpip subprotocol to be rejected")
	}
}

func TestValidateUpgrade_RejectsMissingUpgradeHeader(t *testing.T) {
	h := validHeaders()
	h.Del("Upgrade")
	if err := ValidateUpgrade(h); err == nil {
		t.Fatal("expected missing Upgrade header to be rejected")
	}
}

func TestValidateUpgrade_RejectsMissingKey(t *testing.T) {
	h := validHeaders()
	h.Del("Sec-WebSocket-Key")
	if err := ValidateUpgrade(h); err == nil {
		t.Fatal("expected missing Sec-WebSocket-Key to be rejected")
	}
}

func TestAcceptKey_MatchesRFC6455Example(t *testing.T) {
	// RFC 6455 §1.3 worked example.
	got := AcceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Fatalf("AcceptKey() = %q, want %q", got, want)
	}
}
