package transport

import (
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// websocketMagicGUID is fixed by RFC 6455 §1.3.
const websocketMagicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// jpipSubprotocol is the only Sec-WebSocket-Protocol value this server
// accepts when the client offers one.
const jpipSubprotocol = "jpip"

// ValidateUpgrade checks an incoming HTTP request against the JPIP
// WebSocket upgrade handshake requirements (spec.md §4.15): Upgrade:
// websocket, Connection: Upgrade, a Sec-WebSocket-Key header, and — if
// present — a Sec-WebSocket-Protocol of exactly "jpip".
func ValidateUpgrade(h http.Header) error {
	if !headerContainsToken(h.Get("Upgrade"), "websocket") {
		return errMissingUpgradeHeader
	}
	if !headerContainsToken(h.Get("Connection"), "upgrade") {
		return errMissingConnectionHeader
	}
	key := h.Get("Sec-WebSocket-Key")
	if key == "" {
		return errMissingKey
	}
	if proto := h.Get("Sec-WebSocket-Protocol"); proto != "" && proto != jpipSubprotocol {
		return errUnsupportedSubprotocol
	}
	return nil
}

// AcceptKey computes the Sec-WebSocket-Accept value for clientKey per
// RFC 6455 §1.3.
func AcceptKey(clientKey string) string {
	h := sha1.New()
	h.Write([]byte(clientKey))
	h.Write([]byte(websocketMagicGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// upgrader is shared across upgrades; gorilla handles the wire-level
// opcode/masking framing, while ValidateUpgrade enforces this
// protocol's stricter header requirements before accepting.
var upgrader = websocket.Upgrader{
	Subprotocols: []string{jpipSubprotocol},
}

// Upgrade validates the handshake headers per spec and, if they pass,
// hands off to gorilla/websocket to complete the upgrade and return a
// connection ready to carry Encode/Decode framed messages.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	if err := ValidateUpgrade(r.Header); err != nil {
		return nil, err
	}
	return upgrader.Upgrade(w, r, nil)
}

func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
