package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/cocosip/jpeg2000-jpip/jpip/transport"
)

// Handler adapts a Dispatcher to net/http, implementing the JPIP
// request channel over plain HTTP (spec.md §4.16 "External
// Interfaces"). Requests carry their JPIP request-line fields as
// query parameters: target, cid, cnew, len.
type Handler struct {
	Dispatcher *Dispatcher
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := requestFromValues(r.URL.Query())
	estimatedBytes, _ := strconv.Atoi(r.URL.Query().Get("len"))

	resp := h.Dispatcher.Dispatch(req, r.RemoteAddr, estimatedBytes)

	if resp.CnewHeader != "" {
		w.Header().Set("JPIP-cnew", resp.CnewHeader)
	}
	if resp.Err != nil {
		slog.WarnContext(r.Context(), "jpip dispatch failed",
			"status", resp.StatusCode, "target", req.Target, "error", resp.Err)
		http.Error(w, resp.Err.Error(), resp.StatusCode)
		return
	}
	w.WriteHeader(resp.StatusCode)
}

// ServeWebSocket upgrades an incoming request to the JPIP WebSocket
// transport (spec.md §4.15) and services its framed requests until the
// connection closes or ctx is cancelled (e.g. on server shutdown).
func (h *Handler) ServeWebSocket(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := transport.Upgrade(w, r)
		if err != nil {
			slog.WarnContext(r.Context(), "jpip websocket upgrade failed", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer conn.Close()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frame, err := transport.Decode(data)
			if err != nil || frame.Type != transport.FrameRequest {
				continue
			}
			out := transport.Encode(h.dispatchFrame(frame))
			if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
				return
			}
		}
	}
}

// dispatchFrame decodes a request frame's payload as a query string,
// dispatches it, and frames the status code plus any JPIP-cnew echo
// back as the response payload.
func (h *Handler) dispatchFrame(frame transport.Frame) transport.Frame {
	values, err := url.ParseQuery(string(frame.Payload))
	if err != nil {
		return transport.Frame{Type: transport.FrameError, RequestID: frame.RequestID, Payload: []byte(err.Error())}
	}
	resp := h.Dispatcher.Dispatch(requestFromValues(values), "ws", 0)

	payload := []byte(strconv.Itoa(resp.StatusCode))
	if resp.CnewHeader != "" {
		payload = append(payload, []byte(" "+resp.CnewHeader)...)
	}
	return transport.Frame{Type: transport.FrameResponse, RequestID: frame.RequestID, Payload: payload}
}

func requestFromValues(q url.Values) Request {
	req := Request{
		Target:    q.Get("target"),
		ChannelID: q.Get("cid"),
		Cnew:      q.Get("cnew") == "1" || q.Get("cnew") == "true",
	}
	switch {
	case req.Cnew:
		req.Kind = KindSessionCreation
	case q.Get("metareq") != "":
		req.Kind = KindMetadata
	default:
		req.Kind = KindImageData
	}
	return req
}
