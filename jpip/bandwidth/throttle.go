package bandwidth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces per-client and global byte-rate limits using
// golang.org/x/time/rate token buckets (spec.md §4.14). A nil limit on
// either dimension leaves that dimension unrestricted.
type Throttle struct {
	mu sync.Mutex

	globalLimiter *rate.Limiter
	clientLimit   *float64 // bytes/sec per client, nil = unrestricted
	clientBurst   int

	clients map[string]*rate.Limiter
}

// NewThrottle builds a Throttle. globalBps and clientBps are bytes per
// second limits; pass nil for either to leave that dimension
// unrestricted. burst bounds how many bytes may be sent in one burst
// above the steady rate.
func NewThrottle(globalBps, clientBps *float64, burst int) *Throttle {
	t := &Throttle{
		clientLimit: clientBps,
		clientBurst: burst,
		clients:     make(map[string]*rate.Limiter),
	}
	if globalBps != nil {
		t.globalLimiter = rate.NewLimiter(rate.Limit(*globalBps), burst)
	}
	return t
}

func (t *Throttle) clientLimiterLocked(client string) *rate.Limiter {
	l, ok := t.clients[client]
	if !ok {
		limit := rate.Inf
		if t.clientLimit != nil {
			limit = rate.Limit(*t.clientLimit)
		}
		l = rate.NewLimiter(limit, t.clientBurst)
		t.clients[client] = l
	}
	return l
}

// CanSend reports whether bytes may be sent to client right now
// without exceeding either the client's bucket or the global bucket.
// It peeks by reserving then immediately cancelling, so it does not
// consume tokens on its own — call RecordSent to debit them.
func (t *Throttle) CanSend(client string, bytes int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := nowFn()
	cl := t.clientLimiterLocked(client)
	if !peek(cl, bytes, now) {
		return false
	}
	if t.globalLimiter != nil && !peek(t.globalLimiter, bytes, now) {
		return false
	}
	return true
}

// RecordSent debits bytes from both the client's bucket and the
// global bucket.
func (t *Throttle) RecordSent(client string, bytes int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := nowFn()
	cl := t.clientLimiterLocked(client)
	cl.ReserveN(now, bytes)
	if t.globalLimiter != nil {
		t.globalLimiter.ReserveN(now, bytes)
	}
}

// RemoveClient frees a client's bucket.
func (t *Throttle) RemoveClient(client string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.clients, client)
}

// peek reports whether n tokens are available now without consuming
// them, by reserving and cancelling immediately.
func peek(l *rate.Limiter, n int, now time.Time) bool {
	r := l.ReserveN(now, n)
	if !r.OK() {
		return false
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay == 0
}

// nowFn is a seam so tests can control bucket timing deterministically.
var nowFn = time.Now
