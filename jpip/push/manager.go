package push

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cocosip/jpeg2000-jpip/jpip/bandwidth"
	"github.com/cocosip/jpeg2000-jpip/jpip/cache"
)

// State is a session's current push-acceptance state (spec.md §4.13).
type State int

const (
	StateAccept State = iota
	StateReject
	StateThrottle
	StateStop
)

// Manager orchestrates a predictive Engine, a Scheduler, a client
// cache (for delta-delivery filtering), and a bandwidth throttle.
type Manager struct {
	mu sync.Mutex

	engine    *Engine
	scheduler *Scheduler
	tracker   *cache.ClientCache
	throttle  *bandwidth.Throttle

	states map[string]State
}

// NewManager builds a Manager. tracker is consulted to skip
// predictions whose data bins the client already has (delta
// delivery); throttle gates draining.
func NewManager(engine *Engine, scheduler *Scheduler, tracker *cache.ClientCache, throttle *bandwidth.Throttle) *Manager {
	return &Manager{
		engine:    engine,
		scheduler: scheduler,
		tracker:   tracker,
		throttle:  throttle,
		states:    make(map[string]State),
	}
}

// SetState sets a session's push-acceptance state.
func (m *Manager) SetState(sessionID string, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[sessionID] = s
}

func (m *Manager) stateFor(sessionID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[sessionID]
}

// tileKnown reports whether the client cache already holds t's bin for
// imageID (delta delivery); a session pushes for one image at a time.
func (m *Manager) tileKnown(imageID string, t TileCoord) bool {
	if m.tracker == nil {
		return false
	}
	key := cache.Key{ImageID: imageID, Class: "TILE", BinID: tileBinID(t)}
	_, ok := m.tracker.Get(key)
	return ok
}

// tileBinID derives a stable synthetic bin id from a tile coordinate
// for cache lookups; real bin ids come from the codestream's own
// numbering, but prefetch candidates are checked before any real bin
// id is known, so the push manager keys its own namespace.
func tileBinID(t TileCoord) int {
	return (t.Level << 20) ^ (t.X << 10) ^ t.Y
}

// OnViewportUpdate observes a new viewport, predicts tiles, filters
// out already-cached ones (delta delivery), and enqueues the rest.
// Nothing is enqueued while the session is in reject or stop state.
func (m *Manager) OnViewportUpdate(sessionID, imageID string, v Viewport) []Prediction {
	state := m.stateFor(sessionID)
	if state == StateReject || state == StateStop {
		return nil
	}

	m.engine.Observe(v)
	predictions := m.engine.Predict()

	var accepted []Prediction
	for _, p := range predictions {
		if m.tileKnown(imageID, p.Tile) {
			continue
		}
		if m.scheduler.Enqueue(Item{ID: uuid.NewString(), SessionID: sessionID, Prediction: p}) {
			accepted = append(accepted, p)
		}
	}
	return accepted
}

// Drain dequeues up to k items for delivery, gated by the bandwidth
// throttle. With no throttle configured every dequeued item is
// returned. Otherwise an item is dropped, not requeued, when its
// session is in throttle, reject or stop state or when the throttle
// denies it; each returned item is debited from the throttle.
func (m *Manager) Drain(k int) []Item {
	batch := m.scheduler.DequeueBatch(k)
	if m.throttle == nil {
		return batch
	}

	var out []Item
	for _, item := range batch {
		state := m.stateFor(item.SessionID)
		if state == StateThrottle || state == StateStop || state == StateReject {
			continue
		}
		if !m.throttle.CanSend(item.SessionID, 1) {
			continue
		}
		m.throttle.RecordSent(item.SessionID, 1)
		out = append(out, item)
	}
	return out
}
