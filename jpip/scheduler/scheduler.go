// Package scheduler implements the delivery scheduler: a priority
// queue of pending data bins for one view window, drained through a
// max_delivery_rate token bucket with quality-layer truncation and
// interruption accounting (spec.md §4.10).
package scheduler

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cocosip/jpeg2000-jpip/internal/databin"
)

// Priority buckets a bin's delivery urgency, highest first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// Item is one pending bin addressed to a view window.
type Item struct {
	Bin              databin.Bin
	Priority         Priority
	QualityLayer     int // layer this fragment belongs to, 0 = base layer
	DistanceToCenter float64
	enqueuedAt       time.Time
}

// Window describes the region and targets a batch of items was
// scheduled for; a new Window replacing an old one with a disjoint
// Region triggers an interruption (spec.md §4.10 "Interruption").
type Window struct {
	Region         Region
	TargetLayers   int
	TargetResLevel int
}

// Region is an axis-aligned rectangle in image coordinates.
type Region struct {
	X0, Y0, X1, Y1 int
}

func (r Region) disjoint(o Region) bool {
	return r.X1 <= o.X0 || o.X1 <= r.X0 || r.Y1 <= o.Y0 || o.Y1 <= r.Y0
}

// ClassifyPriority derives an Item's Priority from its bin class,
// distance to the viewport center, and quality layer: headers are
// always critical; data bins degrade from high to low with distance
// and with higher (less essential) quality layers.
func ClassifyPriority(class databin.Class, distanceToCenter float64, qualityLayer int) Priority {
	switch class {
	case databin.ClassMainHeader, databin.ClassTileHeader:
		return PriorityCritical
	}
	switch {
	case distanceToCenter < 0.25 && qualityLayer == 0:
		return PriorityHigh
	case distanceToCenter < 0.6:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// Stats accumulates scheduler outcomes (spec.md §4.10 "statistics").
type Stats struct {
	Delivered    int
	Truncated    int
	Interrupted  int
	MVQDelivered int
	TimeToMVQ    time.Duration

	firstEnqueuedAt time.Time
	mvqReachedAt    time.Time
	mvqReached      bool
}

// Config bounds a Scheduler's behavior.
type Config struct {
	MaxDeliveryRateBps         float64 // token bucket refill rate, in bytes/sec
	BurstBytes                 int
	EnableQualityTruncation    bool
	MinimumViableQualityLayers int
}

// Scheduler maintains a priority queue of pending Items for the
// current Window and drains them through a token bucket.
type Scheduler struct {
	mu sync.Mutex

	cfg     Config
	limiter *rate.Limiter

	window *Window
	items  []Item

	stats Stats
}

// New builds a Scheduler from cfg.
func New(cfg Config) *Scheduler {
	s := &Scheduler{cfg: cfg}
	if cfg.MaxDeliveryRateBps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxDeliveryRateBps), cfg.BurstBytes)
	}
	return s
}

// SetWindow installs a new Window. If one is already active and its
// Region is disjoint from w's, every item queued for the old window
// that has not yet been delivered is dropped and counted as one
// interruption (spec.md §4.10 "Interruption").
func (s *Scheduler) SetWindow(w Window) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.window != nil && s.window.Region.disjoint(w.Region) {
		s.items = nil
		s.stats.Interrupted++
	}
	s.window = &w
}

// Enqueue adds item to the pending queue, sorted by Priority
// (descending), ties broken by ascending DistanceToCenter.
func (s *Scheduler) Enqueue(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.enqueuedAt = now()
	if s.stats.firstEnqueuedAt.IsZero() {
		s.stats.firstEnqueuedAt = item.enqueuedAt
	}

	i := sort.Search(len(s.items), func(i int) bool {
		cur := s.items[i]
		if cur.Priority != item.Priority {
			return cur.Priority < item.Priority
		}
		return cur.DistanceToCenter > item.DistanceToCenter
	})
	s.items = append(s.items, Item{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
}

// Drain delivers up to maxItems pending items, each gated by the
// delivery-rate token bucket. When the bucket cannot admit an item's
// full payload and quality truncation is enabled, the item is
// truncated to the highest layer that still fits the remaining
// budget, stopping at MinimumViableQualityLayers; an item truncated
// below that floor is skipped entirely (left queued) instead.
func (s *Scheduler) Drain(maxItems int) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var delivered []Item
	remaining := s.items[:0:0]
	budget := s.burstBudgetLocked()

	for _, item := range s.items {
		if len(delivered) >= maxItems {
			remaining = append(remaining, item)
			continue
		}

		size := len(item.Bin.Data)
		if s.limiter == nil || s.admit(size, budget) {
			delivered = append(delivered, item)
			s.recordDeliveryLocked(item)
			continue
		}

		if !s.cfg.EnableQualityTruncation || item.QualityLayer >= s.cfg.MinimumViableQualityLayers {
			remaining = append(remaining, item)
			continue
		}

		truncated := item
		truncated.Bin.Data = truncateToBudget(item.Bin.Data, budget)
		truncated.Bin.IsComplete = false
		delivered = append(delivered, truncated)
		s.stats.Truncated++
		s.recordDeliveryLocked(truncated)
	}

	s.items = remaining
	return delivered
}

func (s *Scheduler) burstBudgetLocked() int {
	if s.limiter == nil {
		return -1 // unlimited
	}
	return s.cfg.BurstBytes
}

func (s *Scheduler) admit(size, budget int) bool {
	if budget < 0 {
		return true
	}
	r := s.limiter.ReserveN(now(), size)
	if !r.OK() {
		return false
	}
	if r.DelayFrom(now()) > 0 {
		r.CancelAt(now())
		return false
	}
	return true
}

func truncateToBudget(data []byte, budget int) []byte {
	if budget < 0 || budget >= len(data) {
		return data
	}
	if budget < 0 {
		budget = 0
	}
	return data[:budget]
}

func (s *Scheduler) recordDeliveryLocked(item Item) {
	s.stats.Delivered++
	if s.cfg.MinimumViableQualityLayers > 0 && item.QualityLayer+1 >= s.cfg.MinimumViableQualityLayers && !s.stats.mvqReached {
		s.stats.mvqReached = true
		s.stats.mvqReachedAt = now()
		s.stats.TimeToMVQ = s.stats.mvqReachedAt.Sub(s.stats.firstEnqueuedAt)
	}
	if item.QualityLayer+1 >= s.cfg.MinimumViableQualityLayers {
		s.stats.MVQDelivered++
	}
}

// Stats returns a snapshot of delivery statistics.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Len returns the number of items still pending.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// now is a seam so tests can control timestamps deterministically.
var now = time.Now
