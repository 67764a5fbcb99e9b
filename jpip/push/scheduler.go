package push

import "sync"

// Item is one scheduled push: a predicted tile addressed to a
// session, carried through the scheduler's priority queue.
type Item struct {
	ID         string
	SessionID  string
	Prediction Prediction
}

// Scheduler is a bounded priority queue of push Items (spec.md §4.13).
// On overflow, enqueuing a higher-priority item evicts the
// lowest-priority item; enqueuing an item no higher than the current
// lowest fails.
type Scheduler struct {
	mu       sync.Mutex
	capacity int
	items    []Item
}

// NewScheduler builds a Scheduler bounded to capacity items.
func NewScheduler(capacity int) *Scheduler {
	return &Scheduler{capacity: capacity}
}

// Enqueue adds item, evicting the lowest-priority item when at
// capacity and item outranks it; returns false if the queue is full
// and item does not outrank the current lowest.
func (s *Scheduler) Enqueue(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) < s.capacity {
		s.insertLocked(item)
		return true
	}

	lowestIdx := s.lowestIndexLocked()
	if item.Prediction.Priority <= s.items[lowestIdx].Prediction.Priority {
		return false
	}
	s.items = append(s.items[:lowestIdx], s.items[lowestIdx+1:]...)
	s.insertLocked(item)
	return true
}

// insertLocked inserts item keeping s.items sorted highest-priority
// first, ties broken by confidence.
func (s *Scheduler) insertLocked(item Item) {
	i := 0
	for i < len(s.items) {
		cur := s.items[i]
		if item.Prediction.Priority > cur.Prediction.Priority ||
			(item.Prediction.Priority == cur.Prediction.Priority && item.Prediction.Confidence > cur.Prediction.Confidence) {
			break
		}
		i++
	}
	s.items = append(s.items, Item{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
}

func (s *Scheduler) lowestIndexLocked() int {
	return len(s.items) - 1
}

// DequeueBatch removes and returns up to k items in priority order.
func (s *Scheduler) DequeueBatch(k int) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k > len(s.items) {
		k = len(s.items)
	}
	batch := append([]Item(nil), s.items[:k]...)
	s.items = s.items[k:]
	return batch
}

// Len returns the current queue size.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
