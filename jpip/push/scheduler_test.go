package push

import "testing"

func item(priority Priority, confidence float64) Item {
	return Item{SessionID: "s1", Prediction: Prediction{Priority: priority, Confidence: confidence}}
}

func TestScheduler_EnqueueUpToCapacity(t *testing.T) {
	s := NewScheduler(3)
	if !s.Enqueue(item(PriorityQuality, 0.5)) {
		t.Fatal("expected enqueue to succeed under capacity")
	}
	if !s.Enqueue(item(PriorityQuality, 0.5)) {
		t.Fatal("expected enqueue to succeed under capacity")
	}
	if !s.Enqueue(item(PriorityQuality, 0.5)) {
		t.Fatal("expected enqueue to succeed at capacity")
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
}

func TestScheduler_OverflowRejectsLowerOrEqualPriority(t *testing.T) {
	s := NewScheduler(3)
	s.Enqueue(item(PriorityQuality, 0.9))
	s.Enqueue(item(PriorityQuality, 0.9))
	s.Enqueue(item(PriorityQuality, 0.9))

	if s.Enqueue(item(PriorityQuality, 0.9)) {
		t.Fatal("expected a fourth equal-priority item to be rejected")
	}
	if s.Len() != 3 {
		t.Fatalf("expected queue size to remain 3, got %d", s.Len())
	}
}

func TestScheduler_OverflowAcceptsHigherPriorityDisplacingLowest(t *testing.T) {
	s := NewScheduler(3)
	s.Enqueue(item(PriorityQuality, 0.9))
	s.Enqueue(item(PriorityQuality, 0.9))
	s.Enqueue(item(PriorityQuality, 0.9))

	if !s.Enqueue(item(PriorityResolution, 0.1)) {
		t.Fatal("expected a higher-priority item to displace the lowest")
	}
	if s.Len() != 3 {
		t.Fatalf("expected queue size to remain 3, got %d", s.Len())
	}

	batch := s.DequeueBatch(3)
	if batch[0].Prediction.Priority != PriorityResolution {
		t.Fatalf("expected the displacing item to be first out, got %v", batch[0].Prediction.Priority)
	}
}

func TestScheduler_DequeueBatchReturnsInPriorityOrder(t *testing.T) {
	s := NewScheduler(5)
	s.Enqueue(item(PriorityQuality, 0.5))
	s.Enqueue(item(PriorityResolution, 0.5))
	s.Enqueue(item(PrioritySpatial, 0.5))

	batch := s.DequeueBatch(5)
	if len(batch) != 3 {
		t.Fatalf("expected 3 items, got %d", len(batch))
	}
	for i := 1; i < len(batch); i++ {
		if batch[i-1].Prediction.Priority < batch[i].Prediction.Priority {
			t.Fatalf("expected non-increasing priority order at index %d", i)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("expected queue drained, got %d remaining", s.Len())
	}
}
