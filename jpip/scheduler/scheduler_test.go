package scheduler

import (
	"testing"

	"github.com/cocosip/jpeg2000-jpip/internal/databin"
)

func bin(class databin.Class, id, size int) databin.Bin {
	return databin.Bin{Class: class, ID: id, Data: make([]byte, size), IsComplete: true}
}

func TestClassifyPriority_HeadersAreAlwaysCritical(t *testing.T) {
	if p := ClassifyPriority(databin.ClassMainHeader, 0.9, 3); p != PriorityCritical {
		t.Fatalf("ClassifyPriority(MAIN_HEADER) = %v, want critical", p)
	}
	if p := ClassifyPriority(databin.ClassTileHeader, 0.9, 3); p != PriorityCritical {
		t.Fatalf("ClassifyPriority(TILE_HEADER) = %v, want critical", p)
	}
}

func TestClassifyPriority_DegradesWithDistanceAndLayer(t *testing.T) {
	near := ClassifyPriority(databin.ClassPrecinct, 0.1, 0)
	mid := ClassifyPriority(databin.ClassPrecinct, 0.4, 0)
	far := ClassifyPriority(databin.ClassPrecinct, 0.9, 0)
	if !(near > mid && mid > far) {
		t.Fatalf("expected strictly descending priority with distance, got near=%v mid=%v far=%v", near, mid, far)
	}
}

func TestScheduler_DrainOrdersByPriorityThenDistance(t *testing.T) {
	s := New(Config{})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 1, 4), Priority: PriorityLow, DistanceToCenter: 0.9})
	s.Enqueue(Item{Bin: bin(databin.ClassMainHeader, 0, 4), Priority: PriorityCritical, DistanceToCenter: 0})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 2, 4), Priority: PriorityNormal, DistanceToCenter: 0.5})

	batch := s.Drain(10)
	if len(batch) != 3 {
		t.Fatalf("expected 3 items drained, got %d", len(batch))
	}
	if batch[0].Priority != PriorityCritical || batch[1].Priority != PriorityNormal || batch[2].Priority != PriorityLow {
		t.Fatalf("unexpected drain order: %+v", batch)
	}
}

func TestScheduler_SetWindowInterruptsOnDisjointRegion(t *testing.T) {
	s := New(Config{})
	s.SetWindow(Window{Region: Region{X0: 0, Y0: 0, X1: 100, Y1: 100}})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 1, 4), Priority: PriorityNormal})

	s.SetWindow(Window{Region: Region{X0: 500, Y0: 500, X1: 600, Y1: 600}})

	if s.Len() != 0 {
		t.Fatalf("expected non-delivered items dropped on disjoint window change, got %d remaining", s.Len())
	}
	if s.Stats().Interrupted != 1 {
		t.Fatalf("expected one interruption recorded, got %d", s.Stats().Interrupted)
	}
}

func TestScheduler_OverlappingWindowDoesNotInterrupt(t *testing.T) {
	s := New(Config{})
	s.SetWindow(Window{Region: Region{X0: 0, Y0: 0, X1: 100, Y1: 100}})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 1, 4), Priority: PriorityNormal})

	s.SetWindow(Window{Region: Region{X0: 50, Y0: 50, X1: 150, Y1: 150}})

	if s.Len() != 1 {
		t.Fatalf("expected item to survive an overlapping window change, got %d remaining", s.Len())
	}
	if s.Stats().Interrupted != 0 {
		t.Fatalf("expected no interruption for an overlapping region, got %d", s.Stats().Interrupted)
	}
}

func TestScheduler_RateLimitDefersItemsOverBudget(t *testing.T) {
	rate := 10.0 // bytes/sec
	s := New(Config{MaxDeliveryRateBps: rate, BurstBytes: 10})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 1, 10), Priority: PriorityNormal})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 2, 10), Priority: PriorityNormal})

	batch := s.Drain(10)
	if len(batch) != 1 {
		t.Fatalf("expected only the first item to fit the burst budget, got %d delivered", len(batch))
	}
	if s.Len() != 1 {
		t.Fatalf("expected the second item to remain queued, got %d remaining", s.Len())
	}
}

func TestScheduler_QualityTruncationShrinksOversizedItemWhenEnabled(t *testing.T) {
	s := New(Config{
		MaxDeliveryRateBps:         10,
		BurstBytes:                5,
		EnableQualityTruncation:    true,
		MinimumViableQualityLayers: 2,
	})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 1, 20), Priority: PriorityNormal, QualityLayer: 0})

	batch := s.Drain(10)
	if len(batch) != 1 {
		t.Fatalf("expected the oversized item to be truncated and delivered, got %d", len(batch))
	}
	if len(batch[0].Bin.Data) >= 20 {
		t.Fatalf("expected truncated payload shorter than original, got %d bytes", len(batch[0].Bin.Data))
	}
	if batch[0].Bin.IsComplete {
		t.Fatal("expected a truncated bin to be marked incomplete")
	}
	if s.Stats().Truncated != 1 {
		t.Fatalf("expected 1 truncated bin recorded, got %d", s.Stats().Truncated)
	}
}

func TestScheduler_BelowMinimumViableLayerIsLeftQueuedNotTruncated(t *testing.T) {
	s := New(Config{
		MaxDeliveryRateBps:         10,
		BurstBytes:                5,
		EnableQualityTruncation:    true,
		MinimumViableQualityLayers: 1,
	})
	// QualityLayer already at/above the minimum viable floor: truncation
	// must not degrade it further below that floor, so it stays queued.
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 1, 20), Priority: PriorityNormal, QualityLayer: 1})

	batch := s.Drain(10)
	if len(batch) != 0 {
		t.Fatalf("expected item at/above the minimum viable layer to be left queued, got %d delivered", len(batch))
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 item still queued, got %d", s.Len())
	}
}

func TestScheduler_MVQDeliveredCountsItemsAtOrAboveFloor(t *testing.T) {
	s := New(Config{MinimumViableQualityLayers: 2})
	s.Enqueue(Item{Bin: bin(databin.ClassPrecinct, 1, 4), Priority: PriorityNormal, QualityLayer: 1}) // layer+1=2, meets floor

	batch := s.Drain(10)
	if len(batch) != 1 {
		t.Fatalf("expected 1 item delivered, got %d", len(batch))
	}
	if s.Stats().MVQDelivered != 1 {
		t.Fatalf("expected 1 MVQ-delivered bin, got %d", s.Stats().MVQDelivered)
	}
	if s.Stats().TimeToMVQ < 0 {
		t.Fatalf("expected non-negative TimeToMVQ, got %v", s.Stats().TimeToMVQ)
	}
}
