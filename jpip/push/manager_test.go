package push

import (
	"testing"

	"github.com/cocosip/jpeg2000-jpip/jpip/bandwidth"
	"github.com/cocosip/jpeg2000-jpip/jpip/cache"
)

func TestManager_OnViewportUpdateSkipsAlreadyCachedTiles(t *testing.T) {
	engine := NewEngine(WithConfidenceThreshold(0), WithSpatialNeighborhood(1))
	scheduler := NewScheduler(100)
	tracker := cache.NewClientCache()
	mgr := NewManager(engine, scheduler, tracker, nil)

	// pre-populate the tracker with the exact bin id the spatial
	// strategy will predict for tile (1,0) at level 0 so it's filtered.
	known := tileBinID(TileCoord{Level: 0, X: 1, Y: 0})
	tracker.Add(cache.Key{ImageID: "img", Class: "TILE", BinID: known}, []byte("x"), 0, true)

	accepted := mgr.OnViewportUpdate("session-1", "img", Viewport{X: 0, Y: 0, Width: 256, Height: 256, ResolutionLevel: 0})

	for _, p := range accepted {
		if p.Tile == (TileCoord{Level: 0, X: 1, Y: 0}) {
			t.Fatal("expected already-cached tile to be filtered from accepted predictions")
		}
	}
}

func TestManager_RejectStateBlocksEnqueue(t *testing.T) {
	engine := NewEngine(WithConfidenceThreshold(0))
	scheduler := NewScheduler(100)
	mgr := NewManager(engine, scheduler, nil, nil)
	mgr.SetState("session-1", StateReject)

	accepted := mgr.OnViewportUpdate("session-1", "img", Viewport{X: 0, Y: 0, Width: 256, Height: 256, ResolutionLevel: 0})
	if accepted != nil {
		t.Fatalf("expected no predictions accepted while rejected, got %v", accepted)
	}
	if scheduler.Len() != 0 {
		t.Fatalf("expected scheduler to stay empty, got %d", scheduler.Len())
	}
}

func TestManager_DrainRespectsThrottle(t *testing.T) {
	engine := NewEngine()
	scheduler := NewScheduler(10)
	zero := 0.0
	throttle := bandwidth.NewThrottle(nil, &zero, 0) // zero client rate, zero burst -> always denies
	mgr := NewManager(engine, scheduler, nil, throttle)

	scheduler.Enqueue(Item{SessionID: "session-1", Prediction: Prediction{Priority: PriorityResolution, Confidence: 0.9}})

	drained := mgr.Drain(10)
	if len(drained) != 0 {
		t.Fatalf("expected throttle to block all draining, got %d", len(drained))
	}
}

func TestManager_DrainAllowsWithinBudget(t *testing.T) {
	engine := NewEngine()
	scheduler := NewScheduler(10)
	limit := 1000.0
	throttle := bandwidth.NewThrottle(nil, &limit, 1000)
	mgr := NewManager(engine, scheduler, nil, throttle)

	scheduler.Enqueue(Item{SessionID: "session-1", Prediction: Prediction{Priority: PriorityResolution, Confidence: 0.9}})

	drained := mgr.Drain(10)
	if len(drained) != 1 {
		t.Fatalf("expected 1 item drained within budget, got %d", len(drained))
	}
}
