package quality

import (
	"testing"
	"time"
)

func TestEngine_HighBandwidthProducesManyLayers(t *testing.T) {
	e := NewEngine(WithMaxLayers(8))
	d := e.Decide(10_000_000, false, 200*time.Millisecond)
	if d.TargetQualityLayers < 4 {
		t.Fatalf("expected >=4 layers at 10Mbps, got %d", d.TargetQualityLayers)
	}
}

func TestEngine_LowBandwidthProducesFewLayers(t *testing.T) {
	e := NewEngine(WithMaxLayers(8))
	d := e.Decide(500_000, false, 200*time.Millisecond)
	if d.TargetQualityLayers > 3 {
		t.Fatalf("expected <=3 layers at 500Kbps, got %d", d.TargetQualityLayers)
	}
}

func TestEngine_ProgressiveModeEnabledBelowThreshold(t *testing.T) {
	e := NewEngine(WithProgressiveThreshold(1_000_000))
	d := e.Decide(500_000, false, time.Second)
	if !d.UseProgressive {
		t.Fatal("expected progressive mode below threshold")
	}

	d = e.Decide(5_000_000, false, time.Second)
	if d.UseProgressive {
		t.Fatal("expected progressive mode disabled above threshold")
	}
}

func TestEngine_CongestionReducesResolutionLevel(t *testing.T) {
	e := NewEngine(WithMaxResolutionLevels(5), WithSmoothingFactor(0))
	base := e.Decide(10_000_000, false, time.Second)
	congested := e.Decide(10_000_000, true, time.Second)
	if congested.TargetResolutionLevel >= base.TargetResolutionLevel {
		t.Fatalf("expected congestion to reduce resolution level: base=%d congested=%d",
			base.TargetResolutionLevel, congested.TargetResolutionLevel)
	}
}

func TestEngine_SmoothingLimitsResolutionStepToOne(t *testing.T) {
	e := NewEngine(WithMaxResolutionLevels(5), WithSmoothingFactor(0.9))
	first := e.Decide(100_000, false, time.Second)
	// jump straight to max bandwidth; smoothing should still only allow
	// one resolution level of movement per decision.
	d := e.Decide(10_000_000, false, time.Second)
	if step := d.TargetResolutionLevel - first.TargetResolutionLevel; step > 1 {
		t.Fatalf("expected smoothed resolution level to move by at most 1, got step %d", step)
	}
}

func TestEngine_MetricsAccumulateRunningAverages(t *testing.T) {
	e := NewEngine()
	e.RecordLatency(100 * time.Millisecond)
	e.RecordLatency(200 * time.Millisecond)
	e.RecordQuality(0.5)
	e.RecordQuality(1.0)
	e.RecordRebuffer()

	m := e.Metrics()
	if m.AverageLatency != 150*time.Millisecond {
		t.Fatalf("AverageLatency = %v, want 150ms", m.AverageLatency)
	}
	if m.AverageQuality != 0.75 {
		t.Fatalf("AverageQuality = %v, want 0.75", m.AverageQuality)
	}
	if m.RebufferingCount != 1 {
		t.Fatalf("RebufferingCount = %d, want 1", m.RebufferingCount)
	}
}
