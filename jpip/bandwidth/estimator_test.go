package bandwidth

import (
	"testing"
	"time"
)

func TestEstimator_RecordRejectsSamplesFasterThanMeasurementInterval(t *testing.T) {
	e := NewEstimator(WithMeasurementInterval(time.Second))
	base := time.Unix(0, 0)

	e.Record(Sample{Bytes: 1000, Duration: 100 * time.Millisecond, RTT: 20 * time.Millisecond, At: base})
	e.Record(Sample{Bytes: 1000, Duration: 100 * time.Millisecond, RTT: 20 * time.Millisecond, At: base.Add(500 * time.Millisecond)})

	est := e.Estimate()
	if est.BandwidthBps == 0 {
		t.Fatal("expected first sample to register")
	}
	// the second sample landed within the same interval and should have
	// been dropped, so confidence shouldn't reflect two samples worth.
	if est.Confidence >= 1 {
		t.Fatalf("expected low confidence with only one admitted sample, got %v", est.Confidence)
	}
}

func TestEstimator_InstantaneousBandwidthIsWindowSumOverDuration(t *testing.T) {
	e := NewEstimator(WithMeasurementInterval(0))
	base := time.Unix(0, 0)

	e.Record(Sample{Bytes: 125000, Duration: time.Second, RTT: 10 * time.Millisecond, At: base})
	est := e.Estimate()

	want := 1_000_000.0 // 125000 bytes * 8 bits / 1s = 1 Mbps
	if est.BandwidthBps != want {
		t.Fatalf("BandwidthBps = %v, want %v", est.BandwidthBps, want)
	}
}

func TestEstimator_CongestionDetectedWhenRTTExceedsBaselineFactor(t *testing.T) {
	e := NewEstimator(WithMeasurementInterval(0), WithCongestionFactor(2.0))
	base := time.Unix(0, 0)

	for i := 0; i < 5; i++ {
		e.Record(Sample{Bytes: 1000, Duration: 100 * time.Millisecond, RTT: 20 * time.Millisecond, At: base.Add(time.Duration(i) * time.Second)})
	}
	est := e.Estimate()
	if est.CongestionDetected {
		t.Fatal("expected no congestion with stable RTT")
	}

	e.Record(Sample{Bytes: 1000, Duration: 100 * time.Millisecond, RTT: 200 * time.Millisecond, At: base.Add(10 * time.Second)})
	est = e.Estimate()
	if !est.CongestionDetected {
		t.Fatal("expected congestion after RTT spike well above baseline*factor")
	}
}

func TestEstimator_TrendReflectsRecentVersusEarlierHalves(t *testing.T) {
	e := NewEstimator(WithMeasurementInterval(0), WithWindowSize(4))
	base := time.Unix(0, 0)

	// earlier half: slow; recent half: fast -> trend up
	e.Record(Sample{Bytes: 1000, Duration: time.Second, RTT: 10 * time.Millisecond, At: base})
	e.Record(Sample{Bytes: 1000, Duration: time.Second, RTT: 10 * time.Millisecond, At: base.Add(1 * time.Second)})
	e.Record(Sample{Bytes: 10000, Duration: time.Second, RTT: 10 * time.Millisecond, At: base.Add(2 * time.Second)})
	e.Record(Sample{Bytes: 10000, Duration: time.Second, RTT: 10 * time.Millisecond, At: base.Add(3 * time.Second)})

	if trend := e.Estimate().Trend; trend != TrendUp {
		t.Fatalf("Trend = %v, want TrendUp", trend)
	}
}

func TestEstimator_ConfidenceSaturatesAfterMinSamplesWithStableRTT(t *testing.T) {
	e := NewEstimator(WithMeasurementInterval(0), WithMinSamplesForConfidence(3), WithWindowSize(10))
	base := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		e.Record(Sample{Bytes: 1000, Duration: 100 * time.Millisecond, RTT: 20 * time.Millisecond, At: base.Add(time.Duration(i) * time.Second)})
	}
	if conf := e.Estimate().Confidence; conf < 0.99 {
		t.Fatalf("expected confidence to saturate near 1 with stable RTT, got %v", conf)
	}
}

func TestThrottle_UnrestrictedWhenLimitsAreNil(t *testing.T) {
	th := NewThrottle(nil, nil, 1<<20)
	if !th.CanSend("client-a", 10_000_000) {
		t.Fatal("expected unrestricted throttle to allow sending")
	}
}

func TestThrottle_ClientLimitBlocksOversizedBurst(t *testing.T) {
	clientBps := 1000.0
	th := NewThrottle(nil, &clientBps, 1000) // 1000 bytes/sec, burst 1000
	if th.CanSend("client-a", 5000) {
		t.Fatal("expected CanSend to reject a burst larger than the bucket")
	}
}

func TestThrottle_RecordSentDebitsBothBuckets(t *testing.T) {
	globalBps, clientBps := 10000.0, 10000.0
	th := NewThrottle(&globalBps, &clientBps, 2000)

	if !th.CanSend("client-a", 1500) {
		t.Fatal("expected initial send to be allowed within burst")
	}
	th.RecordSent("client-a", 1500)

	if th.CanSend("client-a", 1500) {
		t.Fatal("expected second send to be throttled after debiting most of the burst")
	}
}

func TestThrottle_RemoveClientFreesItsBucket(t *testing.T) {
	clientBps := 1000.0
	th := NewThrottle(nil, &clientBps, 1000)
	th.RecordSent("client-a", 900)
	th.RemoveClient("client-a")

	if !th.CanSend("client-a", 900) {
		t.Fatal("expected a fresh bucket after RemoveClient")
	}
}
