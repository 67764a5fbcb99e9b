package quantize

import (
	"math"
	"testing"
)

func TestQuantizer_ZeroMapsToZero(t *testing.T) {
	q, err := New(2.0, 0.5, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := q.Quantize(0); got != 0 {
		t.Fatalf("Quantize(0) = %d, want 0", got)
	}
	if got := q.Dequantize(0, 0.5); got != 0 {
		t.Fatalf("Dequantize(0) = %v, want 0", got)
	}
}

func TestQuantizer_DeadZoneAbsorbsSmallCoefficients(t *testing.T) {
	q, err := New(4.0, 0.5, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// dead zone is 0.5 * 4.0 = 2.0; anything with |c| <= 2.0 quantizes to 0.
	for _, c := range []float64{0, 1.0, -1.9, 2.0} {
		if got := q.Quantize(c); got != 0 {
			t.Fatalf("Quantize(%v) = %d, want 0 (inside dead zone)", c, got)
		}
	}
}

func TestQuantizer_PreservesSign(t *testing.T) {
	q, err := New(1.0, 0.0, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pos := q.Quantize(10)
	neg := q.Quantize(-10)
	if pos <= 0 || neg >= 0 || pos != -neg {
		t.Fatalf("Quantize(10)=%d Quantize(-10)=%d are not sign-symmetric", pos, neg)
	}
}

func TestQuantizer_ReversibleIsIdentityRoundTrip(t *testing.T) {
	q, err := New(0, 0, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, c := range []float64{-5, -1, 0, 1, 5, 127} {
		idx := q.Quantize(c)
		back := q.Dequantize(idx, 0.5)
		if back != math.RoundToEven(c) {
			t.Fatalf("reversible round trip: Quantize(%v)=%d Dequantize=%v", c, idx, back)
		}
	}
}

func TestQuantizer_RejectsInvalidParameters(t *testing.T) {
	if _, err := New(0, 0.5, false); err == nil {
		t.Fatal("expected error for non-positive step size")
	}
	if _, err := New(1, 1.5, false); err == nil {
		t.Fatal("expected error for dead zone offset outside [0, 1]")
	}
}

func TestFromQuality_LosslessIsAllReversible(t *testing.T) {
	qs := FromQuality(100, 3)
	if len(qs) != 10 {
		t.Fatalf("expected 10 subbands (3*levels+1), got %d", len(qs))
	}
	for i, q := range qs {
		if !q.Reversible {
			t.Fatalf("subband %d: expected reversible at quality=100", i)
		}
	}
}

func TestFromQuality_LossyStepSizesGrowTowardFinerSubbands(t *testing.T) {
	qs := FromQuality(50, 2)
	if len(qs) != 7 {
		t.Fatalf("expected 7 subbands (3*2+1), got %d", len(qs))
	}
	// Subband 0 is LL, which always gets the finest (smallest) step
	// size; the last entry is the finest-resolution detail subband,
	// which is quantized most coarsely.
	if qs[len(qs)-1].StepSize <= qs[0].StepSize {
		t.Fatalf("finest-resolution subband step size %v should be larger than LL step size %v",
			qs[len(qs)-1].StepSize, qs[0].StepSize)
	}
}

func TestEncodeDecodeStepSize_RoundTripsApproximately(t *testing.T) {
	original := 0.0625
	encoded := EncodeStepSize(original, 8)
	decoded := DecodeStepSize(encoded, 8)
	if math.Abs(decoded-original)/original > 0.05 {
		t.Fatalf("step size round trip: got %v, want approximately %v", decoded, original)
	}
}
