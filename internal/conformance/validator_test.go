package conformance

import (
	"testing"

	"github.com/cocosip/jpeg2000-jpip/internal/codestream"
)

func TestContainerSignature(t *testing.T) {
	good := []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20, 0x0D, 0x0A, 0x87, 0x0A, 0xFF}
	if r := ContainerSignature(good); !r.Valid {
		t.Fatalf("expected valid signature, got %+v", r)
	}
	bad := []byte{0x00, 0x00, 0x00, 0x0C, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if r := ContainerSignature(bad); r.Valid {
		t.Fatal("expected invalid signature to be rejected")
	}
	if r := ContainerSignature([]byte{0x01}); r.Valid {
		t.Fatal("expected too-short data to be rejected")
	}
}

func TestContainerBrand(t *testing.T) {
	for _, brand := range []string{"jp2 ", "mjp2", "jpx "} {
		if r := ContainerBrand(brand); !r.Valid {
			t.Fatalf("expected brand %q to be valid, got %+v", brand, r)
		}
	}
	if r := ContainerBrand("xxxx"); r.Valid {
		t.Fatal("expected unrecognized brand to be rejected")
	}
}

func TestMCTRequiresAtLeastTwoComponents(t *testing.T) {
	if r := MCT(1); r.Valid {
		t.Fatal("expected MCT with 1 component to be invalid")
	}
	if r := MCT(3); !r.Valid {
		t.Fatal("expected MCT with 3 components to be valid")
	}
}

func TestROIShiftRange(t *testing.T) {
	if r := ROIShift(-1); r.Valid {
		t.Fatal("expected negative ROI shift to be rejected")
	}
	if r := ROIShift(38); r.Valid {
		t.Fatal("expected ROI shift > 37 to be rejected")
	}
	if r := ROIShift(37); !r.Valid {
		t.Fatal("expected ROI shift of 37 to be valid")
	}
}

func TestArbitraryWavelet(t *testing.T) {
	if r := ArbitraryWavelet(1, false); r.Valid {
		t.Fatal("expected tap count < 2 to be rejected")
	}
	if r := ArbitraryWavelet(4, true); r.Valid {
		t.Fatal("expected even tap count with symmetric=true to be rejected")
	}
	if r := ArbitraryWavelet(5, true); !r.Valid {
		t.Fatal("expected odd symmetric tap count to be valid")
	}
}

func TestDCOffsetRange(t *testing.T) {
	if r := DCOffset(300, 8, false); r.Valid {
		t.Fatal("expected out-of-range unsigned offset to be rejected")
	}
	if r := DCOffset(-1, 8, false); r.Valid {
		t.Fatal("expected negative offset to be rejected for unsigned")
	}
	if r := DCOffset(-128, 8, true); !r.Valid {
		t.Fatal("expected -128 to be valid for signed 8-bit")
	}
}

func TestVolumetricZLevels(t *testing.T) {
	// depth=8 -> floor(log2(8))+1 = 4
	if r := VolumetricZLevels(8, 4); !r.Valid {
		t.Fatalf("expected 4 levels to be valid for depth 8, got %+v", r)
	}
	if r := VolumetricZLevels(8, 5); r.Valid {
		t.Fatal("expected 5 levels to be invalid for depth 8")
	}
}

func TestTileDimsWithinVolume(t *testing.T) {
	if r := TileDimsWithinVolume(16, 16, 16, 8, 8, 8); r.Valid {
		t.Fatal("expected oversized tile dims to be rejected")
	}
	if r := TileDimsWithinVolume(8, 8, 8, 8, 8, 8); !r.Valid {
		t.Fatal("expected equal tile/volume dims to be valid")
	}
}

func TestHTConformance_RequiresCAPWithHTBit(t *testing.T) {
	cs := &codestream.Codestream{}
	if r := HTConformance(cs); r.Valid {
		t.Fatal("expected missing CAP marker to fail HT conformance")
	}
	cs.CAP = &codestream.CAPSegment{Pcap: codestream.CapHTBit}
	if r := HTConformance(cs); !r.Valid {
		t.Fatalf("expected CAP with HT bit to pass, got %+v", r)
	}
}

func TestPart4Conformance(t *testing.T) {
	vectors := []TestVector{
		{Name: "lossless-1", Class: 0, MSE: 0},
		{Name: "lossy-1", Class: 1, PSNR: 42.0, MinPSNR: 40.0},
	}
	if r := Part4Conformance(vectors); !r.Valid {
		t.Fatalf("expected all vectors to pass, got %+v", r)
	}

	vectors[0].MSE = 1.0
	if r := Part4Conformance(vectors); r.Valid {
		t.Fatal("expected a non-zero MSE Class-0 vector to fail")
	}
}
