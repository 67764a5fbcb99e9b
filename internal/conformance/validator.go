// Package conformance implements pure, allocation-light validators
// over the structures the codestream and container packages produce,
// covering the JP2-family signature/brand rules and the Part 2, 10, 15
// and 4 structural conformance checks (spec.md §4.17). Part 1 container
// structure is covered by ContainerSignature/ContainerBrand; there is
// no Part 20 (JPEG XS) check, since no component in this repository
// parses or produces a JPEG XS codestream.
package conformance

import (
	"bytes"
	"math"

	"github.com/cocosip/jpeg2000-jpip/internal/codestream"
)

// Result is the outcome of one conformance check: valid unless errors
// is non-empty, plus any non-fatal warnings.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func ok() Result                  { return Result{Valid: true} }
func fail(errs ...string) Result { return Result{Valid: false, Errors: errs} }

// jp2Signature is the fixed 12-byte JP2-family signature box.
var jp2Signature = []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20, 0x0D, 0x0A, 0x87, 0x0A}

// ContainerSignature validates the fixed 12-byte signature box at the
// start of a JP2/JPX/MJ2 file.
func ContainerSignature(data []byte) Result {
	if len(data) < 12 {
		return fail("container too short for a signature box")
	}
	if !bytes.Equal(data[:12], jp2Signature) {
		return fail("signature box does not match the fixed JP2-family signature")
	}
	return ok()
}

// ContainerBrand validates the ftyp box's major brand against the
// three brands this family recognizes.
func ContainerBrand(majorBrand string) Result {
	switch majorBrand {
	case "jp2 ", "mjp2", "jpx ":
		return ok()
	default:
		return fail("unrecognized major brand: " + majorBrand)
	}
}

// MCT validates a Part 2 multi-component-transform declaration: it
// requires at least two components to operate on.
func MCT(numComponents int) Result {
	if numComponents < 2 {
		return fail("MCT requires at least 2 components")
	}
	return ok()
}

// NLTType validates a Part 2 non-linearity transform type code.
func NLTType(nlt int) Result {
	switch nlt {
	case 0, 1, 2:
		return ok()
	default:
		return fail("NLT type must be 0, 1 or 2")
	}
}

// TCQ validates a Part 2 trellis-coded quantization step count.
func TCQ(stepCount int) Result {
	if stepCount < 1 {
		return fail("TCQ step count must be >= 1")
	}
	return ok()
}

// ROIShift validates a region-of-interest shift value's range.
func ROIShift(shift int) Result {
	if shift < 0 || shift > 37 {
		return fail("ROI shift must be in [0, 37]")
	}
	return ok()
}

// ArbitraryWavelet validates a Part 2 arbitrary-wavelet tap
// declaration: at least 2 taps, and an odd tap count when the filter
// is declared symmetric.
func ArbitraryWavelet(tapCount int, symmetric bool) Result {
	if tapCount < 2 {
		return fail("arbitrary wavelet tap count must be >= 2")
	}
	if symmetric && tapCount%2 == 0 {
		return fail("symmetric arbitrary wavelet must have an odd tap count")
	}
	return ok()
}

// DCOffset validates a Part 2 DC-offset value against the declared
// bit depth and signedness.
func DCOffset(offset, bitDepth int, signed bool) Result {
	var lo, hi int
	if signed {
		lo, hi = -(1 << uint(bitDepth-1)), (1<<uint(bitDepth-1))-1
	} else {
		lo, hi = 0, (1<<uint(bitDepth))-1
	}
	if offset < lo || offset > hi {
		return fail("DC offset out of range for declared bit depth/signedness")
	}
	return ok()
}

// VolumeExtents validates a Part 10 (JP3D) volume's extents are all
// at least 1.
func VolumeExtents(width, height, depth int) Result {
	if width < 1 || height < 1 || depth < 1 {
		return fail("volume extents must all be >= 1")
	}
	return ok()
}

// VolumetricZLevels validates that the requested number of Z-axis
// wavelet decomposition levels does not exceed what the volume's
// depth can sustain: floor(log2(depth)) + 1.
func VolumetricZLevels(depth, zLevels int) Result {
	if depth < 1 {
		return fail("depth must be >= 1")
	}
	maxLevels := int(math.Floor(math.Log2(float64(depth)))) + 1
	if zLevels > maxLevels {
		return fail("Z-axis decomposition levels exceed floor(log2(depth))+1")
	}
	return ok()
}

// TileDimsWithinVolume validates that tile dimensions do not exceed
// the volume's dimensions on any axis.
func TileDimsWithinVolume(tileW, tileH, tileD, volW, volH, volD int) Result {
	if tileW > volW || tileH > volH || tileD > volD {
		return fail("tile dimensions exceed volume dimensions")
	}
	return ok()
}

// HTConformance validates Part 15 HTJ2K structural requirements: the
// CAP marker must be present and declare the HT bit, and every
// parsed tile's SOT-declared length (when non-zero) must be
// consistent with the tile's actual byte count.
func HTConformance(cs *codestream.Codestream) Result {
	if cs.CAP == nil || !cs.CAP.IsHT() {
		return fail("HTJ2K conformance requires a CAP marker with the HT bit set")
	}
	var errs []string
	for _, tile := range cs.Tiles {
		if tile.SOT == nil {
			continue
		}
		if tile.SOT.Psot != 0 && int(tile.SOT.Psot) < len(tile.Data) {
			errs = append(errs, "tile-part Psot is smaller than its decoded body")
		}
	}
	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}
	return ok()
}

// TestVector is one conformance corpus entry: a decoded/re-encoded
// result plus the class of comparison it is held to (spec.md §4.17
// Part 4: Class-0 is lossless/bit-exact, Class-1 is lossy/PSNR-gated).
type TestVector struct {
	Name    string
	Class   int // 0 = lossless, 1 = lossy
	MSE     float64
	PSNR    float64
	MinPSNR float64 // required floor for Class-1 vectors
}

// Part4Conformance aggregates a corpus of test vectors: every Class-0
// vector must be bit-exact (MSE == 0), and every Class-1 vector's PSNR
// must meet its declared floor.
func Part4Conformance(vectors []TestVector) Result {
	var errs []string
	for _, v := range vectors {
		switch v.Class {
		case 0:
			if v.MSE != 0 {
				errs = append(errs, v.Name+": Class-0 vector is not bit-exact (MSE != 0)")
			}
		case 1:
			if v.PSNR < v.MinPSNR {
				errs = append(errs, v.Name+": Class-1 vector PSNR below required floor")
			}
		default:
			errs = append(errs, v.Name+": unknown conformance class")
		}
	}
	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}
	return ok()
}
