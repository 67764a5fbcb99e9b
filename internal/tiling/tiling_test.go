package tiling

import (
	"testing"

	"github.com/cocosip/jpeg2000-jpip/internal/codestream"
)

func siz3D(w, h, d, tw, th, td uint32) *codestream.SIZSegment {
	return &codestream.SIZSegment{
		Xsiz: w, Ysiz: h, XTsiz: tw, YTsiz: th, Csiz: 1,
		Components: []codestream.ComponentSize{{Ssiz: 7}},
		Is3D:       true, Zsiz: d, ZTsiz: td,
	}
}

// TestLattice_VolumetricTileCount mirrors spec.md §8 scenario 2: an
// 8x8x4 volume tiled (4,4,2) yields 8 tiles.
func TestLattice_VolumetricTileCount(t *testing.T) {
	l := NewLattice(siz3D(8, 8, 4, 4, 4, 2))
	x, y, z := l.TileCounts()
	if x != 2 || y != 2 || z != 2 {
		t.Fatalf("expected 2x2x2 tiles, got %dx%dx%d", x, y, z)
	}
	if l.TileCount() != 8 {
		t.Fatalf("expected 8 total tiles, got %d", l.TileCount())
	}
}

func TestLattice_TileRegionsClampToImageBounds(t *testing.T) {
	l := NewLattice(siz3D(10, 10, 1, 4, 4, 1))
	x, y, _ := l.TileCounts()
	if x != 3 || y != 3 {
		t.Fatalf("expected 3x3 tiles for a 10x10 image with 4x4 tiles, got %dx%d", x, y)
	}
	// The last tile in each row/column should be clipped to the image
	// edge rather than overshoot to 12.
	last := l.Tile(2, 2, 0)
	if last.X1 != 10 || last.Y1 != 10 {
		t.Fatalf("expected last tile clipped to (10,10), got (%d,%d)", last.X1, last.Y1)
	}
	if last.Width() != 2 || last.Height() != 2 {
		t.Fatalf("expected last tile to be 2x2, got %dx%d", last.Width(), last.Height())
	}
}

func TestLattice_TileByIndexMatchesRowMajorOrder(t *testing.T) {
	l := NewLattice(siz3D(8, 4, 1, 4, 4, 1))
	// 2 tiles across, 1 down: index 1 should be the tile at grid (1,0).
	byIdx := l.TileByIndex(1)
	byCoord := l.Tile(1, 0, 0)
	if byIdx != byCoord {
		t.Fatalf("TileByIndex(1) = %+v, want %+v", byIdx, byCoord)
	}
}

func TestEnumerate_ProducesExpectedCountAndOuterAxis(t *testing.T) {
	keys := Enumerate(codestream.LRCP, 2, 3, 1, 4, 1)
	if len(keys) != 2*3*1*4 {
		t.Fatalf("expected %d packets, got %d", 2*3*1*4, len(keys))
	}
	// LRCP: layer is outermost, so with two layers the first half of
	// entries should all have Layer == 0.
	for _, k := range keys[:len(keys)/2] {
		if k.Layer != 0 {
			t.Fatalf("expected Layer==0 in first half of LRCP sequence, got %+v", k)
		}
	}
}

func TestEnumerate_VolumetricOrderIncludesSliceAxis(t *testing.T) {
	keys := Enumerate(codestream.RPCLS, 1, 2, 1, 2, 3)
	if len(keys) != 1*2*1*2*3 {
		t.Fatalf("expected %d packets, got %d", 1*2*1*2*3, len(keys))
	}
	seenSlices := map[int]bool{}
	for _, k := range keys {
		seenSlices[k.Slice] = true
	}
	if len(seenSlices) != 3 {
		t.Fatalf("expected 3 distinct slice values, got %d", len(seenSlices))
	}
}

func TestEnumerate_IsReproducibleForSameInputs(t *testing.T) {
	a := Enumerate(codestream.CPRL, 1, 2, 2, 2, 1)
	b := Enumerate(codestream.CPRL, 1, 2, 2, 2, 1)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
