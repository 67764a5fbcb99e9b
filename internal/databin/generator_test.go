package databin

import (
	"bytes"
	"testing"

	"github.com/cocosip/jpeg2000-jpip/internal/codestream"
)

func buildSample(t *testing.T) *codestream.Codestream {
	t.Helper()
	siz := &codestream.SIZSegment{
		Xsiz: 8, Ysiz: 8, XTsiz: 4, YTsiz: 8, Csiz: 1,
		Components: []codestream.ComponentSize{{Ssiz: 7}},
	}
	cod := &codestream.CODSegment{NumberOfLayers: 1, NumberOfDecompositionLevels: 1, CodeBlockWidth: 4, CodeBlockHeight: 4, Transformation: 1}
	qcd := &codestream.QCDSegment{SPqcd: []byte{0}}

	out, err := codestream.Build(codestream.BuildParams{SIZ: siz, COD: cod, QCD: qcd}, []codestream.TilePartInput{
		{TileIndex: 0, Body: []byte{1, 2, 3, 4}},
		{TileIndex: 1, Body: []byte{5, 6}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cs, err := codestream.Parse(out, codestream.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cs
}

func TestGenerate_EmitsMainHeaderThenPerTileBins(t *testing.T) {
	cs := buildSample(t)
	bins := Generate(cs)

	if len(bins) == 0 || bins[0].Class != ClassMainHeader || bins[0].ID != 0 {
		t.Fatalf("expected first bin to be MAIN_HEADER id 0, got %+v", bins[0])
	}
	if !bytes.Equal(bins[0].Data[:2], []byte{0xFF, 0x4F}) {
		t.Fatalf("expected main header to start with SOC, got % X", bins[0].Data[:2])
	}

	var tileBins, tileHeaderBins int
	for _, b := range bins {
		switch b.Class {
		case ClassTile:
			tileBins++
		case ClassTileHeader:
			tileHeaderBins++
		}
		if !b.IsComplete {
			t.Fatalf("expected every generated bin to be complete, got %+v", b)
		}
	}
	if tileBins != 2 || tileHeaderBins != 2 {
		t.Fatalf("expected 2 TILE and 2 TILE_HEADER bins, got %d/%d", tileBins, tileHeaderBins)
	}
}

func TestGenerate_TileBinDataMatchesTileBody(t *testing.T) {
	cs := buildSample(t)
	bins := Generate(cs)

	for i, tile := range cs.Tiles {
		found := false
		for _, b := range bins {
			if b.Class == ClassTile && b.ID == tile.Index {
				if !bytes.Equal(b.Data, tile.Data) {
					t.Fatalf("tile %d bin data %v != tile.Data %v", i, b.Data, tile.Data)
				}
				found = true
			}
		}
		if !found {
			t.Fatalf("no TILE bin found for tile index %d", tile.Index)
		}
	}
}

func TestGenerate_NilCodestreamReturnsNoBins(t *testing.T) {
	if bins := Generate(nil); bins != nil {
		t.Fatalf("expected nil bins for nil codestream, got %v", bins)
	}
}
