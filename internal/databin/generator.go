// Package databin turns a parsed codestream into the JPIP data-bin
// sequence a server streams to clients: main header and per-tile
// header and body bins. Precinct bins are not produced.
package databin

import (
	"bytes"

	"github.com/cocosip/jpeg2000-jpip/internal/codestream"
)

// Class names one of the JPIP bin classes (IS0 15444-9 Table D.2).
type Class string

const (
	ClassMainHeader  Class = "MAIN_HEADER"
	ClassTileHeader  Class = "TILE_HEADER"
	ClassTile        Class = "TILE"
	ClassPrecinct    Class = "PRECINCT"
	ClassExtPrecinct Class = "EXT_PRECINCT"
	ClassMetadata    Class = "METADATA"
)

// Bin is one complete data-bin: a class, an ID scoped to that class,
// and the raw bytes it carries.
type Bin struct {
	Class      Class
	ID         int
	Data       []byte
	IsComplete bool
}

// Generate produces the data-bin sequence for a parsed codestream
// (spec.md §4.5): one MAIN_HEADER bin (id 0), then for each tile one
// TILE_HEADER bin and one TILE bin, both keyed by tile index.
// No PRECINCT bins are emitted: packet boundaries inside a tile body
// are not resolved, so the TILE bin alone covers that tile's content.
func Generate(cs *codestream.Codestream) []Bin {
	if cs == nil {
		return nil
	}

	bins := make([]Bin, 0, 1+2*len(cs.Tiles))
	bins = append(bins, Bin{Class: ClassMainHeader, ID: 0, Data: mainHeaderBytes(cs), IsComplete: true})

	for _, tile := range cs.Tiles {
		bins = append(bins, Bin{Class: ClassTileHeader, ID: tile.Index, Data: tileHeaderBytes(cs, tile), IsComplete: true})
		bins = append(bins, Bin{Class: ClassTile, ID: tile.Index, Data: tile.Data, IsComplete: true})

		if precincts := precinctBins(cs, tile); precincts != nil {
			bins = append(bins, precincts...)
		}
	}

	return bins
}

// mainHeaderBytes slices [SOC .. first SOT) out of the original
// codestream bytes.
func mainHeaderBytes(cs *codestream.Codestream) []byte {
	if len(cs.Data) == 0 || len(cs.Tiles) == 0 {
		return cs.Data
	}
	sotOffset := findFirstSOT(cs.Data)
	if sotOffset < 0 {
		return cs.Data
	}
	return cs.Data[:sotOffset]
}

func findFirstSOT(data []byte) int {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == 0xFF && data[i+1] == 0x90 {
			return i
		}
	}
	return -1
}

// tileHeaderBytes returns [SOT .. SOD] for one tile (the SOD marker
// included), located by
// finding tile.Data's position in the original stream and walking
// back to the nearest preceding SOT marker.
func tileHeaderBytes(cs *codestream.Codestream, tile *codestream.Tile) []byte {
	if len(tile.Data) == 0 || len(cs.Data) == 0 {
		return nil
	}
	bodyOffset := bytes.Index(cs.Data, tile.Data)
	if bodyOffset <= 0 {
		return nil
	}
	sotOffset := -1
	for i := bodyOffset - 2; i >= 0; i-- {
		if cs.Data[i] == 0xFF && cs.Data[i+1] == 0x90 {
			sotOffset = i
			break
		}
	}
	if sotOffset < 0 {
		return nil
	}
	return cs.Data[sotOffset:bodyOffset]
}

// precinctBins returns nil for every tile, so the caller relies on the
// TILE bin alone; packet headers are not walked, so no packet boundary
// is resolved even when the tile declares precinct sizes.
func precinctBins(cs *codestream.Codestream, tile *codestream.Tile) []Bin {
	cod := tile.COD
	if cod == nil {
		cod = cs.COD
	}
	if cod == nil || len(cod.PrecinctSizes) == 0 {
		return nil
	}

	// Packet-level boundaries require parsing tile-part packet headers,
	// which this module treats as opaque payload (spec.md Non-goals);
	// a capable entropy-coding layer can replace this with the exact
	// byte ranges once it can walk packet headers.
	return nil
}
