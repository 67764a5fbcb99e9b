// Package tiling computes the tile grid over an image or volume and
// enumerates packets in the progression order a codestream declares.
package tiling

import "github.com/cocosip/jpeg2000-jpip/internal/codestream"

// Region is an axis-aligned, half-open box: [X0,X1) x [Y0,Y1) x [Z0,Z1).
type Region struct {
	X0, Y0, Z0 int
	X1, Y1, Z1 int
}

func (r Region) Width() int  { return r.X1 - r.X0 }
func (r Region) Height() int { return r.Y1 - r.Y0 }
func (r Region) Depth() int  { return r.Z1 - r.Z0 }

// Lattice is the tile grid derived from a SIZ segment, extended with a
// Z dimension for Part 10 (JP3D) volumetric data (depth counts stay 1
// for ordinary 2-D images).
type Lattice struct {
	imageX0, imageY0, imageZ0 int
	imageX1, imageY1, imageZ1 int
	tileWidth, tileHeight, tileDepth int
	tileOffsetX, tileOffsetY, tileOffsetZ int

	tilesX, tilesY, tilesZ int
}

// NewLattice builds a Lattice from a parsed SIZ segment.
func NewLattice(siz *codestream.SIZSegment) *Lattice {
	l := &Lattice{
		imageX0: int(siz.XOsiz), imageY0: int(siz.YOsiz),
		imageX1: int(siz.Xsiz), imageY1: int(siz.Ysiz),
		tileWidth: int(siz.XTsiz), tileHeight: int(siz.YTsiz),
		tileOffsetX: int(siz.XTOsiz), tileOffsetY: int(siz.YTOsiz),
		tileDepth: 1, imageZ1: 1,
	}
	if siz.Is3D {
		l.imageZ0 = int(siz.ZOsiz)
		l.imageZ1 = int(siz.Zsiz)
		l.tileDepth = int(siz.ZTsiz)
		l.tileOffsetZ = int(siz.ZTOsiz)
	}

	l.tilesX = ceilDiv(l.imageX1-l.tileOffsetX, l.tileWidth)
	l.tilesY = ceilDiv(l.imageY1-l.tileOffsetY, l.tileHeight)
	if siz.Is3D {
		l.tilesZ = ceilDiv(l.imageZ1-l.tileOffsetZ, l.tileDepth)
	} else {
		l.tilesZ = 1
	}
	return l
}

// TileCounts returns the number of tiles along each axis.
func (l *Lattice) TileCounts() (x, y, z int) { return l.tilesX, l.tilesY, l.tilesZ }

// TileCount returns the total number of tiles (tilesX*tilesY*tilesZ).
func (l *Lattice) TileCount() int { return l.tilesX * l.tilesY * l.tilesZ }

// Tile returns tile (i,j,k)'s region in image-local coordinates,
// clamped to the image/volume bounds (spec.md §4.4). A 2-D lattice has
// a single Z layer [0,1) addressed by k = 0; any other k yields an
// empty Z range.
func (l *Lattice) Tile(i, j, k int) Region {
	gridX0 := i*l.tileWidth + l.tileOffsetX
	gridY0 := j*l.tileHeight + l.tileOffsetY
	gridZ0 := k*l.tileDepth + l.tileOffsetZ
	gridX1 := gridX0 + l.tileWidth
	gridY1 := gridY0 + l.tileHeight
	gridZ1 := gridZ0 + l.tileDepth

	gridX0 = clamp(gridX0, l.imageX0, l.imageX1)
	gridY0 = clamp(gridY0, l.imageY0, l.imageY1)
	gridZ0 = clamp(gridZ0, l.imageZ0, l.imageZ1)
	gridX1 = clamp(gridX1, l.imageX0, l.imageX1)
	gridY1 = clamp(gridY1, l.imageY0, l.imageY1)
	gridZ1 = clamp(gridZ1, l.imageZ0, l.imageZ1)

	return Region{
		X0: gridX0 - l.imageX0, Y0: gridY0 - l.imageY0, Z0: gridZ0 - l.imageZ0,
		X1: gridX1 - l.imageX0, Y1: gridY1 - l.imageY0, Z1: gridZ1 - l.imageZ0,
	}
}

// TileByIndex returns the region for a linear tile index, using the
// same (x fastest, then y, then z) ordering as the codestream's tile
// part sequence.
func (l *Lattice) TileByIndex(idx int) Region {
	x := idx % l.tilesX
	y := (idx / l.tilesX) % l.tilesY
	z := idx / (l.tilesX * l.tilesY)
	return l.Tile(x, y, z)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
