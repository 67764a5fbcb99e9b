// Package tilemanager computes per-resolution tile lattices and ranks
// tiles against a viewport by visibility, producing the
// priority/quality-layer targets the delivery scheduler consumes
// (spec.md §4.11).
package tilemanager

import (
	"sort"
)

// Priority buckets a tile's delivery urgency.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Viewport is the visible region, in image coordinates at resolution
// level 0 (full resolution).
type Viewport struct {
	X0, Y0, X1, Y1 int
}

func (v Viewport) width() int  { return v.X1 - v.X0 }
func (v Viewport) height() int { return v.Y1 - v.Y0 }
func (v Viewport) centerX() float64 {
	return float64(v.X0+v.X1) / 2
}
func (v Viewport) centerY() float64 {
	return float64(v.Y0+v.Y1) / 2
}

// TileRect is one tile's bounds at a specific resolution level.
type TileRect struct {
	Level          int
	TileX, TileY   int
	X0, Y0, X1, Y1 int
}

// RankedTile is a TileRect scored and prioritized against a viewport.
type RankedTile struct {
	Tile            TileRect
	VisibilityScore float64
	Priority        Priority
	QualityLayers   int
}

// Config parameterizes the Manager (spec.md §4.11 inputs).
type Config struct {
	ImageWidth, ImageHeight int
	TileWidth, TileHeight   int
	ComponentCount          int
	MaxResolutionLevels     int
	MaxQualityLayers        int
	GranularityFactor       float64 // scales the emitted priority distribution; default 1.0
}

// Manager computes tile lattices per resolution level and ranks tiles
// against a viewport.
type Manager struct {
	cfg Config
}

// NewManager builds a Manager from cfg, defaulting GranularityFactor
// to 1.0 when zero.
func NewManager(cfg Config) *Manager {
	if cfg.GranularityFactor == 0 {
		cfg.GranularityFactor = 1.0
	}
	return &Manager{cfg: cfg}
}

// dimensionsAtLevel halves width/height per level, rounding up
// (spec.md §4.11 "dimensions halve per level, rounded up").
func dimensionsAtLevel(width, height, level int) (int, int) {
	for i := 0; i < level; i++ {
		width = (width + 1) / 2
		height = (height + 1) / 2
	}
	return width, height
}

// TilesAtLevel computes the tile lattice for resolution level.
func (m *Manager) TilesAtLevel(level int) []TileRect {
	w, h := dimensionsAtLevel(m.cfg.ImageWidth, m.cfg.ImageHeight, level)
	tw, th := m.cfg.TileWidth, m.cfg.TileHeight
	if tw <= 0 {
		tw = w
	}
	if th <= 0 {
		th = h
	}

	tilesX := ceilDiv(w, tw)
	tilesY := ceilDiv(h, th)

	var out []TileRect
	for j := 0; j < tilesY; j++ {
		for i := 0; i < tilesX; i++ {
			x0, y0 := i*tw, j*th
			x1, y1 := x0+tw, y0+th
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			out = append(out, TileRect{Level: level, TileX: i, TileY: j, X0: x0, Y0: y0, X1: x1, Y1: y1})
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RankForViewport computes a priority-ordered list of tiles at level
// covering or near viewport (given in level-0 image coordinates; it is
// scaled down to level's coordinate space before intersecting).
func (m *Manager) RankForViewport(level int, viewport Viewport) []RankedTile {
	scale := 1 << uint(level)
	scaled := Viewport{
		X0: viewport.X0 / scale, Y0: viewport.Y0 / scale,
		X1: ceilDivInt(viewport.X1, scale), Y1: ceilDivInt(viewport.Y1, scale),
	}

	tiles := m.TilesAtLevel(level)
	ranked := make([]RankedTile, 0, len(tiles))
	for _, tile := range tiles {
		visibility := visibilityScore(tile, scaled)
		distance := distanceToCenter(tile, scaled)
		priority := classifyPriority(visibility, distance, m.cfg.GranularityFactor)
		ranked = append(ranked, RankedTile{
			Tile:            tile,
			VisibilityScore: visibility,
			Priority:        priority,
			QualityLayers:   qualityLayersFor(priority, m.cfg.MaxQualityLayers),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority > ranked[j].Priority
		}
		return ranked[i].VisibilityScore > ranked[j].VisibilityScore
	})
	return ranked
}

func ceilDivInt(a, b int) int {
	if b <= 0 {
		return a
	}
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

// visibilityScore is the fraction of tile covered by viewport, in
// [0,1].
func visibilityScore(tile TileRect, viewport Viewport) float64 {
	ix0, iy0 := max(tile.X0, viewport.X0), max(tile.Y0, viewport.Y0)
	ix1, iy1 := min(tile.X1, viewport.X1), min(tile.Y1, viewport.Y1)
	if ix1 <= ix0 || iy1 <= iy0 {
		return 0
	}
	tileArea := (tile.X1 - tile.X0) * (tile.Y1 - tile.Y0)
	if tileArea <= 0 {
		return 0
	}
	overlapArea := (ix1 - ix0) * (iy1 - iy0)
	return float64(overlapArea) / float64(tileArea)
}

// distanceToCenter is the squared Euclidean distance, in tile-space
// pixels, from tile's center to viewport's center.
func distanceToCenter(tile TileRect, viewport Viewport) float64 {
	tcx := float64(tile.X0+tile.X1) / 2
	tcy := float64(tile.Y0+tile.Y1) / 2
	dx := tcx - viewport.centerX()
	dy := tcy - viewport.centerY()
	return dx*dx + dy*dy // squared distance; monotone for ranking purposes
}

// classifyPriority quantizes visibility into a Priority bucket, scaled
// by granularityFactor (spec.md §4.11). distanceSquared does not
// affect the result.
func classifyPriority(visibility, distanceSquared, granularityFactor float64) Priority {
	if visibility <= 0 {
		return PriorityLow
	}
	score := visibility * granularityFactor
	switch {
	case score >= 0.75:
		return PriorityCritical
	case score >= 0.4:
		return PriorityHigh
	case score >= 0.1:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// qualityLayersFor is a monotone function of priority bounded by
// maxLayers.
func qualityLayersFor(p Priority, maxLayers int) int {
	if maxLayers <= 0 {
		return 0
	}
	var frac float64
	switch p {
	case PriorityCritical:
		frac = 1.0
	case PriorityHigh:
		frac = 0.75
	case PriorityNormal:
		frac = 0.5
	default:
		frac = 0.25
	}
	layers := int(frac*float64(maxLayers) + 0.5)
	if layers < 1 {
		layers = 1
	}
	if layers > maxLayers {
		layers = maxLayers
	}
	return layers
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
