// Package push implements server-initiated prefetching: a predictive
// engine that extrapolates likely next tiles from viewport history, a
// bounded priority scheduler, and a manager that ties both to a
// client cache and bandwidth throttle (spec.md §4.12, §4.13).
package push

import (
	"sort"
	"sync"
)

// Viewport is the client's visible region (spec.md §3 "Viewport").
type Viewport struct {
	X, Y, Width, Height int
	ResolutionLevel     int
}

func (v Viewport) centerX() float64 { return float64(v.X) + float64(v.Width)/2 }
func (v Viewport) centerY() float64 { return float64(v.Y) + float64(v.Height)/2 }

// Priority orders push items; resolution outranks spatial, which
// outranks quality (spec.md §3 "priority ∈ {quality<spatial<resolution}").
type Priority int

const (
	PriorityQuality Priority = iota
	PrioritySpatial
	PriorityResolution
)

// TileCoord identifies one tile at a resolution level.
type TileCoord struct {
	Level int
	X, Y  int
}

// Prediction is a single predicted tile, with the strategy that
// produced it.
type Prediction struct {
	Tile       TileCoord
	Priority   Priority
	Confidence float64
	Strategy   string
}

// Engine holds per-session viewport history and produces predictions
// by combining resolution, spatial, and viewport-motion strategies
// (spec.md §4.12).
type Engine struct {
	mu sync.Mutex

	maxHistory          int
	confidenceThreshold float64
	maxPrefetchDepth    int
	tileSize            int
	spatialNeighborhood int
	spatialDecay        float64

	history []Viewport
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMaxHistory bounds the viewport ring buffer size. Default 8.
func WithMaxHistory(n int) Option { return func(e *Engine) { e.maxHistory = n } }

// WithConfidenceThreshold drops predictions below this confidence.
// Default 0.2.
func WithConfidenceThreshold(t float64) Option {
	return func(e *Engine) { e.confidenceThreshold = t }
}

// WithMaxPrefetchDepth truncates engine output. Default 16.
func WithMaxPrefetchDepth(n int) Option { return func(e *Engine) { e.maxPrefetchDepth = n } }

// WithTileSize sets the tile edge length, in level-0 pixels, used to
// convert pixel viewports into tile coordinates. Default 256.
func WithTileSize(n int) Option { return func(e *Engine) { e.tileSize = n } }

// WithSpatialNeighborhood sets the Chebyshev radius (in tiles) scanned
// by the spatial-prefetch strategy. Default 1.
func WithSpatialNeighborhood(n int) Option {
	return func(e *Engine) { e.spatialNeighborhood = n }
}

// NewEngine builds an Engine with spec defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxHistory:          8,
		confidenceThreshold: 0.2,
		maxPrefetchDepth:    16,
		tileSize:            256,
		spatialNeighborhood: 1,
		spatialDecay:        0.3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observe appends a viewport to the session's history ring buffer.
func (e *Engine) Observe(v Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, v)
	if len(e.history) > e.maxHistory {
		e.history = e.history[len(e.history)-e.maxHistory:]
	}
}

// Predict combines the three strategies, drops low-confidence
// predictions, sorts by priority then confidence, and truncates to
// maxPrefetchDepth (spec.md §4.12).
func (e *Engine) Predict() []Prediction {
	e.mu.Lock()
	history := append([]Viewport(nil), e.history...)
	e.mu.Unlock()

	if len(history) == 0 {
		return nil
	}

	var all []Prediction
	all = append(all, e.resolutionPrefetch(history)...)
	all = append(all, e.spatialPrefetch(history)...)
	all = append(all, e.viewportMotion(history)...)

	filtered := all[:0]
	for _, p := range all {
		if p.Confidence < 0 {
			p.Confidence = 0
		}
		if p.Confidence > 1 {
			p.Confidence = 1
		}
		if p.Confidence >= e.confidenceThreshold {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Priority != filtered[j].Priority {
			return filtered[i].Priority > filtered[j].Priority
		}
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if len(filtered) > e.maxPrefetchDepth {
		filtered = filtered[:e.maxPrefetchDepth]
	}
	return filtered
}

// resolutionPrefetch detects a monotone increase in resolutionLevel
// across history and emits tiles one level finer than the latest
// viewport.
func (e *Engine) resolutionPrefetch(history []Viewport) []Prediction {
	if len(history) < 2 {
		return nil
	}
	increasing := true
	for i := 1; i < len(history); i++ {
		if history[i].ResolutionLevel < history[i-1].ResolutionLevel {
			increasing = false
			break
		}
	}
	if !increasing || history[len(history)-1].ResolutionLevel == history[0].ResolutionLevel {
		return nil
	}

	latest := history[len(history)-1]
	nextLevel := latest.ResolutionLevel + 1
	tiles := e.tilesCovering(latest, nextLevel)
	out := make([]Prediction, 0, len(tiles))
	for _, tile := range tiles {
		out = append(out, Prediction{Tile: tile, Priority: PriorityResolution, Confidence: 0.8, Strategy: "resolution"})
	}
	return out
}

// spatialPrefetch emits a Chebyshev neighborhood around the latest
// viewport's tiles at the same level, with confidence decaying with
// distance.
func (e *Engine) spatialPrefetch(history []Viewport) []Prediction {
	latest := history[len(history)-1]
	centerTiles := e.tilesCovering(latest, latest.ResolutionLevel)

	seen := make(map[TileCoord]bool, len(centerTiles))
	var out []Prediction
	for _, center := range centerTiles {
		for dy := -e.spatialNeighborhood; dy <= e.spatialNeighborhood; dy++ {
			for dx := -e.spatialNeighborhood; dx <= e.spatialNeighborhood; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				tile := TileCoord{Level: center.Level, X: center.X + dx, Y: center.Y + dy}
				if tile.X < 0 || tile.Y < 0 || seen[tile] {
					continue
				}
				seen[tile] = true
				dist := chebyshev(dx, dy)
				confidence := 1.0 - e.spatialDecay*float64(dist)
				out = append(out, Prediction{Tile: tile, Priority: PrioritySpatial, Confidence: confidence, Strategy: "spatial"})
			}
		}
	}
	return out
}

// viewportMotion linearly extrapolates the center's motion across the
// last two observations and emits tiles covering the predicted
// viewport one step ahead.
func (e *Engine) viewportMotion(history []Viewport) []Prediction {
	if len(history) < 2 {
		return nil
	}
	prev, latest := history[len(history)-2], history[len(history)-1]
	dx := latest.centerX() - prev.centerX()
	dy := latest.centerY() - prev.centerY()
	if dx == 0 && dy == 0 {
		return nil
	}

	predicted := Viewport{
		X:               latest.X + int(dx),
		Y:               latest.Y + int(dy),
		Width:           latest.Width,
		Height:          latest.Height,
		ResolutionLevel: latest.ResolutionLevel,
	}
	tiles := e.tilesCovering(predicted, predicted.ResolutionLevel)
	out := make([]Prediction, 0, len(tiles))
	for _, tile := range tiles {
		out = append(out, Prediction{Tile: tile, Priority: PrioritySpatial, Confidence: 0.6, Strategy: "viewport-motion"})
	}
	return out
}

// tilesCovering returns the tiles, at level, that intersect v (v's
// bounds are given in level-0 pixel coordinates and are scaled down).
func (e *Engine) tilesCovering(v Viewport, level int) []TileCoord {
	scale := 1 << uint(level)
	tileEdge := e.tileSize
	x0 := (v.X / scale) / tileEdge
	y0 := (v.Y / scale) / tileEdge
	x1 := ((v.X + v.Width - 1) / scale) / tileEdge
	y1 := ((v.Y + v.Height - 1) / scale) / tileEdge

	var out []TileCoord
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			out = append(out, TileCoord{Level: level, X: x, Y: y})
		}
	}
	return out
}

func chebyshev(dx, dy int) int {
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// CorrectPredictions counts how many of predictions overlap actual's
// tile set (spec.md §4.12 "Validation").
func CorrectPredictions(predictions []Prediction, actual []TileCoord) int {
	actualSet := make(map[TileCoord]bool, len(actual))
	for _, t := range actual {
		actualSet[t] = true
	}
	count := 0
	for _, p := range predictions {
		if actualSet[p.Tile] {
			count++
		}
	}
	return count
}
