// Package quality maps bandwidth estimates onto delivery decisions —
// how many quality layers and what resolution level to request — and
// tracks the quality-of-experience metrics that result (spec.md §4.9).
package quality

import (
	"sort"
	"sync"
	"time"
)

// Decision is the engine's output for one evaluation.
type Decision struct {
	TargetQualityLayers   int
	TargetResolutionLevel int
	UseProgressive        bool
	EstimatedLatency      time.Duration
}

// bandwidthPoint is one knot of the piecewise-linear bandwidth→layers
// mapping table.
type bandwidthPoint struct {
	bps    float64
	layers float64
}

// Metrics accumulates QoE observations (spec.md §4.9).
type Metrics struct {
	TimeToFirstByte   time.Duration
	TimeToInteractive time.Duration
	AverageLatency    time.Duration
	AverageQuality    float64
	RebufferingCount  int

	latencySum   time.Duration
	latencyCount int
	qualitySum   float64
	qualityCount int
}

// Engine computes adaptive quality decisions (spec.md §4.9).
type Engine struct {
	mu sync.Mutex

	maxLayers               int
	maxResolutionLevels     int
	smoothingFactor         float64
	progressiveThresholdBps float64

	table []bandwidthPoint

	lastDecision *Decision
	metrics      Metrics
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMaxLayers bounds target_quality_layers. Default 8.
func WithMaxLayers(n int) Option { return func(e *Engine) { e.maxLayers = n } }

// WithMaxResolutionLevels bounds target_resolution_level. Default 5.
func WithMaxResolutionLevels(n int) Option {
	return func(e *Engine) { e.maxResolutionLevels = n }
}

// WithSmoothingFactor sets the smoothing factor. Default 0.5. When it
// is at least 0.5, each decision's resolution level differs from the
// previous decision's by at most one level; below 0.5 no smoothing is
// applied. The factor is not used as an EMA weight, and quality layers
// are never smoothed.
func WithSmoothingFactor(factor float64) Option {
	return func(e *Engine) { e.smoothingFactor = factor }
}

// WithProgressiveThreshold sets the predicted-bandwidth cutoff below
// which progressive mode is enabled. Default 1 Mbps.
func WithProgressiveThreshold(bps float64) Option {
	return func(e *Engine) { e.progressiveThresholdBps = bps }
}

// WithBandwidthLayerTable overrides the default monotone
// piecewise-linear bandwidth(bps)→layers table.
func WithBandwidthLayerTable(points map[float64]float64) Option {
	return func(e *Engine) {
		table := make([]bandwidthPoint, 0, len(points))
		for bps, layers := range points {
			table = append(table, bandwidthPoint{bps: bps, layers: layers})
		}
		sort.Slice(table, func(i, j int) bool { return table[i].bps < table[j].bps })
		e.table = table
	}
}

func defaultTable() []bandwidthPoint {
	return []bandwidthPoint{
		{bps: 100_000, layers: 1},
		{bps: 500_000, layers: 2},
		{bps: 1_000_000, layers: 3},
		{bps: 2_000_000, layers: 4},
		{bps: 5_000_000, layers: 6},
		{bps: 10_000_000, layers: 8},
	}
}

// NewEngine builds an Engine with spec defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxLayers:               8,
		maxResolutionLevels:     5,
		smoothingFactor:         0.5,
		progressiveThresholdBps: 1_000_000,
		table:                   defaultTable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// layersForBandwidth maps bps onto a layer count via linear
// interpolation between the table's knots, clamped to the first and
// last knots' values; Decide then clamps the result to [1, maxLayers].
func (e *Engine) layersForBandwidth(bps float64) float64 {
	t := e.table
	if len(t) == 0 {
		return 1
	}
	if bps <= t[0].bps {
		return t[0].layers
	}
	if bps >= t[len(t)-1].bps {
		return t[len(t)-1].layers
	}
	for i := 1; i < len(t); i++ {
		if bps <= t[i].bps {
			lo, hi := t[i-1], t[i]
			frac := (bps - lo.bps) / (hi.bps - lo.bps)
			return lo.layers + frac*(hi.layers-lo.layers)
		}
	}
	return t[len(t)-1].layers
}

// Decide evaluates a bandwidth estimate and congestion flag and
// produces a Decision, smoothing against the previous decision
// (spec.md §4.9). targetLatency is returned as EstimatedLatency and
// does not affect the layers, resolution or progressive choice.
func (e *Engine) Decide(predictedBps float64, congestionDetected bool, targetLatency time.Duration) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	rawLayers := e.layersForBandwidth(predictedBps)
	layers := int(rawLayers + 0.5)
	if layers < 1 {
		layers = 1
	}
	if layers > e.maxLayers {
		layers = e.maxLayers
	}

	resolution := e.maxResolutionLevels
	if predictedBps < 500_000 {
		resolution = e.maxResolutionLevels - 2
	} else if predictedBps < 2_000_000 {
		resolution = e.maxResolutionLevels - 1
	}
	if congestionDetected && resolution > 0 {
		resolution--
	}
	if resolution < 0 {
		resolution = 0
	}

	decision := Decision{
		TargetQualityLayers:   layers,
		TargetResolutionLevel: resolution,
		UseProgressive:        predictedBps < e.progressiveThresholdBps,
		EstimatedLatency:      targetLatency,
	}

	if e.lastDecision != nil && e.smoothingFactor >= 0.5 {
		decision.TargetResolutionLevel = clampStep(e.lastDecision.TargetResolutionLevel, decision.TargetResolutionLevel, 1)
	}

	d := decision
	e.lastDecision = &d
	return decision
}

// clampStep bounds next to within maxStep of prev.
func clampStep(prev, next, maxStep int) int {
	if next > prev+maxStep {
		return prev + maxStep
	}
	if next < prev-maxStep {
		return prev - maxStep
	}
	return next
}

// RecordFirstByte records time-to-first-byte for the current request.
func (e *Engine) RecordFirstByte(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.TimeToFirstByte = d
}

// RecordInteractive records time-to-interactive for the current request.
func (e *Engine) RecordInteractive(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.TimeToInteractive = d
}

// RecordLatency folds one latency sample into the running average.
func (e *Engine) RecordLatency(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.latencySum += d
	e.metrics.latencyCount++
	e.metrics.AverageLatency = e.metrics.latencySum / time.Duration(e.metrics.latencyCount)
}

// RecordQuality folds one delivered-quality sample (e.g. layers
// delivered / layers requested) into the running average.
func (e *Engine) RecordQuality(q float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.qualitySum += q
	e.metrics.qualityCount++
	e.metrics.AverageQuality = e.metrics.qualitySum / float64(e.metrics.qualityCount)
}

// RecordRebuffer increments the rebuffering count.
func (e *Engine) RecordRebuffer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.RebufferingCount++
}

// Metrics returns a snapshot of accumulated QoE metrics.
func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}
