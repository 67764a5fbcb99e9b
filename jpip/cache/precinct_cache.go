package cache

import "sync"

// PrecinctKey identifies one precinct within a tile/resolution.
type PrecinctKey struct {
	ImageID    string
	TileIndex  int
	Resolution int
	PrecinctID int
}

// PrecinctEntry tracks a precinct's accumulated quality layers.
type PrecinctEntry struct {
	Layers     map[int]bool
	Bytes      []byte // appended in quality-layer order as merges arrive
	IsComplete bool
}

// PrecinctStats summarizes the precinct cache's contents.
type PrecinctStats struct {
	Total          int
	Complete       int
	Partial        int
	TotalSize      int
	Hits           int
	Misses         int
}

// CompletionRate returns Complete/Total, 0 when Total is 0.
func (s PrecinctStats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Complete) / float64(s.Total)
}

// PrecinctCache tracks partial precincts as quality layers arrive out
// of order across requests (spec.md §4.7).
type PrecinctCache struct {
	mu      sync.Mutex
	entries map[PrecinctKey]*PrecinctEntry
	hits    int
	misses  int
}

// NewPrecinctCache returns an empty PrecinctCache.
func NewPrecinctCache() *PrecinctCache {
	return &PrecinctCache{entries: make(map[PrecinctKey]*PrecinctEntry)}
}

// MergePrecinct unions layers into key's stored layer set, appends
// bytes (quality-layer order matters and is the caller's
// responsibility to preserve), and upgrades completeness
// monotonically — isComplete never reverts a previously complete entry.
func (p *PrecinctCache) MergePrecinct(key PrecinctKey, data []byte, layers []int, isComplete bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		e = &PrecinctEntry{Layers: make(map[int]bool)}
		p.entries[key] = e
	}
	for _, l := range layers {
		e.Layers[l] = true
	}
	e.Bytes = append(e.Bytes, data...)
	if isComplete {
		e.IsComplete = true
	}
}

// HasPrecinct reports whether any data has been merged for key.
func (p *PrecinctCache) HasPrecinct(key PrecinctKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[key]
	if ok {
		p.hits++
	} else {
		p.misses++
	}
	return ok
}

// IsPrecinctComplete reports whether key has been marked complete.
func (p *PrecinctCache) IsPrecinctComplete(key PrecinctKey) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[key]
	return ok && e.IsComplete
}

// GetPrecinctsForTile returns every cached precinct key for one tile.
func (p *PrecinctCache) GetPrecinctsForTile(imageID string, tileIndex int) []PrecinctKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []PrecinctKey
	for k := range p.entries {
		if k.ImageID == imageID && k.TileIndex == tileIndex {
			out = append(out, k)
		}
	}
	return out
}

// GetPrecinctsForResolution returns every cached precinct key at a
// resolution level.
func (p *PrecinctCache) GetPrecinctsForResolution(imageID string, resolution int) []PrecinctKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []PrecinctKey
	for k := range p.entries {
		if k.ImageID == imageID && k.Resolution == resolution {
			out = append(out, k)
		}
	}
	return out
}

// InvalidateTile drops every cached precinct for one tile.
func (p *PrecinctCache) InvalidateTile(imageID string, tileIndex int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.entries {
		if k.ImageID == imageID && k.TileIndex == tileIndex {
			delete(p.entries, k)
		}
	}
}

// InvalidateResolution drops every cached precinct at a resolution level.
func (p *PrecinctCache) InvalidateResolution(imageID string, resolution int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k := range p.entries {
		if k.ImageID == imageID && k.Resolution == resolution {
			delete(p.entries, k)
		}
	}
}

// Clear removes every cached precinct.
func (p *PrecinctCache) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[PrecinctKey]*PrecinctEntry)
}

// Stats returns a snapshot of completion/hit-miss counters.
func (p *PrecinctCache) Stats() PrecinctStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PrecinctStats{Hits: p.hits, Misses: p.misses}
	for _, e := range p.entries {
		s.Total++
		s.TotalSize += len(e.Bytes)
		if e.IsComplete {
			s.Complete++
		} else {
			s.Partial++
		}
	}
	return s
}
