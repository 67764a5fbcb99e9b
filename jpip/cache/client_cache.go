// Package cache implements the two caches the JPIP layer needs: a
// client-side bin cache with resolution-weighted eviction and a
// precinct cache that tracks partial quality-layer delivery.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/cocosip/jpeg2000-jpip/internal/errs"
)

// Key identifies one cached bin.
type Key struct {
	ImageID string
	Class   string
	BinID   int
}

// Store is a pluggable persistence backend for warm-up/save-through
// (spec.md §4.6 "Persistence").
type Store interface {
	Load() (map[string]Entry, error)
	Save(entries map[string]Entry) error
}

// Entry is one cached bin plus its bookkeeping metadata.
type Entry struct {
	Key             Key
	Bytes           []byte
	ResolutionLevel int
	IsComplete      bool
	ContentHash     string
	CreatedAt       time.Time
	LastAccess      time.Time
	Pinned          bool
	Compressed      bool
}

func storeKeyString(k Key) string {
	return k.ImageID + ":" + k.Class + ":" + strconv.Itoa(k.BinID)
}

// Stats accumulates hit/miss counters and compression accounting.
type Stats struct {
	Hits                  uint64
	Misses                uint64
	CompressionBytesSaved uint64
}

// HitRate returns hits/(hits+misses), 0 when there have been no
// accesses.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// unboundedSize is the simplelru capacity, whether or not an entry
// limit is configured — the cache is kept within bounds by our own
// resolution-weighted eviction instead of simplelru's built-in LRU
// eviction, which only orders by recency.
const unboundedSize = 1 << 24

// ClientCache is the client-side bin cache (spec.md §4.6). Entries are
// held in a hashicorp/golang-lru/v2 simplelru.LRU, used here purely as
// an ordered bookkeeping substrate (its Keys() returns oldest-accessed
// first); eviction candidates are re-ranked by resolution-weighted
// score before anything is actually removed, so simplelru's own
// capacity-triggered eviction never fires in normal operation — we
// always make room ourselves first.
type ClientCache struct {
	mu sync.Mutex

	lru       *simplelru.LRU[Key, *Entry]
	byHash    map[string]Key // dedup: content hash -> canonical key
	dedupRefs map[Key]string // non-canonical key -> content hash it shares

	entryLimit int
	maxMemory  int64
	usedMemory int64

	dedupEnabled bool
	weightFn     func(resolutionLevel int) float64

	compressionThreshold time.Duration
	compressFn           func([]byte) []byte
	decompressFn         func([]byte) []byte

	store Store
	stats Stats
}

// Option configures a ClientCache at construction time.
type Option func(*ClientCache)

// WithEntryLimit bounds the number of distinct entries.
func WithEntryLimit(n int) Option { return func(c *ClientCache) { c.entryLimit = n } }

// WithMaxMemory bounds total accounted byte size.
func WithMaxMemory(n int64) Option { return func(c *ClientCache) { c.maxMemory = n } }

// WithDedup enables content-hash deduplication.
func WithDedup(enabled bool) Option { return func(c *ClientCache) { c.dedupEnabled = enabled } }

// WithStore attaches a persistence backend.
func WithStore(s Store) Option { return func(c *ClientCache) { c.store = s } }

// WithCompression enables idle-entry compression after threshold,
// using the given compress/decompress functions (spec.md §4.6
// "Compression"; ZstdCompress/ZstdDecompress in this package supply a
// github.com/klauspost/compress pair, but any functions of this shape
// work).
func WithCompression(threshold time.Duration, compress, decompress func([]byte) []byte) Option {
	return func(c *ClientCache) {
		c.compressionThreshold = threshold
		c.compressFn = compress
		c.decompressFn = decompress
	}
}

// NewClientCache builds a ClientCache with the default
// resolution-weighted eviction score w(level) = 1/(level+1).
func NewClientCache(opts ...Option) *ClientCache {
	c := &ClientCache{
		byHash:    make(map[string]Key),
		dedupRefs: make(map[Key]string),
		weightFn:  func(level int) float64 { return 1.0 / float64(level+1) },
	}
	for _, opt := range opts {
		opt(c)
	}

	lru, _ := simplelru.NewLRU[Key, *Entry](unboundedSize, func(k Key, e *Entry) { c.unaccount(k, e) })
	c.lru = lru
	return c
}

// unaccount adjusts shared bookkeeping whenever an entry leaves the
// LRU, whether via our own score-based Remove or simplelru's own
// capacity eviction.
func (c *ClientCache) unaccount(k Key, e *Entry) {
	c.usedMemory -= int64(len(e.Bytes))
	if canonical, ok := c.byHash[e.ContentHash]; ok && canonical == k {
		delete(c.byHash, e.ContentHash)
	}
	delete(c.dedupRefs, k)
}

// Add inserts or updates bytes under key (spec.md §4.6 step 1-3).
func (c *ClientCache) Add(key Key, data []byte, resolutionLevel int, isComplete bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := contentHash(data)

	if existing, ok := c.lru.Get(key); ok {
		c.usedMemory += int64(len(data)) - int64(len(existing.Bytes))
		existing.Bytes = data
		existing.IsComplete = isComplete
		existing.ContentHash = hash
		existing.LastAccess = now()
		existing.ResolutionLevel = resolutionLevel
		existing.Compressed = false
		c.evictIfNeeded()
		return
	}

	if c.dedupEnabled {
		if canonical, ok := c.byHash[hash]; ok && canonical != key {
			c.dedupRefs[key] = hash
			c.evictIfNeeded()
			return
		}
		c.byHash[hash] = key
	}

	c.lru.Add(key, &Entry{
		Key: key, Bytes: data, ResolutionLevel: resolutionLevel, IsComplete: isComplete,
		ContentHash: hash, CreatedAt: now(), LastAccess: now(),
	})
	c.usedMemory += int64(len(data))
	c.evictIfNeeded()
}

// Pin marks key ineligible for eviction.
func (c *ClientCache) Pin(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.lru.Peek(key); ok {
		e.Pinned = true
	}
}

// Get retrieves key's bytes, recording a hit or miss, and
// transparently decompressing if the entry was idle-compressed.
func (c *ClientCache) Get(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hash, isRef := c.dedupRefs[key]; isRef {
		canonical, ok := c.byHash[hash]
		if !ok {
			c.stats.Misses++
			return nil, false
		}
		key = canonical
	}

	e, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	e.LastAccess = now()
	if e.Compressed && c.decompressFn != nil {
		return c.decompressFn(e.Bytes), true
	}
	return e.Bytes, true
}

// Stats returns a snapshot of hit/miss counters.
func (c *ClientCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// CompressIdle compresses every entry last accessed more than the
// configured inactivity threshold ago.
func (c *ClientCache) CompressIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.compressFn == nil || c.compressionThreshold == 0 {
		return
	}
	cutoff := now().Add(-c.compressionThreshold)
	for _, e := range c.snapshotEntriesLocked() {
		if e.Compressed || e.LastAccess.After(cutoff) {
			continue
		}
		before := len(e.Bytes)
		e.Bytes = c.compressFn(e.Bytes)
		e.Compressed = true
		saved := before - len(e.Bytes)
		if saved > 0 {
			c.stats.CompressionBytesSaved += uint64(saved)
		}
	}
}

// EvictImage removes every entry for one image.
func (c *ClientCache) EvictImage(imageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.snapshotEntriesLocked() {
		if e.Key.ImageID == imageID {
			c.lru.Remove(e.Key)
		}
	}
}

// EvictResolution removes every entry at a resolution level.
func (c *ClientCache) EvictResolution(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.snapshotEntriesLocked() {
		if e.ResolutionLevel == level {
			c.lru.Remove(e.Key)
		}
	}
}

// EvictOlderThan removes every entry last accessed before cutoff.
func (c *ClientCache) EvictOlderThan(cutoff time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.snapshotEntriesLocked() {
		if e.LastAccess.Before(cutoff) {
			c.lru.Remove(e.Key)
		}
	}
}

// Clear removes every entry.
func (c *ClientCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.byHash = make(map[string]Key)
	c.dedupRefs = make(map[Key]string)
	c.usedMemory = 0
}

// WarmUp loads entries from the configured store into memory.
func (c *ClientCache) WarmUp() error {
	if c.store == nil {
		return nil
	}
	loaded, err := c.store.Load()
	if err != nil {
		return errs.NewJPIP(errs.Internal, "", "", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range loaded {
		entryCopy := e
		c.lru.Add(e.Key, &entryCopy)
		c.usedMemory += int64(len(e.Bytes))
		if c.dedupEnabled {
			c.byHash[e.ContentHash] = e.Key
		}
	}
	return nil
}

// SaveToPersistentStorage writes every entry back to the store.
func (c *ClientCache) SaveToPersistentStorage() error {
	c.mu.Lock()
	entries := c.snapshotEntriesLocked()
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	snapshot := make(map[string]Entry, len(entries))
	for _, e := range entries {
		snapshot[storeKeyString(e.Key)] = *e
	}
	if err := c.store.Save(snapshot); err != nil {
		return errs.NewJPIP(errs.Internal, "", "", err)
	}
	return nil
}

// snapshotEntriesLocked returns every entry currently held, without
// disturbing LRU recency (Values would, if simplelru reordered on
// read; it does not, Values/Keys are non-mutating).
func (c *ClientCache) snapshotEntriesLocked() []*Entry {
	return c.lru.Values()
}

// evictIfNeeded evicts by resolution-weighted LRU score until both
// the entry-count and memory limits are satisfied (spec.md §4.6
// step 3). score = last_access_time * w(resolutionLevel); larger
// scores survive, so eviction removes the smallest scores first.
func (c *ClientCache) evictIfNeeded() {
	for c.overLimit() {
		var victim *Entry
		var victimScore float64
		found := false
		for _, e := range c.snapshotEntriesLocked() {
			if e.Pinned {
				continue
			}
			score := float64(e.LastAccess.UnixNano()) * c.weightFn(e.ResolutionLevel)
			if !found || score < victimScore {
				victim, victimScore = e, score
				found = true
			}
		}
		if !found {
			return // nothing evictable (all pinned)
		}
		c.lru.Remove(victim.Key)
	}
}

func (c *ClientCache) overLimit() bool {
	if c.entryLimit > 0 && c.lru.Len() > c.entryLimit {
		return true
	}
	if c.maxMemory > 0 && c.usedMemory > c.maxMemory {
		return true
	}
	return false
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// now is a seam so tests can control cache timestamps deterministically.
var now = time.Now
