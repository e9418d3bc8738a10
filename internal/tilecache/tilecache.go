// Package tilecache implements a per-session, per-image bounded LRU over
// fixed-size 2-D tiles, following the worker pool's concurrency idiom and
// two well-known cache patterns: a container/list-backed LRU and
// reference-counted eviction.
package tilecache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/cartacore/internal/loader"
)

// TileSize is the fixed edge length of a cached tile.
const TileSize = 256

// Key identifies a tile by its origin; origins are always multiples of
// TileSize within the image extent, but the cache does not enforce this —
// it is the caller's responsibility (scenario wiring computes valid keys).
type Key struct {
	OriginX, OriginY int32
}

// Tile is a TileSize x TileSize buffer of float32 samples, reference
// counted so it can be shared with any number of in-flight readers and
// freed only once evicted AND unreferenced. Under Go's garbage collector
// the refcount is advisory rather than load-bearing: Release never
// triggers an explicit free, it only documents and lets callers assert on
// the point at which a tile truly has no outstanding readers.
type Tile struct {
	Data []float32 // len == TileSize*TileSize, row-major

	refs int32
}

// Retain increments the reader refcount. Callers that hand a *Tile to
// another goroutine (e.g. a parallel encode step) must Retain first.
func (t *Tile) Retain() { atomic.AddInt32(&t.refs, 1) }

// Release decrements the reader refcount. It is safe, and required, to call
// exactly once per Retain (including the implicit retain a caller receives
// from Get/Peek).
func (t *Tile) Release() { atomic.AddInt32(&t.refs, -1) }

func newTile() *Tile {
	return &Tile{Data: make([]float32, TileSize*TileSize), refs: 1}
}

type entry struct {
	key Key
	tile *Tile
	elem *list.Element
}

// Cache is a bounded LRU of tiles at a single, currently-bound (channel,
// stokes) plane. One mutex guards the map and recency list together
// ("the map and the recency list are kept in lock-step under a
// single mutex"); a separate image mutex serializes FileLoader.GetSlice
// calls, since only one may be in flight per file.
type Cache struct {
	capacity int

	mu sync.Mutex
	entries map[Key]*entry
	lru *list.List // front = MRU, back = LRU

	imageMu sync.Mutex

	planeMu sync.Mutex
	channel int
	stokes int

	loader loader.FileLoader
}

// New creates a Cache bound to (channel, stokes) with the given capacity.
// capacity == 0 is rejected rather than silently clamped to 1.
func New(l loader.FileLoader, capacity, channel, stokes int) (*Cache, error) {
	if capacity <= 0 {
		return nil, errCapacity
	}
	return &Cache{
		capacity: capacity,
		entries: make(map[Key]*entry, capacity),
		lru: list.New(),
		loader: l,
		channel: channel,
		stokes: stokes,
	}, nil
}

// Peek returns the tile for key iff it is already resident, without
// loading and without mutating recency. The returned tile is Retain'd; the
// caller must Release it.
func (c *Cache) Peek(key Key) (*Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peekLocked(key)
}

// peekLocked assumes c.mu is held; used both by the exported Peek and by
// GetMultiple while it holds the lock to partition hits/misses.
func (c *Cache) peekLocked(key Key) (*Tile, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e.tile.Retain()
	return e.tile, true
}

// Get returns the tile for key, loading it via the cache's FileLoader on a
// miss. On miss, if the cache is at capacity the LRU entry is evicted
// first; the loaded tile becomes MRU. The returned tile is Retain'd; the
// caller must Release it.
func (c *Cache) Get(ctx context.Context, key Key) (*Tile, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.lru.MoveToFront(e.elem)
		e.tile.Retain()
		c.mu.Unlock()
		return e.tile, nil
	}
	c.mu.Unlock()

	return c.loadAndInsert(ctx, key)
}

// GetMultiple separates keys into hits and misses under a single lock
// acquisition, reads hits immediately (they are already resident, no I/O),
// and loads misses serially under the image mutex. out receives one entry
// per requested key; every returned *Tile is Retain'd and must be Released
// by the caller.
func (c *Cache) GetMultiple(ctx context.Context, keys []Key, out map[Key]*Tile) error {
	var misses []Key

	c.mu.Lock()
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			c.lru.MoveToFront(e.elem)
			e.tile.Retain()
			out[k] = e.tile
		} else {
			misses = append(misses, k)
		}
	}
	c.mu.Unlock()

	for _, k := range misses {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		t, err := c.loadAndInsert(ctx, k)
		if err != nil {
			return err
		}
		out[k] = t
	}
	return nil
}

// loadAndInsert performs the miss path: acquire the image mutex, call
// GetSlice, then atomically evict-if-full and insert under the cache lock.
func (c *Cache) loadAndInsert(ctx context.Context, key Key) (*Tile, error) {
	c.imageMu.Lock()
	channel, stokes := c.currentPlane()
	t := newTile()
	err := c.loader.GetSlice(ctx, sliceFor(key, channel, stokes), t.Data)
	c.imageMu.Unlock()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have inserted the same key while we were
	// loading (e.g. two concurrent GetMultiple calls racing the same
	// miss); prefer the already-resident tile to avoid a duplicate.
	if e, ok := c.entries[key]; ok {
		c.lru.MoveToFront(e.elem)
		e.tile.Retain()
		return e.tile, nil
	}

	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}

	elem := c.lru.PushFront(key)
	c.entries[key] = &entry{key: key, tile: t, elem: elem}
	t.Retain() // one ref for the cache's own bookkeeping slot
	return t, nil
}

// evictLocked removes the LRU entry. Must be called with c.mu held. The
// evicted tile's cache-held reference is released; it remains valid to any
// reader still holding a Retain from a prior Get/Peek/GetMultiple.
func (c *Cache) evictLocked() {
	back := c.lru.Back()
	if back == nil {
		return
	}
	key := back.Value.(Key)
	e := c.entries[key]
	c.lru.Remove(back)
	delete(c.entries, key)
	e.tile.Release()
}

// Reset atomically clears all entries and rebinds the cache to a new
// (channel, stokes) plane. Tiles shared via prior Get/Peek calls remain
// valid until their last reader releases them.
func (c *Cache) Reset(channel, stokes int) {
	c.mu.Lock()
	for _, e := range c.entries {
		e.tile.Release()
	}
	c.entries = make(map[Key]*entry, c.capacity)
	c.lru.Init()
	c.mu.Unlock()

	c.planeMu.Lock()
	c.channel = channel
	c.stokes = stokes
	c.planeMu.Unlock()
}

func (c *Cache) currentPlane() (int, int) {
	c.planeMu.Lock()
	defer c.planeMu.Unlock()
	return c.channel, c.stokes
}

// Len returns the current number of resident tiles (for tests/metrics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func sliceFor(key Key, channel, stokes int) loader.Slicer {
	return loader.Slicer{
		Channel: channel,
		Stokes: stokes,
		OriginX: key.OriginX,
		OriginY: key.OriginY,
		Width: TileSize,
		Height: TileSize,
	}
}
