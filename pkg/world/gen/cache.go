package gen

import (
	"sync"
	"sync/atomic"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
)

// Heightmap holds the integer surface heights of one chunk column.
// Index = x + z*16.
type Heightmap struct {
	Heights [chunk.Edge * chunk.Edge]int32
	Max     int32
}

// HeightCache shares heightmaps between chunks stacked in the same column.
//
// Population is concurrent and first-writer-wins: two tasks missing on the same
// column may both compute it, but only one result is kept and both callers get
// that one. Prune must not run while generation tasks are in flight.
type HeightCache struct {
	maps  sync.Map // chunk.Column -> *Heightmap
	maxes sync.Map // chunk.Column -> int
	size  atomic.Int64

	hits   atomic.Int64
	misses atomic.Int64
}

// NewHeightCache creates an empty cache.
func NewHeightCache() *HeightCache {
	return &HeightCache{}
}

func (c *HeightCache) heightmap(col chunk.Column, compute func(chunk.Column) *Heightmap) *Heightmap {
	if v, ok := c.maps.Load(col); ok {
		c.hits.Add(1)
		return v.(*Heightmap)
	}
	c.misses.Add(1)

	hm := compute(col)
	v, loaded := c.maps.LoadOrStore(col, hm)
	if !loaded {
		c.size.Add(1)
	}
	return v.(*Heightmap)
}

func (c *HeightCache) maxHeight(col chunk.Column, compute func(chunk.Column) int) int {
	if v, ok := c.maxes.Load(col); ok {
		return v.(int)
	}
	v, _ := c.maxes.LoadOrStore(col, compute(col))
	return v.(int)
}

// Len returns the number of cached heightmaps.
func (c *HeightCache) Len() int {
	return int(c.size.Load())
}

// Stats returns the hit and miss counters.
func (c *HeightCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Prune drops every column for which keep returns false and reports how many
// heightmaps were removed. Call only between generation phases.
func (c *HeightCache) Prune(keep func(chunk.Column) bool) int {
	removed := 0
	c.maps.Range(func(k, _ any) bool {
		col := k.(chunk.Column)
		if !keep(col) {
			if _, ok := c.maps.LoadAndDelete(col); ok {
				c.size.Add(-1)
				removed++
			}
		}
		return true
	})
	c.maxes.Range(func(k, _ any) bool {
		if col := k.(chunk.Column); !keep(col) {
			c.maxes.Delete(col)
		}
		return true
	})
	return removed
}
