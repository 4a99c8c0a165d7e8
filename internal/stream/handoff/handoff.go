// Package handoff passes finished chunk geometry from the tick goroutine to a
// consumer, typically a renderer.
package handoff

import (
	"sync"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/OCharnyshevich/voxelstream/pkg/world/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// Entry is the geometry of one chunk. The slices alias the batch buffers.
type Entry struct {
	Target    chunk.Handle
	Coord     chunk.Coord
	Vertices  []mesh.Vertex
	Triangles []uint32
	UVs       []mgl32.Vec2
}

// Retirement tells the consumer to drop a chunk's geometry.
type Retirement struct {
	Target chunk.Handle
	Coord  chunk.Coord
}

// Batch is the output of one tick.
type Batch struct {
	Tick    uint64
	Entries []Entry
	Retired []Retirement
	Buffers *mesh.Buffers
}

// Add appends the geometry of s, which must live in b.Buffers. Entries keep
// their data if the buffers grow later; committed ranges are only reclaimed
// by a reset.
func (b *Batch) Add(s mesh.Slice) {
	v, t, u := b.Buffers.View(s)
	b.Entries = append(b.Entries, Entry{
		Target:    s.Target,
		Coord:     s.Coord,
		Vertices:  v,
		Triangles: t,
		UVs:       u,
	})
}

// Retire records that h was removed.
func (b *Batch) Retire(h chunk.Handle, c chunk.Coord) {
	b.Retired = append(b.Retired, Retirement{Target: h, Coord: c})
}

// Empty reports whether the batch carries nothing.
func (b *Batch) Empty() bool {
	return len(b.Entries) == 0 && len(b.Retired) == 0
}

func (b *Batch) reset() {
	b.Tick = 0
	b.Entries = b.Entries[:0]
	b.Retired = b.Retired[:0]
	b.Buffers.Reset()
}

// Capacity is the initial size of each batch's buffers.
type Capacity struct {
	Vertices, Triangles, UVs int
}

// WorstCase returns a Capacity that holds any n chunks without growing.
func WorstCase(n int) Capacity {
	v, t, u := mesh.WorstCase(n)
	return Capacity{Vertices: v, Triangles: t, UVs: u}
}

// Queue hands batches from the producer to a consumer. The producer fills
// Back and calls Publish once per tick; the consumer calls Drain.
//
// A published batch waits until it is drained. While it waits, further
// ticks keep accumulating into Back, so nothing is dropped when the consumer
// falls behind. A drained batch belongs to the consumer until its next Drain.
type Queue struct {
	mu      sync.Mutex
	back    *Batch   // producer
	ready   *Batch   // published, not yet drained
	front   *Batch   // consumer
	free    []*Batch // reset before reuse
	publish uint64
}

// NewQueue creates a queue whose batches each own buffers of capacity c.
func NewQueue(c Capacity) *Queue {
	newBatch := func() *Batch {
		return &Batch{Buffers: mesh.NewBuffers(c.Vertices, c.Triangles, c.UVs)}
	}
	return &Queue{
		back: newBatch(),
		free: []*Batch{newBatch(), newBatch()},
	}
}

// Back returns the batch being produced. Only the producer may touch it.
func (q *Queue) Back() *Batch {
	return q.back
}

// Publish stamps the back batch with tick. If the previous batch was drained,
// the back batch becomes ready and a recycled batch takes its place;
// otherwise the back batch keeps accumulating and is handed over later.
func (q *Queue) Publish(tick uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.publish++
	q.back.Tick = tick
	if q.ready != nil {
		return
	}
	q.ready = q.back
	n := len(q.free) - 1
	q.back = q.free[n]
	q.free = q.free[:n]
	q.back.reset()
}

// Drain returns the oldest undelivered batch and takes back the batch from
// the previous Drain. It returns false when nothing is ready.
// Apply a batch's Entries before its Retired list: an accumulated batch may
// carry both the mesh and the retirement of one chunk.
func (q *Queue) Drain() (*Batch, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ready == nil {
		return nil, false
	}
	if q.front != nil {
		q.free = append(q.free, q.front)
	}
	q.front, q.ready = q.ready, nil
	return q.front, true
}

// Published returns the number of Publish calls.
func (q *Queue) Published() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.publish
}
