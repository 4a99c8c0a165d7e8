package mesh

import (
	"fmt"
	"sync/atomic"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// Buffers are the shared geometry buffers of one batch. Concurrent writers
// claim disjoint ranges with Reserve and fill them with Commit. Capacity
// changes (EnsureCapacity, Grow, Reset) require that no writer is in flight.
type Buffers struct {
	vertices  []Vertex
	triangles []uint32
	uvs       []mgl32.Vec2

	nv, nt, nu atomic.Int64
}

// Reservation is a claim on disjoint ranges of Buffers.
type Reservation struct {
	Vertices  Range
	Triangles Range
	UVs       Range
}

// WorstCase returns the buffer sizes that can hold any n chunks.
func WorstCase(n int) (vertices, triangles, uvs int) {
	blocks := n * chunk.Size
	return blocks * maxVerticesPerBlock, blocks * maxIndicesPerBlock, blocks * maxVerticesPerBlock
}

// NewBuffers allocates buffers with the given capacities.
func NewBuffers(vertices, triangles, uvs int) *Buffers {
	return &Buffers{
		vertices:  make([]Vertex, vertices),
		triangles: make([]uint32, triangles),
		uvs:       make([]mgl32.Vec2, uvs),
	}
}

// claim advances counter by n if the result stays within capacity.
func claim(counter *atomic.Int64, capacity, n int) (Range, bool) {
	for {
		cur := counter.Load()
		next := cur + int64(n)
		if next > int64(capacity) {
			return Range{}, false
		}
		if counter.CompareAndSwap(cur, next) {
			return Range{Start: int(cur), Len: n}, true
		}
	}
}

// release undoes a claim if no later claim has been made on counter.
func release(counter *atomic.Int64, r Range) bool {
	return r.Len == 0 || counter.CompareAndSwap(int64(r.End()), int64(r.Start))
}

// Reserve claims room for nv vertices, nt triangle indices and nu UVs.
// It returns false when any buffer is full; a failed reservation writes
// nothing and rolls back the ranges it already claimed. A rollback only
// loses to a concurrent claim made past it, which leaves an unused gap.
func (b *Buffers) Reserve(nv, nt, nu int) (Reservation, bool) {
	var r Reservation
	var ok bool
	if r.Vertices, ok = claim(&b.nv, len(b.vertices), nv); !ok {
		return Reservation{}, false
	}
	if r.Triangles, ok = claim(&b.nt, len(b.triangles), nt); !ok {
		release(&b.nv, r.Vertices)
		return Reservation{}, false
	}
	if r.UVs, ok = claim(&b.nu, len(b.uvs), nu); !ok {
		release(&b.nt, r.Triangles)
		release(&b.nv, r.Vertices)
		return Reservation{}, false
	}
	return r, true
}

// Commit copies s into the reserved ranges. The reservation must have been
// made for exactly s's lengths.
func (b *Buffers) Commit(r Reservation, s *Scratch) {
	copy(b.vertices[r.Vertices.Start:r.Vertices.End()], s.Vertices)
	copy(b.triangles[r.Triangles.Start:r.Triangles.End()], s.Triangles)
	copy(b.uvs[r.UVs.Start:r.UVs.End()], s.UVs)
}

// Len returns the used length of each buffer.
func (b *Buffers) Len() (vertices, triangles, uvs int) {
	return int(b.nv.Load()), int(b.nt.Load()), int(b.nu.Load())
}

// Cap returns the capacity of each buffer.
func (b *Buffers) Cap() (vertices, triangles, uvs int) {
	return len(b.vertices), len(b.triangles), len(b.uvs)
}

// EnsureCapacity grows the buffers so that each has at least the given free room.
func (b *Buffers) EnsureCapacity(vertices, triangles, uvs int) {
	uv, ut, uu := b.Len()
	b.Grow(
		max(0, uv+vertices-len(b.vertices)),
		max(0, ut+triangles-len(b.triangles)),
		max(0, uu+uvs-len(b.uvs)),
	)
}

// Grow adds capacity to each buffer, preserving committed contents.
func (b *Buffers) Grow(vertices, triangles, uvs int) {
	if vertices > 0 {
		b.vertices = append(b.vertices, make([]Vertex, vertices)...)
	}
	if triangles > 0 {
		b.triangles = append(b.triangles, make([]uint32, triangles)...)
	}
	if uvs > 0 {
		b.uvs = append(b.uvs, make([]mgl32.Vec2, uvs)...)
	}
}

// Reset discards all reservations. Capacity is kept.
func (b *Buffers) Reset() {
	b.nv.Store(0)
	b.nt.Store(0)
	b.nu.Store(0)
}

// View returns the geometry of s. The returned slices alias the buffers and
// are valid until the next Reset or Grow.
func (b *Buffers) View(s Slice) ([]Vertex, []uint32, []mgl32.Vec2) {
	return b.vertices[s.Vertices.Start:s.Vertices.End():s.Vertices.End()],
		b.triangles[s.Triangles.Start:s.Triangles.End():s.Triangles.End()],
		b.uvs[s.UVs.Start:s.UVs.End():s.UVs.End()]
}

func (b *Buffers) String() string {
	v, t, u := b.Len()
	return fmt.Sprintf("buffers{v=%d/%d t=%d/%d uv=%d/%d}", v, len(b.vertices), t, len(b.triangles), u, len(b.uvs))
}
