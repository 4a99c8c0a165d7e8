// Package mesh turns chunk block volumes into triangle geometry.
//
// Extraction runs in two steps: Build fills a private Scratch from a volume, and
// Commit copies that scratch into shared Buffers through an atomic reservation.
// Many extractions can run concurrently against the same Buffers.
package mesh

import (
	"errors"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrCapacity is returned when shared buffers cannot hold a reservation.
var ErrCapacity = errors.New("mesh buffers: capacity exceeded")

// Vertex is a chunk-local vertex position with its face normal.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// Range is a half-open interval [Start, Start+Len) of a buffer.
type Range struct {
	Start, Len int
}

// End returns Start+Len.
func (r Range) End() int { return r.Start + r.Len }

// Slice locates one chunk's geometry in shared Buffers. Triangle indices are
// relative to the start of the Vertices range.
type Slice struct {
	Target    chunk.Handle
	Coord     chunk.Coord
	Vertices  Range
	Triangles Range
	UVs       Range
}

// Empty reports whether the slice has no geometry.
func (s Slice) Empty() bool { return s.Vertices.Len == 0 }

// Faces returns the number of quads in the slice.
func (s Slice) Faces() int { return s.Vertices.Len / cornersPerFace }
