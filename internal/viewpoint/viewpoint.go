// Package viewpoint supplies the position that drives chunk streaming.
package viewpoint

import (
	"sync"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewpoint is a world-space position and the streaming radius in chunks.
type Viewpoint struct {
	Position       mgl32.Vec3
	RenderDistance int
}

// Chunk returns the chunk containing the position.
func (v Viewpoint) Chunk() chunk.Coord {
	return chunk.FromWorld(v.Position)
}

// Source is read once per tick.
type Source interface {
	Viewpoint() Viewpoint
}

// Fixed is a Source that never moves.
type Fixed Viewpoint

func (f Fixed) Viewpoint() Viewpoint { return Viewpoint(f) }

// Walker moves along a constant velocity each time it is read.
type Walker struct {
	mu       sync.Mutex
	pos      mgl32.Vec3
	velocity mgl32.Vec3
	radius   int
}

// NewWalker creates a Walker at start moving by velocity blocks per read.
func NewWalker(start, velocity mgl32.Vec3, renderDistance int) *Walker {
	return &Walker{pos: start, velocity: velocity, radius: renderDistance}
}

// Viewpoint returns the current position, then advances it.
func (w *Walker) Viewpoint() Viewpoint {
	w.mu.Lock()
	defer w.mu.Unlock()
	vp := Viewpoint{Position: w.pos, RenderDistance: w.radius}
	w.pos = w.pos.Add(w.velocity)
	return vp
}

// Teleport moves the walker to pos.
func (w *Walker) Teleport(pos mgl32.Vec3) {
	w.mu.Lock()
	w.pos = pos
	w.mu.Unlock()
}
