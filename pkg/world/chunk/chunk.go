package chunk

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Edge is the chunk edge length in blocks.
const Edge = 16

// Volume size: 16×16×16 = 4096 blocks.
const Size = Edge * Edge * Edge

// Coord identifies a chunk in chunk space. World position = Coord × Edge.
type Coord struct{ X, Y, Z int32 }

// Column identifies a vertical stack of chunks sharing one heightmap.
type Column struct{ X, Z int32 }

// Handle is an opaque registry handle. Zero is never issued.
type Handle uint64

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns c offset by (dx, dy, dz).
func (c Coord) Add(dx, dy, dz int32) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Column returns the (x, z) footprint of the chunk.
func (c Coord) Column() Column {
	return Column{X: c.X, Z: c.Z}
}

// Origin returns the world-space position of the chunk's minimum corner.
func (c Coord) Origin() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * Edge), float32(c.Y * Edge), float32(c.Z * Edge)}
}

// FromWorld returns the chunk containing a world position, using floor division
// so that negative positions map to negative chunks.
func FromWorld(pos mgl32.Vec3) Coord {
	return Coord{
		X: int32(math.Floor(float64(pos.X()) / Edge)),
		Y: int32(math.Floor(float64(pos.Y()) / Edge)),
		Z: int32(math.Floor(float64(pos.Z()) / Edge)),
	}
}

// Index returns the linear index of local (x, y, z) in a Volume.
// x, y, z must be in [0, Edge).
func Index(x, y, z int) int {
	return x + Edge*(y+Edge*z)
}

// InBounds reports whether local (x, y, z) lies inside a chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < Edge && y >= 0 && y < Edge && z >= 0 && z < Edge
}
