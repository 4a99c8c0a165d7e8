package mesh

import "github.com/go-gl/mathgl/mgl32"

// Face is one of the six axis-aligned block faces.
type Face uint8

const (
	Up    Face = iota // +Y
	Down              // -Y
	South             // +Z
	North             // -Z
	West              // -X
	East              // +X

	faceCount = 6
)

const (
	cornersPerFace = 4
	indicesPerFace = 6

	// Worst case per block is all six faces exposed.
	maxVerticesPerBlock = faceCount * cornersPerFace
	maxIndicesPerBlock  = faceCount * indicesPerFace
)

var faceNames = [faceCount]string{"up", "down", "south", "north", "west", "east"}

func (f Face) String() string {
	if int(f) < faceCount {
		return faceNames[f]
	}
	return "unknown"
}

type faceDef struct {
	dir     [3]int
	normal  mgl32.Vec3
	corners [cornersPerFace]mgl32.Vec3
}

// faceTable lists corner offsets so that triangles (0,2,1) and (1,2,3) wind
// consistently for every face.
var faceTable = [faceCount]faceDef{
	Up: {
		dir:     [3]int{0, 1, 0},
		normal:  mgl32.Vec3{0, 1, 0},
		corners: [4]mgl32.Vec3{{0, 1, 0}, {1, 1, 0}, {0, 1, 1}, {1, 1, 1}},
	},
	Down: {
		dir:     [3]int{0, -1, 0},
		normal:  mgl32.Vec3{0, -1, 0},
		corners: [4]mgl32.Vec3{{1, 0, 0}, {0, 0, 0}, {1, 0, 1}, {0, 0, 1}},
	},
	South: {
		dir:     [3]int{0, 0, 1},
		normal:  mgl32.Vec3{0, 0, 1},
		corners: [4]mgl32.Vec3{{1, 0, 1}, {0, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	},
	North: {
		dir:     [3]int{0, 0, -1},
		normal:  mgl32.Vec3{0, 0, -1},
		corners: [4]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	},
	West: {
		dir:     [3]int{-1, 0, 0},
		normal:  mgl32.Vec3{-1, 0, 0},
		corners: [4]mgl32.Vec3{{0, 0, 1}, {0, 0, 0}, {0, 1, 1}, {0, 1, 0}},
	},
	East: {
		dir:     [3]int{1, 0, 0},
		normal:  mgl32.Vec3{1, 0, 0},
		corners: [4]mgl32.Vec3{{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1}},
	},
}

// faceIndices are the two triangles of a quad, relative to its first corner.
var faceIndices = [indicesPerFace]uint32{0, 2, 1, 1, 2, 3}

// Normal returns the outward unit normal of f.
func (f Face) Normal() mgl32.Vec3 {
	return faceTable[f].normal
}
