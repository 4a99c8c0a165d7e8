package mesh

import (
	"sync"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// Scratch holds the geometry of one chunk before it is committed. A Scratch
// belongs to a single task.
type Scratch struct {
	Vertices  []Vertex
	Triangles []uint32
	UVs       []mgl32.Vec2
}

// Reset empties the scratch while keeping its backing arrays.
func (s *Scratch) Reset() {
	s.Vertices = s.Vertices[:0]
	s.Triangles = s.Triangles[:0]
	s.UVs = s.UVs[:0]
}

var scratchPool = sync.Pool{
	New: func() any {
		return &Scratch{
			Vertices:  make([]Vertex, 0, 1024),
			Triangles: make([]uint32, 0, 1536),
			UVs:       make([]mgl32.Vec2, 0, 1024),
		}
	},
}

// GetScratch returns an empty Scratch from the pool.
func GetScratch() *Scratch {
	s := scratchPool.Get().(*Scratch)
	s.Reset()
	return s
}

// PutScratch returns s to the pool. s must not be used afterwards.
func PutScratch(s *Scratch) {
	if s != nil {
		scratchPool.Put(s)
	}
}

// Build fills s with the visible faces of vol. A face is visible when its
// neighbor is air or lies outside the chunk. Positions are chunk-local.
func Build(vol *chunk.Volume, s *Scratch) {
	s.Reset()
	for z := 0; z < chunk.Edge; z++ {
		for y := 0; y < chunk.Edge; y++ {
			for x := 0; x < chunk.Edge; x++ {
				b := vol.At(x, y, z)
				if !b.Solid() {
					continue
				}
				pos := mgl32.Vec3{float32(x), float32(y), float32(z)}
				for f := range faceTable {
					def := &faceTable[f]
					if vol.SolidAt(x+def.dir[0], y+def.dir[1], z+def.dir[2]) {
						continue
					}
					s.addFace(def, pos, b)
				}
			}
		}
	}
}

func (s *Scratch) addFace(def *faceDef, pos mgl32.Vec3, b chunk.BlockType) {
	start := uint32(len(s.Vertices))
	for i, c := range def.corners {
		s.Vertices = append(s.Vertices, Vertex{Position: pos.Add(c), Normal: def.normal})
		s.UVs = append(s.UVs, UV(b, i))
	}
	for _, idx := range faceIndices {
		s.Triangles = append(s.Triangles, start+idx)
	}
}
