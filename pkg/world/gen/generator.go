package gen

import (
	"math"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
)

// Params configure terrain generation. They are fixed at world creation.
type Params struct {
	Seed            int64
	BaseHeight      float64
	HeightVariation float64
	Roughness       float64 // noise input scale
	NoiseLayers     int
}

// DefaultParams returns rolling hills around y=48.
func DefaultParams() Params {
	return Params{
		Seed:            0,
		BaseHeight:      48,
		HeightVariation: 64,
		Roughness:       0.02,
		NoiseLayers:     4,
	}
}

// Generator fills chunk volumes from a seeded height function.
// Generate is safe for concurrent use; the only shared state is the height cache.
type Generator struct {
	params     Params
	offX, offZ float64
	cache      *HeightCache
}

// New creates a Generator for the given params.
func New(p Params) *Generator {
	s := float64(p.Seed) * 0.1
	return &Generator{
		params: p,
		offX:   math.Sin(s) * 1000,
		offZ:   math.Cos(s) * 1000,
		cache:  NewHeightCache(),
	}
}

// Params returns the generator's world params.
func (g *Generator) Params() Params { return g.params }

// Cache returns the column height cache.
func (g *Generator) Cache() *HeightCache { return g.cache }

// Height returns the continuous terrain height at a world block column.
func (g *Generator) Height(worldX, worldZ int) float64 {
	sx := (float64(worldX) + g.offX) * g.params.Roughness
	sz := (float64(worldZ) + g.offZ) * g.params.Roughness

	n := OctaveNoise(sx, sz, g.params.NoiseLayers)
	return g.params.BaseHeight + n*g.params.HeightVariation
}

// HeightAt returns the integer surface height H at a world block column:
// blocks with y >= H are air.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	return int(math.Floor(g.Height(worldX, worldZ)))
}

// Heightmap returns the cached heightmap for a chunk column, computing it on miss.
func (g *Generator) Heightmap(col chunk.Column) *Heightmap {
	return g.cache.heightmap(col, g.computeHeightmap)
}

func (g *Generator) computeHeightmap(col chunk.Column) *Heightmap {
	hm := &Heightmap{Max: math.MinInt32}
	baseX := int(col.X) * chunk.Edge
	baseZ := int(col.Z) * chunk.Edge
	for z := 0; z < chunk.Edge; z++ {
		for x := 0; x < chunk.Edge; x++ {
			h := int32(g.HeightAt(baseX+x, baseZ+z))
			hm.Heights[x+z*chunk.Edge] = h
			if h > hm.Max {
				hm.Max = h
			}
		}
	}
	return hm
}

// ColumnMaxHeight estimates the tallest surface in a chunk column from a 3×3
// grid of samples. It is cheaper than a full heightmap and is cached separately.
func (g *Generator) ColumnMaxHeight(col chunk.Column) int {
	return g.cache.maxHeight(col, g.sampleMaxHeight)
}

func (g *Generator) sampleMaxHeight(col chunk.Column) int {
	const samples = 3
	step := chunk.Edge / (samples - 1)

	maxH := math.MinInt
	for dx := 0; dx < samples; dx++ {
		for dz := 0; dz < samples; dz++ {
			h := g.HeightAt(int(col.X)*chunk.Edge+dx*step, int(col.Z)*chunk.Edge+dz*step)
			maxH = max(maxH, h)
		}
	}
	return maxH
}

// Generate returns the filled block volume for a chunk. The result depends only
// on the params and coord; the volume is complete when returned.
func (g *Generator) Generate(coord chunk.Coord) *chunk.Volume {
	hm := g.Heightmap(coord.Column())
	vol := new(chunk.Volume)

	baseY := int(coord.Y) * chunk.Edge
	for z := 0; z < chunk.Edge; z++ {
		for x := 0; x < chunk.Edge; x++ {
			fillColumn(vol, x, z, baseY, int(hm.Heights[x+z*chunk.Edge]))
		}
	}
	return vol
}

// fillColumn assigns one block column of a chunk given its surface height.
func fillColumn(vol *chunk.Volume, x, z, baseY, height int) {
	for y := 0; y < chunk.Edge; y++ {
		vol.Set(x, y, z, BlockAt(baseY+y, height))
	}
}

// BlockAt classifies a world Y against surface height h.
func BlockAt(worldY, h int) chunk.BlockType {
	switch {
	case worldY >= h:
		return chunk.Air
	case worldY >= h-1:
		return chunk.Grass
	case worldY >= h-4:
		return chunk.Dirt
	default:
		return chunk.Stone
	}
}
