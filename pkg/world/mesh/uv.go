package mesh

import (
	"fmt"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/go-gl/mathgl/mgl32"
)

// The texture atlas is a single horizontal strip with one tile per block type.
const tileWidth = float32(1) / float32(chunk.BlockTypeCount)

// UV returns the atlas coordinate of a face corner for block type t.
// Corners are 0:(0,0) 1:(w,0) 2:(0,1) 3:(w,1) relative to the tile origin.
func UV(t chunk.BlockType, corner int) mgl32.Vec2 {
	if int(t) >= chunk.BlockTypeCount {
		panic(fmt.Sprintf("mesh: block type %d out of atlas range", t))
	}
	origin := mgl32.Vec2{float32(t) * tileWidth, 0}
	switch corner {
	case 0:
		return origin
	case 1:
		return origin.Add(mgl32.Vec2{tileWidth, 0})
	case 2:
		return origin.Add(mgl32.Vec2{0, 1})
	case 3:
		return origin.Add(mgl32.Vec2{tileWidth, 1})
	}
	panic(fmt.Sprintf("mesh: corner %d out of range", corner))
}
