package mesh

import (
	"fmt"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
)

// Extract builds the mesh of vol into scratch and commits it to bufs.
// On ErrCapacity scratch still holds the built geometry; pass it to Emit
// after growing bufs instead of rebuilding.
func Extract(target chunk.Handle, coord chunk.Coord, vol *chunk.Volume, bufs *Buffers, scratch *Scratch) (Slice, error) {
	if vol == nil {
		return Slice{}, fmt.Errorf("extract %v: nil volume", coord)
	}
	Build(vol, scratch)
	return Emit(target, coord, bufs, scratch)
}

// Emit commits already built scratch geometry to bufs.
func Emit(target chunk.Handle, coord chunk.Coord, bufs *Buffers, scratch *Scratch) (Slice, error) {
	res, ok := bufs.Reserve(len(scratch.Vertices), len(scratch.Triangles), len(scratch.UVs))
	if !ok {
		return Slice{}, fmt.Errorf("extract %v: %w", coord, ErrCapacity)
	}
	bufs.Commit(res, scratch)
	return Slice{
		Target:    target,
		Coord:     coord,
		Vertices:  res.Vertices,
		Triangles: res.Triangles,
		UVs:       res.UVs,
	}, nil
}
