package scheduler

import (
	"cmp"
	"slices"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
)

// offset is a chunk delta from the viewpoint chunk.
type offset struct{ dx, dy, dz int32 }

func (o offset) dist2() int32 { return o.dx*o.dx + o.dy*o.dy + o.dz*o.dz }

// inFootprint reports whether delta (dx, dy, dz) lies in the streaming volume
// of radius r: a vertical cylinder of radius r, r chunks up and down.
func inFootprint(dx, dy, dz, r int32) bool {
	return dx*dx+dz*dz <= r*r && dy >= -r && dy <= r
}

// footprint returns every offset within radius r ordered near to far, ties
// broken by x, y, z.
func footprint(r int) []offset {
	if r < 0 {
		r = 0
	}
	rr := int32(r)
	out := make([]offset, 0, (2*r+1)*(2*r+1)*(2*r+1))
	for dx := -rr; dx <= rr; dx++ {
		for dy := -rr; dy <= rr; dy++ {
			for dz := -rr; dz <= rr; dz++ {
				if inFootprint(dx, dy, dz, rr) {
					out = append(out, offset{dx, dy, dz})
				}
			}
		}
	}
	slices.SortFunc(out, func(a, b offset) int {
		return cmp.Or(
			cmp.Compare(a.dist2(), b.dist2()),
			cmp.Compare(a.dx, b.dx),
			cmp.Compare(a.dy, b.dy),
			cmp.Compare(a.dz, b.dz),
		)
	})
	return out
}

func contains(center, c chunk.Coord, r int) bool {
	return inFootprint(c.X-center.X, c.Y-center.Y, c.Z-center.Z, int32(r))
}
