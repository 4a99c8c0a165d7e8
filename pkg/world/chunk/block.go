package chunk

// BlockType is a block material. Air is the only non-solid value.
type BlockType uint8

const (
	Air BlockType = iota
	Grass
	Dirt
	Stone

	// BlockTypeCount is the number of block types; it sizes the texture atlas strip.
	BlockTypeCount = int(Stone) + 1
)

var blockNames = [BlockTypeCount]string{
	Air:   "air",
	Grass: "grass",
	Dirt:  "dirt",
	Stone: "stone",
}

func (b BlockType) String() string {
	if int(b) < BlockTypeCount {
		return blockNames[b]
	}
	return "unknown"
}

// Solid reports whether the block occludes its neighbors.
func (b BlockType) Solid() bool {
	return b != Air
}

// Volume holds the dense block data of one chunk.
// Index = x + 16*(y + 16*z), see Index.
type Volume [Size]BlockType

// At returns the block at local (x, y, z).
func (v *Volume) At(x, y, z int) BlockType {
	return v[Index(x, y, z)]
}

// Set stores a block at local (x, y, z).
func (v *Volume) Set(x, y, z int, b BlockType) {
	v[Index(x, y, z)] = b
}

// SolidAt reports whether local (x, y, z) is inside the chunk and solid.
// Out-of-bounds positions count as non-solid.
func (v *Volume) SolidAt(x, y, z int) bool {
	if !InBounds(x, y, z) {
		return false
	}
	return v[Index(x, y, z)].Solid()
}

// CountSolid returns the number of solid blocks in the volume.
func (v *Volume) CountSolid() int {
	n := 0
	for _, b := range v {
		if b.Solid() {
			n++
		}
	}
	return n
}
