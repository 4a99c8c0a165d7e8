package chunk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFromWorldFloorsNegative(t *testing.T) {
	tests := []struct {
		pos  mgl32.Vec3
		want Coord
	}{
		{mgl32.Vec3{0, 0, 0}, Coord{0, 0, 0}},
		{mgl32.Vec3{15.9, 15.9, 15.9}, Coord{0, 0, 0}},
		{mgl32.Vec3{16, 32, 48}, Coord{1, 2, 3}},
		{mgl32.Vec3{-0.1, -16, -16.5}, Coord{-1, -1, -2}},
		{mgl32.Vec3{80, 8, 8}, Coord{5, 0, 0}},
	}
	for _, tt := range tests {
		if got := FromWorld(tt.pos); got != tt.want {
			t.Errorf("FromWorld(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestIndexLayout(t *testing.T) {
	if got := Index(1, 0, 0); got != 1 {
		t.Errorf("Index(1,0,0) = %d, want 1", got)
	}
	if got := Index(0, 1, 0); got != Edge {
		t.Errorf("Index(0,1,0) = %d, want %d", got, Edge)
	}
	if got := Index(0, 0, 1); got != Edge*Edge {
		t.Errorf("Index(0,0,1) = %d, want %d", got, Edge*Edge)
	}
	if got := Index(Edge-1, Edge-1, Edge-1); got != Size-1 {
		t.Errorf("Index(max) = %d, want %d", got, Size-1)
	}
}

func TestVolumeSolidAtOutOfBounds(t *testing.T) {
	var v Volume
	for i := range v {
		v[i] = Stone
	}
	if v.SolidAt(-1, 0, 0) || v.SolidAt(0, Edge, 0) || v.SolidAt(0, 0, Edge) {
		t.Error("out-of-bounds positions should not be solid")
	}
	if !v.SolidAt(0, 0, 0) {
		t.Error("in-bounds stone should be solid")
	}
	if got := v.CountSolid(); got != Size {
		t.Errorf("CountSolid() = %d, want %d", got, Size)
	}
}

func TestCoordOrigin(t *testing.T) {
	c := Coord{X: -1, Y: 2, Z: 3}
	want := mgl32.Vec3{-16, 32, 48}
	if got := c.Origin(); got != want {
		t.Errorf("Origin() = %v, want %v", got, want)
	}
	if got := c.Column(); got != (Column{X: -1, Z: 3}) {
		t.Errorf("Column() = %v", got)
	}
}

func TestBlockTypeString(t *testing.T) {
	if Grass.String() != "grass" || BlockType(200).String() != "unknown" {
		t.Errorf("unexpected names: %q %q", Grass.String(), BlockType(200).String())
	}
	if Air.Solid() || !Dirt.Solid() {
		t.Error("only air is non-solid")
	}
}
