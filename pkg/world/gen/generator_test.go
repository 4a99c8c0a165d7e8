package gen

import (
	"sync"
	"testing"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
)

func TestGeneratorDeterministic(t *testing.T) {
	g1 := New(DefaultParams())
	g2 := New(DefaultParams())

	for _, c := range []chunk.Coord{{X: 0, Y: 3, Z: 0}, {X: -2, Y: 2, Z: 5}, {X: 7, Y: 4, Z: -9}} {
		if *g1.Generate(c) != *g2.Generate(c) {
			t.Errorf("Generate(%v) differs between identical generators", c)
		}
	}
}

func TestGeneratorDifferentSeeds(t *testing.T) {
	p1 := DefaultParams()
	p2 := DefaultParams()
	p2.Seed = 12345

	g1, g2 := New(p1), New(p2)
	different := false
	for x := 0; x < 64 && !different; x++ {
		if g1.HeightAt(x, 0) != g2.HeightAt(x, 0) {
			different = true
		}
	}
	if !different {
		t.Error("different seeds should produce different terrain")
	}
}

func TestHeightWithinBounds(t *testing.T) {
	p := DefaultParams()
	g := New(p)
	for x := -100; x < 100; x += 7 {
		for z := -100; z < 100; z += 11 {
			h := g.Height(x, z)
			if h < p.BaseHeight || h > p.BaseHeight+p.HeightVariation {
				t.Fatalf("Height(%d,%d) = %v, want [%v,%v]", x, z, h, p.BaseHeight, p.BaseHeight+p.HeightVariation)
			}
		}
	}
}

func TestBlockAtBands(t *testing.T) {
	const h = 20
	tests := []struct {
		y    int
		want chunk.BlockType
	}{
		{25, chunk.Air},
		{20, chunk.Air},
		{19, chunk.Grass},
		{18, chunk.Dirt},
		{16, chunk.Dirt},
		{15, chunk.Stone},
		{-40, chunk.Stone},
	}
	for _, tt := range tests {
		if got := BlockAt(tt.y, h); got != tt.want {
			t.Errorf("BlockAt(%d, %d) = %v, want %v", tt.y, h, got, tt.want)
		}
	}
}

func TestFlatWorldAcrossStackedChunks(t *testing.T) {
	// Surface at 16: chunk y=0 holds grass at its top layer, chunk y=1 is empty.
	g := New(FlatParams(7, 16))

	lower := g.Generate(chunk.Coord{X: 3, Y: 0, Z: -2})
	upper := g.Generate(chunk.Coord{X: 3, Y: 1, Z: -2})

	for x := 0; x < chunk.Edge; x++ {
		for z := 0; z < chunk.Edge; z++ {
			if got := lower.At(x, 15, z); got != chunk.Grass {
				t.Fatalf("lower (%d,15,%d) = %v, want grass", x, z, got)
			}
			for y := 12; y <= 14; y++ {
				if got := lower.At(x, y, z); got != chunk.Dirt {
					t.Fatalf("lower (%d,%d,%d) = %v, want dirt", x, y, z, got)
				}
			}
			if got := lower.At(x, 11, z); got != chunk.Stone {
				t.Fatalf("lower (%d,11,%d) = %v, want stone", x, z, got)
			}
		}
	}
	if n := upper.CountSolid(); n != 0 {
		t.Errorf("upper chunk has %d solid blocks, want 0", n)
	}
	if n := lower.CountSolid(); n != chunk.Size {
		t.Errorf("lower chunk has %d solid blocks, want %d", n, chunk.Size)
	}
}

func TestHeightmapSharedAcrossColumn(t *testing.T) {
	g := New(DefaultParams())
	col := chunk.Column{X: 1, Z: 1}

	a := g.Heightmap(col)
	b := g.Heightmap(col)
	if a != b {
		t.Error("second lookup should return the cached heightmap")
	}
	if g.Cache().Len() != 1 {
		t.Errorf("cache Len = %d, want 1", g.Cache().Len())
	}
	hits, misses := g.Cache().Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses, want 1, 1", hits, misses)
	}
}

func TestHeightCacheConcurrentPopulation(t *testing.T) {
	g := New(DefaultParams())
	col := chunk.Column{X: -4, Z: 9}

	const workers = 16
	results := make([]*Heightmap, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = g.Heightmap(col)
		}()
	}
	wg.Wait()

	for i, hm := range results {
		if hm != results[0] {
			t.Fatalf("worker %d got a different heightmap instance", i)
		}
	}
	if g.Cache().Len() != 1 {
		t.Errorf("cache Len = %d, want 1", g.Cache().Len())
	}
}

func TestHeightCachePrune(t *testing.T) {
	g := New(DefaultParams())
	for x := int32(0); x < 4; x++ {
		g.Heightmap(chunk.Column{X: x})
		g.ColumnMaxHeight(chunk.Column{X: x})
	}

	removed := g.Cache().Prune(func(c chunk.Column) bool { return c.X < 2 })
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}
	if g.Cache().Len() != 2 {
		t.Errorf("cache Len = %d, want 2", g.Cache().Len())
	}
}

func TestColumnMaxHeight(t *testing.T) {
	g := New(FlatParams(0, 40))
	if got := g.ColumnMaxHeight(chunk.Column{X: 5, Z: -5}); got != 40 {
		t.Errorf("ColumnMaxHeight = %d, want 40", got)
	}

	g = New(DefaultParams())
	col := chunk.Column{X: 2, Z: 3}
	m := g.ColumnMaxHeight(col)
	if got := g.HeightAt(int(col.X)*chunk.Edge, int(col.Z)*chunk.Edge); got > m {
		t.Errorf("corner sample %d exceeds max %d", got, m)
	}
}
