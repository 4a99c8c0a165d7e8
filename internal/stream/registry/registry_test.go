package registry

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/OCharnyshevich/voxelstream/pkg/world/mesh"
)

func newTestRegistry(strict bool) *Registry {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), strict)
}

func advance(t *testing.T, r *Registry, h chunk.Handle, to State) {
	t.Helper()
	for s := mustGet(t, r, h).State + 1; s <= to; s++ {
		if err := r.Transition(h, s); err != nil {
			t.Fatalf("Transition to %v: %v", s, err)
		}
	}
}

func mustGet(t *testing.T, r *Registry, h chunk.Handle) Record {
	t.Helper()
	rec, ok := r.Get(h)
	if !ok {
		t.Fatalf("no record for handle %d", h)
	}
	return rec
}

func TestUpsertIdempotent(t *testing.T) {
	r := newTestRegistry(false)
	c := chunk.Coord{X: 1, Y: 2, Z: 3}

	h1, created := r.Upsert(c)
	if !created || h1 == 0 {
		t.Fatalf("first Upsert = (%d, %v)", h1, created)
	}
	h2, created := r.Upsert(c)
	if created || h2 != h1 {
		t.Errorf("second Upsert = (%d, %v), want (%d, false)", h2, created, h1)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	if got := r.StateOf(c); got != Spawned {
		t.Errorf("StateOf = %v, want spawned", got)
	}
	if got := r.StateOf(chunk.Coord{X: 9}); got != NotSpawned {
		t.Errorf("StateOf(absent) = %v, want not_spawned", got)
	}
}

func TestUpsertConcurrent(t *testing.T) {
	r := newTestRegistry(false)
	c := chunk.Coord{X: -5}

	var wg sync.WaitGroup
	handles := make([]chunk.Handle, 32)
	for i := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles[i], _ = r.Upsert(c)
		}()
	}
	wg.Wait()

	for _, h := range handles {
		if h != handles[0] {
			t.Fatalf("concurrent Upsert returned %d and %d", h, handles[0])
		}
	}
}

func TestTransitionFullLifecycle(t *testing.T) {
	r := newTestRegistry(true)
	h, _ := r.Upsert(chunk.Coord{})

	advance(t, r, h, MeshGenerated)
	if err := r.Transition(h, DespawnQueued); err != nil {
		t.Fatalf("Transition to despawn_queued: %v", err)
	}
	if err := r.Remove(h); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := r.Get(h); ok {
		t.Error("record still present after Remove")
	}
	if _, ok := r.Lookup(chunk.Coord{}); ok {
		t.Error("coord still indexed after Remove")
	}
}

func TestTransitionRejectsSkips(t *testing.T) {
	r := newTestRegistry(false)
	h, _ := r.Upsert(chunk.Coord{})

	tests := []State{BlocksPending, MeshGenerated, Spawned, NotSpawned, Removed}
	for _, next := range tests {
		err := r.Transition(h, next)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("spawned -> %v: err = %v, want ErrInvalidTransition", next, err)
		}
		if got := mustGet(t, r, h).State; got != Spawned {
			t.Fatalf("rejected transition mutated state to %v", got)
		}
	}
}

func TestDespawnFromAnyLiveState(t *testing.T) {
	for s := Spawned; s <= MeshGenerated; s++ {
		r := newTestRegistry(true)
		h, _ := r.Upsert(chunk.Coord{})
		advance(t, r, h, s)
		if err := r.Transition(h, DespawnQueued); err != nil {
			t.Errorf("%v -> despawn_queued: %v", s, err)
		}
	}
}

func TestTransitionStrictPanics(t *testing.T) {
	r := newTestRegistry(true)
	h, _ := r.Upsert(chunk.Coord{})

	defer func() {
		v := recover()
		err, ok := v.(error)
		if !ok || !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("recovered %v, want ErrInvalidTransition", v)
		}
	}()
	_ = r.Transition(h, MeshPending)
}

func TestTransitionUnknownHandle(t *testing.T) {
	r := newTestRegistry(true)
	if err := r.Transition(42, Active); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("err = %v, want ErrUnknownHandle", err)
	}
}

func TestRemoveRequiresDespawnQueued(t *testing.T) {
	r := newTestRegistry(false)
	h, _ := r.Upsert(chunk.Coord{})
	advance(t, r, h, Active)

	if err := r.Remove(h); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Remove(active) err = %v, want ErrInvalidTransition", err)
	}
	if r.Len() != 1 {
		t.Error("rejected Remove deleted the record")
	}
}

func TestQueryAscendingSpawnOrder(t *testing.T) {
	r := newTestRegistry(false)
	var want []chunk.Handle
	for i := int32(0); i < 10; i++ {
		h, _ := r.Upsert(chunk.Coord{X: 10 - i})
		advance(t, r, h, Active)
		want = append(want, h)
	}
	other, _ := r.Upsert(chunk.Coord{Y: 100})

	got := r.Query(Active)
	if len(got) != len(want) {
		t.Fatalf("Query returned %d handles, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("Query()[%d] = %d, want %d", i, got[i], want[i])
		}
		if got[i] == other {
			t.Fatal("Query included a record in another state")
		}
	}
	if n := r.Counts()[Spawned]; n != 1 {
		t.Errorf("Counts()[spawned] = %d, want 1", n)
	}
}

func TestSetVolumeOnlyWhilePending(t *testing.T) {
	r := newTestRegistry(false)
	h, _ := r.Upsert(chunk.Coord{})
	vol := new(chunk.Volume)

	if err := r.SetVolume(h, vol); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("SetVolume(spawned) err = %v", err)
	}
	advance(t, r, h, BlocksPending)
	if err := r.SetVolume(h, vol); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if mustGet(t, r, h).Volume != vol {
		t.Error("volume not attached")
	}
	if err := r.SetVolume(h, nil); err == nil {
		t.Error("nil volume should be rejected")
	}
}

func TestSetMeshAndRemoveReleases(t *testing.T) {
	r := newTestRegistry(true)
	h, _ := r.Upsert(chunk.Coord{})
	advance(t, r, h, BlocksPending)
	if err := r.SetVolume(h, new(chunk.Volume)); err != nil {
		t.Fatal(err)
	}
	advance(t, r, h, MeshPending)
	if err := r.SetMesh(h, mesh.Slice{Target: h, Vertices: mesh.Range{Len: 24}}); err != nil {
		t.Fatalf("SetMesh: %v", err)
	}
	advance(t, r, h, MeshGenerated)

	rec := mustGet(t, r, h)
	if !rec.HasMesh || rec.Mesh.Vertices.Len != 24 {
		t.Errorf("mesh not recorded: %+v", rec.Mesh)
	}
	if err := r.Transition(h, DespawnQueued); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove(h); err != nil {
		t.Fatal(err)
	}
}

func TestStateString(t *testing.T) {
	if MeshPending.String() != "mesh_pending" || State(99).String() != "unknown" {
		t.Errorf("unexpected names %q %q", MeshPending.String(), State(99).String())
	}
}
