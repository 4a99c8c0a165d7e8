// Package registry stores per-chunk lifecycle records keyed by chunk coordinate.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/OCharnyshevich/voxelstream/pkg/world/mesh"
)

var (
	// ErrInvalidTransition is returned for an edge the state machine does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrUnknownHandle is returned for a handle with no live record.
	ErrUnknownHandle = errors.New("unknown chunk handle")
)

// Record is a snapshot of one chunk's lifecycle data.
type Record struct {
	Handle  chunk.Handle
	Coord   chunk.Coord
	State   State
	Volume  *chunk.Volume // nil until blocks are generated
	Mesh    mesh.Slice
	HasMesh bool
}

// Registry maps chunk coordinates to records. Lookups and queries may run
// concurrently with each other; mutations are expected from the tick goroutine.
type Registry struct {
	log    *slog.Logger
	strict bool

	mu      sync.RWMutex
	byCoord map[chunk.Coord]chunk.Handle
	records map[chunk.Handle]*Record
	next    chunk.Handle
}

// New creates an empty registry. In strict mode illegal transitions panic
// instead of returning an error.
func New(log *slog.Logger, strict bool) *Registry {
	return &Registry{
		log:     log,
		strict:  strict,
		byCoord: make(map[chunk.Coord]chunk.Handle),
		records: make(map[chunk.Handle]*Record),
	}
}

// Strict reports whether the registry panics on illegal transitions.
func (r *Registry) Strict() bool { return r.strict }

// Upsert returns the handle for coord, creating a Spawned record if none
// exists. created is false when the record already existed.
func (r *Registry) Upsert(coord chunk.Coord) (h chunk.Handle, created bool) {
	r.mu.RLock()
	if h, ok := r.byCoord[coord]; ok {
		r.mu.RUnlock()
		return h, false
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if h, ok := r.byCoord[coord]; ok {
		return h, false
	}
	r.next++
	h = r.next
	r.byCoord[coord] = h
	r.records[h] = &Record{Handle: h, Coord: coord, State: Spawned}
	return h, true
}

// Lookup returns the handle of the record at coord.
func (r *Registry) Lookup(coord chunk.Coord) (chunk.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byCoord[coord]
	return h, ok
}

// Get returns a copy of the record for h.
func (r *Registry) Get(h chunk.Handle) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[h]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// StateOf returns the state of the chunk at coord, NotSpawned if absent.
func (r *Registry) StateOf(coord chunk.Coord) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byCoord[coord]
	if !ok {
		return NotSpawned
	}
	return r.records[h].State
}

// Transition moves h to next. Illegal edges leave the record unchanged.
func (r *Registry) Transition(h chunk.Handle, next State) error {
	r.mu.Lock()
	rec, ok := r.records[h]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("transition %d to %v: %w", h, next, ErrUnknownHandle)
	}
	from := rec.State
	if !CanTransition(from, next) {
		r.mu.Unlock()
		return r.invalid(rec.Coord, from, next)
	}
	rec.State = next
	r.mu.Unlock()
	return nil
}

func (r *Registry) invalid(coord chunk.Coord, from, to State) error {
	err := fmt.Errorf("chunk %v %v -> %v: %w", coord, from, to, ErrInvalidTransition)
	if r.strict {
		panic(err)
	}
	r.log.Warn("rejected chunk transition", "chunk", coord.String(), "from", from.String(), "to", to.String())
	return err
}

// SetVolume attaches generated blocks to a record in BlocksPending.
func (r *Registry) SetVolume(h chunk.Handle, vol *chunk.Volume) error {
	if vol == nil {
		return fmt.Errorf("set volume %d: nil volume", h)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[h]
	if !ok {
		return fmt.Errorf("set volume %d: %w", h, ErrUnknownHandle)
	}
	if rec.State != BlocksPending {
		return fmt.Errorf("set volume on %v in state %v: %w", rec.Coord, rec.State, ErrInvalidTransition)
	}
	rec.Volume = vol
	return nil
}

// SetMesh records the geometry slice of a record in MeshPending.
func (r *Registry) SetMesh(h chunk.Handle, s mesh.Slice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[h]
	if !ok {
		return fmt.Errorf("set mesh %d: %w", h, ErrUnknownHandle)
	}
	if rec.State != MeshPending {
		return fmt.Errorf("set mesh on %v in state %v: %w", rec.Coord, rec.State, ErrInvalidTransition)
	}
	rec.Mesh = s
	rec.HasMesh = true
	return nil
}

// Remove deletes a record in DespawnQueued. Its volume and mesh are released.
func (r *Registry) Remove(h chunk.Handle) error {
	r.mu.Lock()
	rec, ok := r.records[h]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("remove %d: %w", h, ErrUnknownHandle)
	}
	if rec.State != DespawnQueued {
		r.mu.Unlock()
		return r.invalid(rec.Coord, rec.State, Removed)
	}
	rec.State = Removed
	rec.Volume = nil
	rec.Mesh = mesh.Slice{}
	rec.HasMesh = false
	delete(r.records, h)
	delete(r.byCoord, rec.Coord)
	r.mu.Unlock()
	return nil
}

// Query returns the handles in state s in ascending handle (spawn) order.
func (r *Registry) Query(s State) []chunk.Handle {
	r.mu.RLock()
	out := make([]chunk.Handle, 0, 16)
	for h, rec := range r.records {
		if rec.State == s {
			out = append(out, h)
		}
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Counts returns the number of records per state.
func (r *Registry) Counts() map[State]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[State]int)
	for _, rec := range r.records {
		counts[rec.State]++
	}
	return counts
}
