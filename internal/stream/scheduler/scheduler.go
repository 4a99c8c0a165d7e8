// Package scheduler decides which chunks stream in and out around a viewpoint.
package scheduler

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/OCharnyshevich/voxelstream/internal/stream/registry"
	"github.com/OCharnyshevich/voxelstream/internal/viewpoint"
	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
)

// DefaultDespawnPerTick is the despawn budget used when Options leaves it zero.
const DefaultDespawnPerTick = 2

// HeightProbe reports the tallest terrain surface in a chunk column.
type HeightProbe interface {
	ColumnMaxHeight(col chunk.Column) int
}

// Options configure a Scheduler.
type Options struct {
	DespawnPerTick int

	// SkyCull skips spawning chunks entirely above the terrain reported by
	// Heights, keeping one chunk of headroom. Despawn is unaffected.
	SkyCull bool
	Heights HeightProbe
}

// Result describes one scheduler tick.
type Result struct {
	Center    chunk.Coord
	Moved     bool
	Spawned   []chunk.Handle
	Despawned []chunk.Handle
}

// Scheduler tracks one viewpoint's loaded chunks. It is not safe for
// concurrent use; call Tick from the tick goroutine only.
type Scheduler struct {
	log  *slog.Logger
	reg  *registry.Registry
	opts Options

	started bool
	center  chunk.Coord
	radius  int
	offsets []offset

	loaded []chunk.Coord
	queue  []chunk.Coord
	queued map[chunk.Coord]struct{}
}

// New creates a Scheduler over reg.
func New(log *slog.Logger, reg *registry.Registry, opts Options) *Scheduler {
	if opts.DespawnPerTick <= 0 {
		opts.DespawnPerTick = DefaultDespawnPerTick
	}
	if opts.SkyCull && opts.Heights == nil {
		opts.SkyCull = false
	}
	return &Scheduler{
		log:    log,
		reg:    reg,
		opts:   opts,
		radius: -1,
		queued: make(map[chunk.Coord]struct{}),
	}
}

// Tick runs spawn and despawn selection for vp. Set computation only happens
// when the viewpoint chunk or radius changed; the despawn queue drains every
// tick.
func (s *Scheduler) Tick(vp viewpoint.Viewpoint) (Result, error) {
	center := vp.Chunk()
	radius := max(vp.RenderDistance, 0)

	res := Result{Center: center}
	res.Moved = !s.started || center != s.center || radius != s.radius
	if res.Moved {
		if radius != s.radius {
			s.offsets = footprint(radius)
		}
		s.started = true
		s.center = center
		s.radius = radius

		spawned, err := s.spawn()
		if err != nil {
			return res, err
		}
		res.Spawned = spawned
		s.markOutOfRange()
	}

	despawned, err := s.drain()
	if err != nil {
		return res, err
	}
	res.Despawned = despawned
	return res, nil
}

func (s *Scheduler) spawn() ([]chunk.Handle, error) {
	var spawned []chunk.Handle
	for _, o := range s.offsets {
		c := s.center.Add(o.dx, o.dy, o.dz)
		if _, ok := s.reg.Lookup(c); ok {
			continue
		}
		if s.opts.SkyCull && s.aboveTerrain(c) {
			continue
		}

		h, _ := s.reg.Upsert(c)
		if err := s.reg.Transition(h, registry.Active); err != nil {
			return spawned, fmt.Errorf("spawn %v: %w", c, err)
		}
		s.loaded = append(s.loaded, c)
		if err := s.reg.Transition(h, registry.BlocksPending); err != nil {
			return spawned, fmt.Errorf("spawn %v: %w", c, err)
		}
		spawned = append(spawned, h)
	}
	return spawned, nil
}

func (s *Scheduler) aboveTerrain(c chunk.Coord) bool {
	top := s.opts.Heights.ColumnMaxHeight(c.Column())
	return int(c.Y)*chunk.Edge > top+chunk.Edge
}

// markOutOfRange appends loaded chunks outside the footprint to the despawn
// queue, each at most once.
func (s *Scheduler) markOutOfRange() {
	for _, c := range s.loaded {
		if contains(s.center, c, s.radius) {
			continue
		}
		if _, ok := s.queued[c]; ok {
			continue
		}
		s.queued[c] = struct{}{}
		s.queue = append(s.queue, c)
	}
}

// drain pops up to the despawn budget from the queue. Entries whose chunk is
// back in range are dropped without using budget.
func (s *Scheduler) drain() ([]chunk.Handle, error) {
	var despawned []chunk.Handle
	budget := s.opts.DespawnPerTick
	for budget > 0 && len(s.queue) > 0 {
		c := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.queued, c)

		if contains(s.center, c, s.radius) {
			continue
		}

		i := slices.Index(s.loaded, c)
		if i < 0 {
			continue
		}
		s.loaded = slices.Delete(s.loaded, i, i+1)

		h, ok := s.reg.Lookup(c)
		if !ok {
			s.log.Warn("despawn of unregistered chunk", "chunk", c.String())
			continue
		}
		if err := s.reg.Transition(h, registry.DespawnQueued); err != nil {
			return despawned, fmt.Errorf("despawn %v: %w", c, err)
		}
		despawned = append(despawned, h)
		budget--
	}
	if len(s.queue) == 0 {
		s.queue = nil
	}
	return despawned, nil
}

// Loaded returns a copy of the loaded list in spawn order.
func (s *Scheduler) Loaded() []chunk.Coord {
	return slices.Clone(s.loaded)
}

// PendingDespawn returns the number of queued despawns.
func (s *Scheduler) PendingDespawn() int {
	return len(s.queue)
}

// LoadedColumns returns the set of columns with at least one loaded chunk.
func (s *Scheduler) LoadedColumns() map[chunk.Column]bool {
	cols := make(map[chunk.Column]bool, len(s.loaded))
	for _, c := range s.loaded {
		cols[c.Column()] = true
	}
	return cols
}
