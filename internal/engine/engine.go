// Package engine drives the per-tick chunk pipeline: schedule, generate
// blocks, mesh, retire and publish.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/OCharnyshevich/voxelstream/internal/stream/handoff"
	"github.com/OCharnyshevich/voxelstream/internal/stream/registry"
	"github.com/OCharnyshevich/voxelstream/internal/stream/scheduler"
	"github.com/OCharnyshevich/voxelstream/internal/viewpoint"
	"github.com/OCharnyshevich/voxelstream/pkg/world/chunk"
	"github.com/OCharnyshevich/voxelstream/pkg/world/gen"
	"github.com/OCharnyshevich/voxelstream/pkg/world/mesh"
)

// Defaults for zero Options fields.
const (
	DefaultMeshPerTick = 2
	DefaultTickRate    = 60
)

// Options configure an Engine.
type Options struct {
	MeshPerTick    int
	DespawnPerTick int
	Workers        int     // 0 means GOMAXPROCS
	TickRate       float64 // ticks per second for Run
	Strict         bool
	SkyCull        bool

	// Buffers sizes each handoff batch. Zero means room for MeshPerTick
	// worst-case chunks; smaller batches grow on demand.
	Buffers handoff.Capacity

	// OnTick, when set, is called by Run after every tick.
	OnTick func(Stats)
}

// Stats summarize one tick.
type Stats struct {
	Tick           uint64
	Center         chunk.Coord
	Moved          bool
	Spawned        int
	Despawned      int
	Generated      int
	Meshed         int
	Skipped        int
	Loaded         int
	PendingDespawn int
	CachedColumns  int
}

// Engine owns one world: its registry, scheduler, generator and handoff queue.
type Engine struct {
	id    uuid.UUID
	log   *slog.Logger
	src   viewpoint.Source
	gen   *gen.Generator
	reg   *registry.Registry
	sched *scheduler.Scheduler
	queue *handoff.Queue
	pool  pond.Pool
	opts  Options

	tick uint64

	// Chunks already reported as mesh pending without a volume.
	missingVolume map[chunk.Handle]bool
}

// New creates an Engine. Close releases its worker pool.
func New(log *slog.Logger, src viewpoint.Source, g *gen.Generator, opts Options) *Engine {
	if opts.MeshPerTick <= 0 {
		opts.MeshPerTick = DefaultMeshPerTick
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.Buffers == (handoff.Capacity{}) {
		opts.Buffers = handoff.WorstCase(opts.MeshPerTick)
	}

	id := uuid.New()
	log = log.With("world", id.String())
	reg := registry.New(log, opts.Strict)

	return &Engine{
		id:  id,
		log: log,
		src: src,
		gen: g,
		reg: reg,
		sched: scheduler.New(log, reg, scheduler.Options{
			DespawnPerTick: opts.DespawnPerTick,
			SkyCull:        opts.SkyCull,
			Heights:        g,
		}),
		queue: handoff.NewQueue(opts.Buffers),
		pool:  pond.NewPool(opts.Workers),
		opts:  opts,

		missingVolume: make(map[chunk.Handle]bool),
	}
}

// ID returns the world ID attached to every log line.
func (e *Engine) ID() uuid.UUID { return e.id }

// Registry returns the chunk registry.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Scheduler returns the streaming scheduler.
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }

// Queue returns the mesh handoff queue.
func (e *Engine) Queue() *handoff.Queue { return e.queue }

// Close stops the worker pool after in-flight tasks finish.
func (e *Engine) Close() {
	e.pool.StopAndWait()
}

// Run steps the engine at the configured tick rate until ctx is done.
// Cancellation is observed between ticks only.
func (e *Engine) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Limit(e.opts.TickRate), 1)
	e.log.Info("engine started", "tickRate", e.opts.TickRate, "workers", e.opts.Workers)

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				e.log.Info("engine stopped", "ticks", e.tick)
				return nil
			}
			return fmt.Errorf("tick limiter: %w", err)
		}
		stats, err := e.Step()
		if err != nil {
			return err
		}
		if e.opts.OnTick != nil {
			e.opts.OnTick(stats)
		}
	}
}

// Step runs one full tick on the calling goroutine.
func (e *Engine) Step() (Stats, error) {
	e.tick++
	st := Stats{Tick: e.tick}

	vp := e.src.Viewpoint()
	res, err := e.sched.Tick(vp)
	if err != nil {
		return st, fmt.Errorf("tick %d: schedule: %w", e.tick, err)
	}
	st.Center, st.Moved = res.Center, res.Moved
	st.Spawned, st.Despawned = len(res.Spawned), len(res.Despawned)
	if res.Moved {
		e.log.Debug("viewpoint chunk changed", "chunk", res.Center.String(), "spawned", st.Spawned)
	}

	if st.Generated, err = e.generateBlocks(); err != nil {
		return st, fmt.Errorf("tick %d: generate: %w", e.tick, err)
	}
	if err := e.promoteGenerated(); err != nil {
		return st, fmt.Errorf("tick %d: %w", e.tick, err)
	}
	if st.Meshed, st.Skipped, err = e.buildMeshes(); err != nil {
		return st, fmt.Errorf("tick %d: mesh: %w", e.tick, err)
	}
	if err := e.retire(); err != nil {
		return st, fmt.Errorf("tick %d: retire: %w", e.tick, err)
	}

	e.queue.Publish(e.tick)

	cols := e.sched.LoadedColumns()
	e.gen.Cache().Prune(func(c chunk.Column) bool { return cols[c] })

	st.Loaded = len(e.sched.Loaded())
	st.PendingDespawn = e.sched.PendingDespawn()
	st.CachedColumns = e.gen.Cache().Len()
	return st, nil
}

// generateBlocks fills every BlocksPending chunk in parallel, then applies the
// results on the tick goroutine.
func (e *Engine) generateBlocks() (int, error) {
	pending := e.reg.Query(registry.BlocksPending)
	if len(pending) == 0 {
		return 0, nil
	}

	coords := make([]chunk.Coord, len(pending))
	vols := make([]*chunk.Volume, len(pending))
	group := e.pool.NewGroup()
	for i, h := range pending {
		rec, ok := e.reg.Get(h)
		if !ok {
			continue
		}
		coords[i] = rec.Coord
		group.Submit(func() {
			vols[i] = e.gen.Generate(coords[i])
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}

	n := 0
	for i, h := range pending {
		if vols[i] == nil {
			continue
		}
		if err := e.reg.SetVolume(h, vols[i]); err != nil {
			return n, err
		}
		if err := e.reg.Transition(h, registry.BlocksGenerated); err != nil {
			return n, err
		}
		e.log.Debug("generated chunk", "chunk", coords[i].String(), "solid", vols[i].CountSolid())
		n++
	}
	return n, nil
}

// promoteGenerated is the barrier between block and mesh phases.
func (e *Engine) promoteGenerated() error {
	for _, h := range e.reg.Query(registry.BlocksGenerated) {
		if err := e.reg.Transition(h, registry.MeshPending); err != nil {
			return err
		}
	}
	return nil
}

type meshJob struct {
	handle  chunk.Handle
	coord   chunk.Coord
	vol     *chunk.Volume
	slice   mesh.Slice
	scratch *mesh.Scratch
	err     error
}

// buildMeshes extracts up to MeshPerTick MeshPending chunks into the back
// batch. Reservations that overflow are retried after the barrier.
func (e *Engine) buildMeshes() (meshed, skipped int, err error) {
	jobs := e.selectMeshJobs(&skipped)
	if len(jobs) == 0 {
		return 0, skipped, nil
	}

	back := e.queue.Back()
	group := e.pool.NewGroup()
	for i := range jobs {
		j := &jobs[i]
		group.Submit(func() {
			j.scratch = mesh.GetScratch()
			j.slice, j.err = mesh.Extract(j.handle, j.coord, j.vol, back.Buffers, j.scratch)
		})
	}
	if err := group.Wait(); err != nil {
		return 0, skipped, err
	}

	for i := range jobs {
		j := &jobs[i]
		if errors.Is(j.err, mesh.ErrCapacity) {
			back.Buffers.EnsureCapacity(len(j.scratch.Vertices), len(j.scratch.Triangles), len(j.scratch.UVs))
			j.slice, j.err = mesh.Emit(j.handle, j.coord, back.Buffers, j.scratch)
			e.log.Warn("mesh buffers grown", "chunk", j.coord.String(), "buffers", back.Buffers.String())
		}
		mesh.PutScratch(j.scratch)
		j.scratch = nil
		if j.err != nil {
			return meshed, skipped, j.err
		}
	}

	for i := range jobs {
		j := &jobs[i]
		if err := e.reg.SetMesh(j.handle, j.slice); err != nil {
			return meshed, skipped, err
		}
		if err := e.reg.Transition(j.handle, registry.MeshGenerated); err != nil {
			return meshed, skipped, err
		}
		back.Add(j.slice)
		e.log.Debug("meshed chunk", "chunk", j.coord.String(), "faces", j.slice.Faces())
		meshed++
	}
	return meshed, skipped, nil
}

// selectMeshJobs picks the first MeshPerTick MeshPending records in handle
// order. Records without a volume do not count against the budget.
func (e *Engine) selectMeshJobs(skipped *int) []meshJob {
	jobs := make([]meshJob, 0, e.opts.MeshPerTick)
	for _, h := range e.reg.Query(registry.MeshPending) {
		if len(jobs) == e.opts.MeshPerTick {
			break
		}
		rec, ok := e.reg.Get(h)
		if !ok {
			continue
		}
		if rec.Volume == nil {
			if e.opts.Strict {
				panic(fmt.Sprintf("engine: chunk %v is mesh_pending without a volume", rec.Coord))
			}
			if !e.missingVolume[h] {
				e.missingVolume[h] = true
				e.log.Error("mesh pending without volume", "chunk", rec.Coord.String())
			}
			*skipped++
			continue
		}
		jobs = append(jobs, meshJob{handle: h, coord: rec.Coord, vol: rec.Volume})
	}
	return jobs
}

// retire removes DespawnQueued records and tells the consumer.
func (e *Engine) retire() error {
	back := e.queue.Back()
	for _, h := range e.reg.Query(registry.DespawnQueued) {
		rec, ok := e.reg.Get(h)
		if !ok {
			continue
		}
		if err := e.reg.Remove(h); err != nil {
			return err
		}
		delete(e.missingVolume, h)
		if rec.HasMesh {
			back.Retire(h, rec.Coord)
		}
		e.log.Debug("removed chunk", "chunk", rec.Coord.String())
	}
	return nil
}
