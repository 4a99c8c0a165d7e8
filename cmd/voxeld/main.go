package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxelstream/internal/config"
	"github.com/OCharnyshevich/voxelstream/internal/engine"
	"github.com/OCharnyshevich/voxelstream/internal/viewpoint"
	"github.com/OCharnyshevich/voxelstream/pkg/world/gen"
)

func main() {
	cfg := config.DefaultConfig()

	var (
		configSrc = flag.String("config", "", "config file path or go-getter URL")
		walkX     = flag.Float64("walk-x", 0.5, "viewpoint velocity along x in blocks per tick")
		walkZ     = flag.Float64("walk-z", 0, "viewpoint velocity along z in blocks per tick")
		startY    = flag.Float64("start-y", 64, "viewpoint start height")
		reportN   = flag.Uint64("report-every", 60, "log stats every n ticks")
	)
	flag.Int64Var(&cfg.World.Seed, "seed", cfg.World.Seed, "world seed")
	flag.Float64Var(&cfg.World.BaseHeight, "base-height", cfg.World.BaseHeight, "terrain base height")
	flag.Float64Var(&cfg.World.HeightVariation, "height-variation", cfg.World.HeightVariation, "terrain height variation (0 = flat)")
	flag.Float64Var(&cfg.World.Roughness, "roughness", cfg.World.Roughness, "noise input scale")
	flag.IntVar(&cfg.World.NoiseLayers, "noise-layers", cfg.World.NoiseLayers, "noise octaves")
	flag.IntVar(&cfg.Stream.RenderDistance, "render-distance", cfg.Stream.RenderDistance, "streaming radius in chunks")
	flag.IntVar(&cfg.Stream.DespawnPerTick, "despawn-per-tick", cfg.Stream.DespawnPerTick, "despawn budget per tick")
	flag.IntVar(&cfg.Stream.MeshPerTick, "mesh-per-tick", cfg.Stream.MeshPerTick, "mesh budget per tick")
	flag.IntVar(&cfg.Stream.Workers, "workers", cfg.Stream.Workers, "worker pool size (0 = GOMAXPROCS)")
	flag.Float64Var(&cfg.Stream.TickRateHz, "tick-rate", cfg.Stream.TickRateHz, "ticks per second")
	flag.BoolVar(&cfg.Stream.Strict, "strict", cfg.Stream.Strict, "panic on lifecycle violations")
	flag.BoolVar(&cfg.Stream.SkyCull, "sky-cull", cfg.Stream.SkyCull, "skip chunks above the terrain")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *configSrc != "" {
		fromFile, err := config.LoadSource(ctx, *configSrc)
		if err != nil {
			slog.Error("load config", "source", *configSrc, "error", err)
			os.Exit(1)
		}
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		config.Merge(cfg, fromFile, explicit)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))

	start := mgl32.Vec3{0, float32(*startY), 0}
	velocity := mgl32.Vec3{float32(*walkX), 0, float32(*walkZ)}
	src := viewpoint.NewWalker(start, velocity, cfg.Stream.RenderDistance)

	var eng *engine.Engine
	eng = engine.New(log, src, gen.New(cfg.World.Params()), engine.Options{
		MeshPerTick:    cfg.Stream.MeshPerTick,
		DespawnPerTick: cfg.Stream.DespawnPerTick,
		Workers:        cfg.Stream.Workers,
		TickRate:       cfg.Stream.TickRateHz,
		Strict:         cfg.Stream.Strict,
		SkyCull:        cfg.Stream.SkyCull,
		OnTick: func(st engine.Stats) {
			consume(log, eng, st, *reportN)
		},
	})
	defer eng.Close()

	log.Info("voxeld starting", "seed", cfg.World.Seed, "renderDistance", cfg.Stream.RenderDistance)
	if err := eng.Run(ctx); err != nil {
		log.Error("engine error", "error", err)
		os.Exit(1)
	}
}

// consume drains the handoff queue the way a renderer would and reports
// periodic totals.
func consume(log *slog.Logger, eng *engine.Engine, st engine.Stats, every uint64) {
	batch, ok := eng.Queue().Drain()
	if ok {
		vertices := 0
		for _, e := range batch.Entries {
			vertices += len(e.Vertices)
		}
		if len(batch.Entries) > 0 || len(batch.Retired) > 0 {
			log.Debug("batch", "tick", batch.Tick, "meshes", len(batch.Entries), "vertices", vertices, "retired", len(batch.Retired))
		}
	}
	if every > 0 && st.Tick%every == 0 {
		log.Info("stream stats",
			"tick", st.Tick,
			"center", st.Center.String(),
			"loaded", st.Loaded,
			"pendingDespawn", st.PendingDespawn,
			"cachedColumns", st.CachedColumns,
		)
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
