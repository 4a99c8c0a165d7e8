package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/voxelstream/pkg/world/gen"
)

// Config holds the streaming engine configuration.
type Config struct {
	World    WorldConfig  `yaml:"world"`
	Stream   StreamConfig `yaml:"stream"`
	LogLevel string       `yaml:"log_level"` // debug, info, warn, error
}

// WorldConfig holds terrain parameters. They are fixed for the life of a world.
type WorldConfig struct {
	Seed            int64   `yaml:"seed"`
	BaseHeight      float64 `yaml:"base_height"`
	HeightVariation float64 `yaml:"height_variation"`
	Roughness       float64 `yaml:"roughness"`
	NoiseLayers     int     `yaml:"noise_layers"`
}

// StreamConfig holds scheduling budgets.
type StreamConfig struct {
	RenderDistance int     `yaml:"render_distance"` // in chunks
	DespawnPerTick int     `yaml:"despawn_per_tick"`
	MeshPerTick    int     `yaml:"mesh_per_tick"`
	Workers        int     `yaml:"workers"` // 0 = GOMAXPROCS
	TickRateHz     float64 `yaml:"tick_rate_hz"`
	Strict         bool    `yaml:"strict"`
	SkyCull        bool    `yaml:"sky_cull"`
}

// MaxRenderDistance bounds stream.render_distance. A footprint of radius r
// holds about 2πr³ chunks.
const MaxRenderDistance = 32

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	p := gen.DefaultParams()
	return &Config{
		World: WorldConfig{
			Seed:            p.Seed,
			BaseHeight:      p.BaseHeight,
			HeightVariation: p.HeightVariation,
			Roughness:       p.Roughness,
			NoiseLayers:     p.NoiseLayers,
		},
		Stream: StreamConfig{
			RenderDistance: 4,
			DespawnPerTick: 2,
			MeshPerTick:    2,
			Workers:        0,
			TickRateHz:     60,
		},
		LogLevel: "info",
	}
}

// Params returns the generator params for the world section.
func (w WorldConfig) Params() gen.Params {
	return gen.Params{
		Seed:            w.Seed,
		BaseHeight:      w.BaseHeight,
		HeightVariation: w.HeightVariation,
		Roughness:       w.Roughness,
		NoiseLayers:     w.NoiseLayers,
	}
}

// Load reads a YAML config file. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.World.NoiseLayers < 1:
		return fmt.Errorf("world.noise_layers = %d, must be >= 1: %w", c.World.NoiseLayers, ErrInvalid)
	case c.World.Roughness <= 0:
		return fmt.Errorf("world.roughness = %v, must be > 0: %w", c.World.Roughness, ErrInvalid)
	case c.World.HeightVariation < 0:
		return fmt.Errorf("world.height_variation = %v, must be >= 0: %w", c.World.HeightVariation, ErrInvalid)
	case c.Stream.RenderDistance < 0:
		return fmt.Errorf("stream.render_distance = %d, must be >= 0: %w", c.Stream.RenderDistance, ErrInvalid)
	case c.Stream.RenderDistance > MaxRenderDistance:
		return fmt.Errorf("stream.render_distance = %d, must be <= %d: %w", c.Stream.RenderDistance, MaxRenderDistance, ErrInvalid)
	case c.Stream.DespawnPerTick < 1:
		return fmt.Errorf("stream.despawn_per_tick = %d, must be >= 1: %w", c.Stream.DespawnPerTick, ErrInvalid)
	case c.Stream.MeshPerTick < 1:
		return fmt.Errorf("stream.mesh_per_tick = %d, must be >= 1: %w", c.Stream.MeshPerTick, ErrInvalid)
	case c.Stream.Workers < 0:
		return fmt.Errorf("stream.workers = %d, must be >= 0: %w", c.Stream.Workers, ErrInvalid)
	case c.Stream.TickRateHz <= 0:
		return fmt.Errorf("stream.tick_rate_hz = %v, must be > 0: %w", c.Stream.TickRateHz, ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level = %q: %w", c.LogLevel, ErrInvalid)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.World.Seed = fromFile.World.Seed
	}
	if !explicitFlags["base-height"] {
		cfg.World.BaseHeight = fromFile.World.BaseHeight
	}
	if !explicitFlags["height-variation"] {
		cfg.World.HeightVariation = fromFile.World.HeightVariation
	}
	if !explicitFlags["roughness"] {
		cfg.World.Roughness = fromFile.World.Roughness
	}
	if !explicitFlags["noise-layers"] {
		cfg.World.NoiseLayers = fromFile.World.NoiseLayers
	}
	if !explicitFlags["render-distance"] {
		cfg.Stream.RenderDistance = fromFile.Stream.RenderDistance
	}
	if !explicitFlags["despawn-per-tick"] {
		cfg.Stream.DespawnPerTick = fromFile.Stream.DespawnPerTick
	}
	if !explicitFlags["mesh-per-tick"] {
		cfg.Stream.MeshPerTick = fromFile.Stream.MeshPerTick
	}
	if !explicitFlags["workers"] {
		cfg.Stream.Workers = fromFile.Stream.Workers
	}
	if !explicitFlags["tick-rate"] {
		cfg.Stream.TickRateHz = fromFile.Stream.TickRateHz
	}
	if !explicitFlags["strict"] {
		cfg.Stream.Strict = fromFile.Stream.Strict
	}
	if !explicitFlags["sky-cull"] {
		cfg.Stream.SkyCull = fromFile.Stream.SkyCull
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}
