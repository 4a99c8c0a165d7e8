package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	data := "world:\n  seed: 42\n  height_variation: 0\nstream:\n  render_distance: 6\n  sky_cull: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := DefaultConfig()
	if cfg.World.Seed != 42 || cfg.World.HeightVariation != 0 {
		t.Errorf("world = %+v", cfg.World)
	}
	if cfg.Stream.RenderDistance != 6 || !cfg.Stream.SkyCull {
		t.Errorf("stream = %+v", cfg.Stream)
	}
	if cfg.World.BaseHeight != def.World.BaseHeight || cfg.Stream.MeshPerTick != def.Stream.MeshPerTick {
		t.Error("missing keys should keep defaults")
	}
	if p := cfg.World.Params(); p.Seed != 42 || p.NoiseLayers != def.World.NoiseLayers {
		t.Errorf("Params() = %+v", p)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("world: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"noise layers", func(c *Config) { c.World.NoiseLayers = 0 }},
		{"roughness", func(c *Config) { c.World.Roughness = 0 }},
		{"variation", func(c *Config) { c.World.HeightVariation = -1 }},
		{"render distance", func(c *Config) { c.Stream.RenderDistance = -1 }},
		{"render distance too large", func(c *Config) { c.Stream.RenderDistance = MaxRenderDistance + 1 }},
		{"render distance overflow", func(c *Config) { c.Stream.RenderDistance = 1 << 20 }},
		{"despawn budget", func(c *Config) { c.Stream.DespawnPerTick = 0 }},
		{"mesh budget", func(c *Config) { c.Stream.MeshPerTick = 0 }},
		{"workers", func(c *Config) { c.Stream.Workers = -2 }},
		{"tick rate", func(c *Config) { c.Stream.TickRateHz = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateAcceptsMaxRenderDistance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Stream.RenderDistance = MaxRenderDistance
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMergeRespectsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.World.Seed = 7
	cfg.Stream.RenderDistance = 2

	fromFile := DefaultConfig()
	fromFile.World.Seed = 99
	fromFile.Stream.RenderDistance = 9
	fromFile.Stream.Strict = true

	Merge(cfg, fromFile, map[string]bool{"seed": true})

	if cfg.World.Seed != 7 {
		t.Errorf("explicit seed overwritten: %d", cfg.World.Seed)
	}
	if cfg.Stream.RenderDistance != 9 || !cfg.Stream.Strict {
		t.Errorf("file values not applied: %+v", cfg.Stream)
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"presets/hills.yaml":                       false,
		"/etc/voxelstream.yaml":                    false,
		"https://example.com/hills.yaml":           true,
		"git::https://example.com/repo.git//a.yml": true,
	}
	for src, want := range tests {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestFetchLocalFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "preset.yaml")
	if err := os.WriteFile(src, []byte("world:\n  seed: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out", "copy.yaml")

	if err := Fetch(context.Background(), "file::"+src, dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	cfg, err := Load(dst)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Seed != 5 {
		t.Errorf("seed = %d, want 5", cfg.World.Seed)
	}
}
