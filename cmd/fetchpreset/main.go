package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/voxelstream/internal/config"
)

func main() {
	var (
		src = flag.String("src", "", "preset address (path, URL or go-getter string)")
		out = flag.String("o", "./presets/world.yaml", "output file path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *src == "" {
		log.Error("preset source required")
		os.Exit(2)
	}
	if *out == "" {
		log.Error("output file path required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("start downloading preset", "src", *src, "dst", *out)

	// git::https://example.com/presets.git//hills.yaml
	if err := config.Fetch(ctx, *src, *out); err != nil {
		log.Error("fetch preset", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*out)
	if err != nil {
		log.Error("parse preset", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("preset rejected", "error", err)
		os.Exit(1)
	}

	log.Info("done downloading preset", "dst", *out, "seed", cfg.World.Seed)
}
