package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// IsRemote reports whether src needs fetching rather than reading from disk.
// Forced getters ("git::", "s3::") and URLs with a scheme are remote.
func IsRemote(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// Fetch downloads a single preset file from src to dst. src is any address
// go-getter understands, including local paths.
func Fetch(ctx context.Context, src, dst string) error {
	pwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch preset %s: %w", src, err)
	}
	return nil
}

// LoadSource loads a config from a local path, or fetches it first when src
// is remote.
func LoadSource(ctx context.Context, src string) (*Config, error) {
	if !IsRemote(src) {
		return Load(src)
	}
	dir, err := os.MkdirTemp("", "voxelstream-preset-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, "preset.yaml")
	if err := Fetch(ctx, src, dst); err != nil {
		return nil, err
	}
	return Load(dst)
}
