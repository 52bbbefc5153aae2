// Package dotenv reads layered .env files for a profile without mutating the
// process environment. Later layers override earlier ones; the process
// environment itself always wins and is handled by the resolver, not here.
package dotenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/vk/envrig/internal/ctxlog"
)

// Layers returns the dotenv file names consulted for a mode, lowest
// precedence first. Mode is the profile name.
func Layers(mode string) []string {
	return []string{
		".env",
		".env.local",
		fmt.Sprintf(".env.%s", mode),
		fmt.Sprintf(".env.%s.local", mode),
	}
}

// Load reads the layered dotenv files under dir and merges them, later
// layers overriding earlier ones. Missing files are skipped. The second
// return value maps each variable to the file that supplied its final value.
func Load(ctx context.Context, dir, mode string) (map[string]string, map[string]string, error) {
	logger := ctxlog.FromContext(ctx)
	vars := make(map[string]string)
	origins := make(map[string]string)

	for _, name := range Layers(mode) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				logger.Debug("Dotenv layer not present, skipping.", "path", path)
				continue
			}
			return nil, nil, fmt.Errorf("inspecting dotenv file %q: %w", path, err)
		}

		layer, err := godotenv.Read(path)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing dotenv file %q: %w", path, err)
		}
		for key, value := range layer {
			vars[key] = value
			origins[key] = path
		}
		logger.Debug("Dotenv layer loaded.", "path", path, "vars", len(layer))
	}

	return vars, origins, nil
}
