package hclconf

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/envrig/internal/config"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/fsutil"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load discovers and parses all .hcl files under the given paths and merges
// them into a single model. Paths that do not exist are skipped with a debug
// log so that optional module directories never fail a run. The returned
// converter decodes check arguments against the manifests in the model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.NewModel()

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Debug("Config path does not exist, skipping.", "path", path)
				continue
			}
			return nil, nil, fmt.Errorf("inspecting config path %q: %w", path, err)
		}
		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, nil, fmt.Errorf("scanning config directory %q: %w", path, err)
			}
			files = append(files, found...)
			continue
		}
		files = append(files, path)
	}

	for _, file := range files {
		if err := l.loadFile(ctx, file, model); err != nil {
			return nil, nil, err
		}
	}

	logger.Debug("Configuration loaded.",
		"files", len(files),
		"profiles", len(model.Profiles),
		"checks", len(model.Checks),
		"environments", len(model.Environments),
	)
	return model, NewConverter(), nil
}

// loadFile parses one file and merges its blocks into the model, rejecting
// duplicate profile, check and environment names across files.
func (l *Loader) loadFile(ctx context.Context, path string, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing config file.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %q: %w", path, err)
	}

	hclFile, diags := l.parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return fmt.Errorf("parsing %q: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return fmt.Errorf("decoding %q: %w", path, diags)
	}

	for _, block := range root.Profiles {
		profile, err := translateProfile(block, path)
		if err != nil {
			return err
		}
		if existing, ok := model.Profiles[profile.Name]; ok {
			return fmt.Errorf("duplicate profile %q: defined in %s and %s", profile.Name, existing.SourceFile, path)
		}
		model.Profiles[profile.Name] = profile
	}

	for _, block := range root.Checks {
		def, err := translateCheckDefinition(block, path)
		if err != nil {
			return err
		}
		if _, ok := model.Checks[def.Type]; ok {
			return fmt.Errorf("duplicate check manifest %q in %s", def.Type, path)
		}
		model.Checks[def.Type] = def
	}

	for _, block := range root.Environments {
		def, err := translateEnvironmentDefinition(block, path)
		if err != nil {
			return err
		}
		if _, ok := model.Environments[def.Name]; ok {
			return fmt.Errorf("duplicate environment manifest %q in %s", def.Name, path)
		}
		model.Environments[def.Name] = def
	}

	return nil
}
