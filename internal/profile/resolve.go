package profile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vk/envrig/internal/config"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/dotenv"
	"github.com/vk/envrig/internal/fsutil"
)

// Source identifies where a resolved variable's value came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceDotenv      Source = "dotenv"
	SourceFallback    Source = "fallback"
)

// ResolvedVar is one environment variable after precedence resolution. The
// fallback is kept so checks can detect placeholder values leaking into a
// profile that should have real ones.
type ResolvedVar struct {
	Value    string
	Source   Source
	Fallback string
}

// Options configures resolution.
type Options struct {
	// EnvDir is the directory searched for dotenv layers. Empty disables
	// dotenv layering.
	EnvDir string
	// Mode selects the dotenv layer set; defaults to the profile name.
	Mode string
	// ProjectRoot anchors the "@" alias and relative setup paths. Empty
	// falls back to the nearest ancestor of the working directory carrying
	// a go.mod or .git marker.
	ProjectRoot string
}

// Resolved is the fully merged profile with every variable resolved. This is
// what print serializes, doctor checks, exec injects and hooks inherit.
type Resolved struct {
	Profile     string
	Environment string
	Globals     bool
	CSS         bool
	TestTimeout time.Duration
	HookTimeout time.Duration
	Setup       []string
	Aliases     map[string]string
	Env         map[string]*ResolvedVar
	Plugins     []string
	Checks      []*config.Check
}

// Resolve merges the named profile and resolves its environment variables.
// Precedence per variable: live process environment when set non-empty, then
// the layered dotenv value when present non-empty, then the profile fallback.
// A variable set-but-empty in the process environment falls through.
func Resolve(ctx context.Context, model *config.Model, name string, opts Options) (*Resolved, error) {
	logger := ctxlog.FromContext(ctx)

	eff, err := Merge(model, name)
	if err != nil {
		return nil, err
	}

	// Environment manifests contribute weakest-precedence defaults and may
	// raise timeout floors.
	if envDef, ok := model.Environments[eff.Environment]; ok {
		for key, value := range envDef.Defaults {
			if _, declared := eff.Env[key]; !declared {
				eff.Env[key] = value
			}
		}
		if envDef.MinTestTimeout > eff.TestTimeout {
			logger.Debug("Raising test timeout to environment floor.",
				"environment", eff.Environment, "floor", envDef.MinTestTimeout)
			eff.TestTimeout = envDef.MinTestTimeout
		}
		if envDef.MinHookTimeout > eff.HookTimeout {
			logger.Debug("Raising hook timeout to environment floor.",
				"environment", eff.Environment, "floor", envDef.MinHookTimeout)
			eff.HookTimeout = envDef.MinHookTimeout
		}
	}

	projectRoot := opts.ProjectRoot
	if projectRoot == "" {
		projectRoot = fsutil.FindProjectRoot(".")
	}

	var dotVars, dotOrigins map[string]string
	if opts.EnvDir != "" {
		mode := opts.Mode
		if mode == "" {
			mode = name
		}
		dotVars, dotOrigins, err = dotenv.Load(ctx, opts.EnvDir, mode)
		if err != nil {
			return nil, err
		}
	}

	resolved := &Resolved{
		Profile:     name,
		Environment: eff.Environment,
		Globals:     *eff.Globals,
		CSS:         *eff.CSS,
		TestTimeout: eff.TestTimeout,
		HookTimeout: eff.HookTimeout,
		Aliases:     anchorAliases(eff.Aliases, projectRoot),
		Env:         make(map[string]*ResolvedVar, len(eff.Env)),
		Plugins:     eff.Plugins,
		Checks:      eff.Checks,
	}

	varNames := make([]string, 0, len(eff.Env))
	for varName := range eff.Env {
		varNames = append(varNames, varName)
	}
	sort.Strings(varNames)

	for _, varName := range varNames {
		fallback := eff.Env[varName]
		rv := &ResolvedVar{Fallback: fallback}

		if value, exists := os.LookupEnv(varName); exists && value != "" {
			rv.Value, rv.Source = value, SourceEnvironment
		} else if exists {
			logger.Debug("Environment variable is set but empty, falling through.", "key", varName)
		}
		if rv.Source == "" {
			if value, ok := dotVars[varName]; ok && value != "" {
				logger.Debug("Using dotenv value.", "key", varName, "file", dotOrigins[varName])
				rv.Value, rv.Source = value, SourceDotenv
			}
		}
		if rv.Source == "" {
			rv.Value, rv.Source = fallback, SourceFallback
		}

		logger.Debug("Resolved environment variable.",
			"key", varName,
			"value", RedactValue(varName, rv.Value),
			"source", rv.Source,
		)
		resolved.Env[varName] = rv
	}

	for _, script := range eff.Setup {
		expanded := ExpandPath(script, resolved.Aliases)
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(projectRoot, expanded)
		}
		expanded = filepath.Clean(expanded)
		if rel, relErr := filepath.Rel(projectRoot, expanded); relErr == nil && strings.HasPrefix(rel, "..") {
			logger.Warn("Setup script resolves outside the project root.", "script", script, "resolved", expanded)
		}
		resolved.Setup = append(resolved.Setup, expanded)
	}

	logger.Debug("Profile resolved.",
		"profile", name,
		"environment", resolved.Environment,
		"vars", len(resolved.Env),
		"checks", len(resolved.Checks),
	)
	return resolved, nil
}
