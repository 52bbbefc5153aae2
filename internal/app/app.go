package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/envrig/internal/config"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/fsutil"
	"github.com/vk/envrig/internal/profile"
	"github.com/vk/envrig/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle. Command output goes to outW, logs go to errW so that `print`
// stays machine-consumable on stdout.
type App struct {
	outW      io.Writer
	errW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	config    *config.Model
	converter config.Converter
	appConfig *Config
	loader    config.Loader
	plugins   []registry.Plugin
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Startup errors panic: configuration load failures, manifest/Go parity
// violations, and profiles referencing unregistered providers are all fatal,
// and the entrypoint recovers them into a clean exit.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader, plugins ...registry.Plugin) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(plugins) == 0 {
		plugins = corePlugins
	}

	a := &App{
		outW:      outW,
		errW:      errW,
		logger:    logger,
		appConfig: appConfig,
		loader:    loader,
		plugins:   plugins,
	}
	if err := a.load(ctx); err != nil {
		panic(err)
	}
	return a
}

// load reads configuration from the configured paths and builds a validated
// registry around it. Watch mode calls it again on change events.
func (a *App) load(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var configPaths []string
	if a.appConfig.ConfigPath != "" {
		configPaths = append(configPaths, a.appConfig.ConfigPath)
	}
	if a.appConfig.ModulesPath != "" {
		configPaths = append(configPaths, a.appConfig.ModulesPath)
	}

	cfgModel, converter, err := a.loader.Load(ctx, configPaths...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := registry.New()
	for _, plugin := range a.plugins {
		reg.Use(plugin)
	}
	logger.Debug("All Go plugins registered.", "count", len(a.plugins))

	reg.PopulateDefinitionsFromModel(cfgModel)
	logger.Debug("Registry definitions populated from config model.")

	if err := reg.Validate(ctx); err != nil {
		return err
	}
	if err := reg.ValidateProfiles(cfgModel); err != nil {
		return err
	}
	logger.Debug("Registry validation passed.")

	a.registry = reg
	a.config = cfgModel
	a.converter = converter
	return nil
}

// resolveProfile resolves the selected profile against the loaded model, the
// dotenv layers and the live process environment.
func (a *App) resolveProfile(ctx context.Context) (*profile.Resolved, error) {
	return profile.Resolve(ctx, a.config, a.appConfig.Profile, profile.Options{
		EnvDir:      a.appConfig.EnvDir,
		ProjectRoot: fsutil.FindProjectRoot(a.appConfig.ConfigPath),
	})
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.config
}
