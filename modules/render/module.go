package render

import (
	"context"

	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/profile"
	"github.com/vk/envrig/internal/registry"
)

// Module implements the registry.Plugin interface for this package. It
// provides the 'browser' environment used by UI component suites.
type Module struct{}

// Name returns the identifier profiles use in their plugins list.
func (m *Module) Name() string { return "render" }

// validateProfile warns about settings component rendering relies on.
// Rendered components come out unstyled without css processing, and the
// per-test cleanup hooks of rendering libraries only install themselves when
// globals are injected.
func validateProfile(ctx context.Context, resolved *profile.Resolved) error {
	logger := ctxlog.FromContext(ctx)
	if !resolved.CSS {
		logger.Warn("Browser profile disables css processing, rendered components will be unstyled.", "profile", resolved.Profile)
	}
	if !resolved.Globals {
		logger.Warn("Browser profile disables injected globals, automatic render cleanup will not run.", "profile", resolved.Profile)
	}
	return nil
}

// Register registers the environment provider with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterEnvironment("browser", &registry.RegisteredEnvironment{
		Description: "Simulated browser environment for rendering UI components.",
		Validate:    validateProfile,
	})
}
