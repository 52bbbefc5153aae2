package nodeenv

import (
	"context"

	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/profile"
	"github.com/vk/envrig/internal/registry"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the identifier profiles use in their plugins list.
func (m *Module) Name() string { return "nodeenv" }

// validateProfile flags settings that have no effect outside a browser.
func validateProfile(ctx context.Context, resolved *profile.Resolved) error {
	if resolved.CSS {
		ctxlog.FromContext(ctx).Warn("Profile enables css processing, which has no effect in the node environment.", "profile", resolved.Profile)
	}
	return nil
}

// Register registers the environment provider with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterEnvironment("node", &registry.RegisteredEnvironment{
		Description: "Plain server-side environment without a simulated DOM.",
		Validate:    validateProfile,
	})
}
