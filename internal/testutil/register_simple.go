package testutil

import "github.com/vk/envrig/internal/registry"

// SimplePlugin is a test helper for easily creating a mock plugin that
// registers a single check handler or environment provider.
type SimplePlugin struct {
	PluginName string

	CheckName string
	Check     *registry.RegisteredCheck

	EnvironmentName string
	Environment     *registry.RegisteredEnvironment
}

// Name implements the registry.Plugin interface.
func (p *SimplePlugin) Name() string {
	if p.PluginName != "" {
		return p.PluginName
	}
	return "simple"
}

// Register implements the registry.Plugin interface.
func (p *SimplePlugin) Register(r *registry.Registry) {
	if p.CheckName != "" && p.Check != nil {
		r.RegisterCheck(p.CheckName, p.Check)
	}
	if p.EnvironmentName != "" && p.Environment != nil {
		r.RegisterEnvironment(p.EnvironmentName, p.Environment)
	}
}
