package testutil

import (
	"context"
	"reflect"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/registry"
)

// NoopPlugin is a helper that satisfies the registry.Plugin interface and
// registers a single "OnCheckNoop" handler. It's useful for tests that should
// fail before execution begins but still need valid manifests that can pass
// registry validation.
type NoopPlugin struct{}

// Name implements the registry.Plugin interface.
func (p *NoopPlugin) Name() string { return "noop" }

// Register registers a single "OnCheckNoop" handler that takes no inputs and
// does nothing.
func (p *NoopPlugin) Register(r *registry.Registry) {
	r.RegisterCheck("OnCheckNoop", &registry.RegisteredCheck{
		NewInput:  func() any { return new(struct{}) },
		InputType: reflect.TypeOf(struct{}{}),
		Fn: func(ctx context.Context, deps *checks.Deps, input *struct{}) (any, error) {
			// No operation
			return nil, nil
		},
	})
}

// NoopManifest is the manifest matching NoopPlugin, for tests that load
// modules from files.
const NoopManifest = `
check "noop" {
  description = "Does nothing."
  lifecycle {
    on_check = "OnCheckNoop"
  }
}
`
