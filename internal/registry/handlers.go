package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vk/envrig/internal/profile"
)

// RegisteredCheck holds the compiled Go parts of a check's lifecycle function.
// Fn is called reflectively with (ctx, *checks.Deps, input) and must return
// (output, error).
type RegisteredCheck struct {
	NewInput  func() any
	InputType reflect.Type
	Fn        any
}

// RegisterCheck registers a Go function for a check's lifecycle event.
func (r *Registry) RegisterCheck(name string, handler *RegisteredCheck) {
	if _, exists := r.CheckHandlers[name]; exists {
		panic(fmt.Sprintf("check handler with name '%s' already registered", name))
	}
	slog.Debug("Registering check handler.", "name", name)
	r.CheckHandlers[name] = handler
}

// RegisteredEnvironment holds the Go side of an environment provider. The
// manifest side (defaults, timeout floors) lives in the environment's .hcl
// manifest and is merged by the resolver.
type RegisteredEnvironment struct {
	// Description shown by `envrig environments` when the manifest has none.
	Description string
	// Validate inspects a resolved profile bound to this environment and
	// reports findings (nil func means nothing to validate).
	Validate func(ctx context.Context, resolved *profile.Resolved) error
}

// RegisterEnvironment registers an environment provider under its selector
// name (the value profiles use in their environment attribute).
func (r *Registry) RegisterEnvironment(name string, handler *RegisteredEnvironment) {
	if _, exists := r.EnvironmentHandlers[name]; exists {
		panic(fmt.Sprintf("environment provider with name '%s' already registered", name))
	}
	slog.Debug("Registering environment provider.", "name", name)
	r.EnvironmentHandlers[name] = handler
}
