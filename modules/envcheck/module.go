package envcheck

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/registry"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the identifier profiles use in their plugins list.
func (m *Module) Name() string { return "envcheck" }

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	Required           []string `rig:"required"`
	ForbidPlaceholders bool     `rig:"forbid_placeholders"`
}

// Output defines the data structure returned by the check.
type Output struct {
	Checked      int      `cty:"checked"`
	Placeholders []string `cty:"placeholders"`
}

// OnCheckEnvVars is the handler for the 'env' check's on_check event. It
// asserts against the resolved profile, not the raw process environment, so
// fallbacks count as values. Variables still carrying their declared fallback
// are reported as placeholders.
func OnCheckEnvVars(ctx context.Context, deps *checks.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("check", "env", "profile", deps.Profile)
	logger.Debug("Handler started.", "required", len(input.Required))
	defer logger.Debug("Handler finished.")

	var missing []string
	placeholders := []string{}

	for _, name := range input.Required {
		value, declared := deps.Env[name]
		if !declared || value == "" {
			missing = append(missing, name)
			continue
		}
		if fallback := deps.Fallbacks[name]; fallback != "" && value == fallback {
			placeholders = append(placeholders, name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required variables resolved empty: %s", strings.Join(missing, ", "))
	}
	if input.ForbidPlaceholders && len(placeholders) > 0 {
		return nil, fmt.Errorf("%w: variables still carry their declared fallback: %s", checks.ErrWarn, strings.Join(placeholders, ", "))
	}

	return &Output{Checked: len(input.Required), Placeholders: placeholders}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCheck("OnCheckEnvVars", &registry.RegisteredCheck{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnCheckEnvVars,
	})
}
