package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter. Paths that do
	// not exist are skipped: a missing config or env file is the concern of
	// the tooling consuming the rig, not a load failure.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the interface for format-specific data binding and type
// conversion. It bridges raw check arguments and the Go input structs of the
// registered check handlers.
type Converter interface {
	// DecodeArguments decodes raw check arguments into a handler's input
	// struct, applying manifest defaults and validating against the
	// manifest's declared types. The eval context carries the resolved env
	// map so arguments can reference `env.NAME`.
	DecodeArguments(
		ctx context.Context,
		inputStruct any,
		args map[string]hcl.Expression,
		defs map[string]*InputDefinition,
		evalCtx *hcl.EvalContext,
	) error

	// ToCtyValue converts a native Go value (such as a check's output
	// struct) into its equivalent cty.Value for uniform reporting.
	ToCtyValue(v any) (cty.Value, error)

	// ToNative converts a cty.Value back into plain Go values: numbers
	// become float64, objects map[string]any, lists []any.
	ToNative(v cty.Value) (any, error)
}
