package registry

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vk/envrig/internal/config"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate performs a strict parity check between manifests and Go code.
// Every check manifest must have a registered handler, every manifest input
// must match a tagged field on the handler's input struct and vice versa, and
// the manifest cty types must equal the types implied by the Go fields. All
// violations are collected and reported in one error.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for checkType, def := range r.CheckDefinitions {
		handler, ok := r.CheckHandlers[def.Lifecycle.OnCheck]
		if !ok {
			errs = append(errs, fmt.Sprintf("check '%s': manifest names handler '%s', but no such handler is registered", checkType, def.Lifecycle.OnCheck))
			continue
		}

		if handler.InputType == nil {
			if len(def.Inputs) > 0 {
				errs = append(errs, fmt.Sprintf("check '%s': manifest declares inputs, but Go handler has no input struct", checkType))
			}
			continue
		}

		manifestInputs := make(map[string]struct{})
		for name := range def.Inputs {
			manifestInputs[name] = struct{}{}
		}

		goInputs := make(map[string]reflect.StructField)
		inputType := handler.InputType
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			if !field.IsExported() {
				continue
			}
			tag := field.Tag.Get("rig")
			tagName := strings.Split(tag, ",")[0]
			if tagName != "" && tagName != "-" {
				goInputs[tagName] = field
			}
		}

		// Check for presence mismatches
		for name := range goInputs {
			if _, ok := manifestInputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("check '%s': Go struct has field for input '%s' which is not declared in manifest", checkType, name))
			}
		}
		for name := range manifestInputs {
			if _, ok := goInputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("check '%s': manifest declares input '%s' which is not found in Go struct", checkType, name))
			}
		}

		// Check for type mismatches
		for name, inputDef := range def.Inputs {
			goField, ok := goInputs[name]
			if !ok {
				continue // Already handled by presence check
			}

			manifestType := inputDef.Type
			if manifestType.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest for check has input with 'type = any', which disables static type checking. Consider using a specific type like 'string', 'number', or 'bool'.", "check", checkType, "input", name)
				continue
			}

			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("check '%s', input '%s': could not imply cty type from Go field type %s: %v", checkType, name, goField.Type, err))
				continue
			}

			if !manifestType.Equals(goFieldType) {
				errs = append(errs, fmt.Sprintf("check '%s', input '%s': type mismatch. Manifest requires '%s' but Go struct field '%s' provides type '%s'",
					checkType, name, manifestType.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// ValidateProfiles checks every loaded profile against the registry: the
// environment selector, each required plugin, and each check type must be
// registered. Violations across all profiles are reported together.
func (r *Registry) ValidateProfiles(model *config.Model) error {
	var errs []string

	for _, name := range sortedProfileNames(model) {
		p := model.Profiles[name]

		if p.Environment != "" {
			if _, ok := r.EnvironmentHandlers[p.Environment]; !ok {
				errs = append(errs, fmt.Sprintf("profile '%s': environment '%s' is not provided by any registered plugin", name, p.Environment))
			}
		}

		for _, pluginName := range p.Plugins {
			if _, ok := r.Plugins[pluginName]; !ok {
				errs = append(errs, fmt.Sprintf("profile '%s': plugin '%s' is not registered", name, pluginName))
			}
		}

		for _, check := range p.Checks {
			if _, ok := r.CheckDefinitions[check.Type]; !ok {
				errs = append(errs, fmt.Sprintf("profile '%s': check '%s' '%s' has no loaded manifest", name, check.Type, check.Name))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// sortedProfileNames keeps validation error ordering deterministic.
func sortedProfileNames(model *config.Model) []string {
	names := make([]string, 0, len(model.Profiles))
	for name := range model.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
