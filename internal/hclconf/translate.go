package hclconf

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/envrig/internal/config"
)

// translateProfile converts a raw profile block into the model type,
// parsing duration attributes and flattening check instances.
func translateProfile(block *profileBlock, sourceFile string) (*config.Profile, error) {
	profile := &config.Profile{
		Name:        block.Name,
		Extends:     block.Extends,
		Environment: block.Environment,
		Globals:     block.Globals,
		CSS:         block.CSS,
		Setup:       block.Setup,
		Env:         block.Env,
		Aliases:     block.Aliases,
		Plugins:     block.Plugins,
		SourceFile:  sourceFile,
	}

	var err error
	if profile.TestTimeout, err = parseProfileDuration(block.Name, "test_timeout", block.TestTimeout); err != nil {
		return nil, err
	}
	if profile.HookTimeout, err = parseProfileDuration(block.Name, "hook_timeout", block.HookTimeout); err != nil {
		return nil, err
	}

	for _, raw := range block.Checks {
		check, err := translateCheck(block.Name, raw)
		if err != nil {
			return nil, err
		}
		profile.Checks = append(profile.Checks, check)
	}

	return profile, nil
}

// translateCheck converts a check instance, keeping its arguments as raw
// expressions so they can be evaluated against the resolved profile env.
func translateCheck(profileName string, block *checkBlock) (*config.Check, error) {
	check := &config.Check{
		Type:      block.Type,
		Name:      block.Name,
		Arguments: make(map[string]hcl.Expression),
	}
	if block.Arguments == nil {
		return check, nil
	}

	attrs, diags := block.Arguments.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading arguments of check %q %q in profile %q: %w", block.Type, block.Name, profileName, diags)
	}
	for name, attr := range attrs {
		check.Arguments[name] = attr.Expr
	}
	return check, nil
}

// translateCheckDefinition converts a check manifest block.
func translateCheckDefinition(block *checkDefBlock, sourceFile string) (*config.CheckDefinition, error) {
	def := &config.CheckDefinition{
		Type:        block.Type,
		Description: block.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
	}

	if block.Lifecycle == nil || block.Lifecycle.OnCheck == "" {
		return nil, fmt.Errorf("check manifest %q in %s: missing lifecycle on_check handler", block.Type, sourceFile)
	}
	def.Lifecycle = &config.CheckLifecycle{OnCheck: block.Lifecycle.OnCheck}

	for _, in := range block.Inputs {
		input, err := translateInputDefinition(block.Type, in)
		if err != nil {
			return nil, fmt.Errorf("check manifest %q in %s: %w", block.Type, sourceFile, err)
		}
		def.Inputs[input.Name] = input
	}

	for _, out := range block.Outputs {
		ty, err := typeExprToCtyType(out.Type)
		if err != nil {
			return nil, fmt.Errorf("check manifest %q in %s: output %q: %w", block.Type, sourceFile, out.Name, err)
		}
		def.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        ty,
			Description: out.Description,
		}
	}

	return def, nil
}

// translateInputDefinition converts one input block. A static default marks
// the input optional; defaults must evaluate without any variables.
func translateInputDefinition(checkType string, block *inputBlock) (*config.InputDefinition, error) {
	ty, err := typeExprToCtyType(block.Type)
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", block.Name, err)
	}

	input := &config.InputDefinition{
		Name:        block.Name,
		Type:        ty,
		Description: block.Description,
	}

	if block.Default != nil {
		val, diags := block.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("input %q: evaluating default for check %q: %w", block.Name, checkType, diags)
		}
		if !val.IsNull() {
			input.Default = &val
			input.Optional = true
		}
	}

	return input, nil
}

// translateEnvironmentDefinition converts an environment manifest block.
func translateEnvironmentDefinition(block *environmentBlock, sourceFile string) (*config.EnvironmentDefinition, error) {
	def := &config.EnvironmentDefinition{
		Name:        block.Name,
		Description: block.Description,
		Defaults:    block.Defaults,
	}

	var err error
	if def.MinTestTimeout, err = parseManifestDuration(block.Name, sourceFile, "min_test_timeout", block.MinTestTimeout); err != nil {
		return nil, err
	}
	if def.MinHookTimeout, err = parseManifestDuration(block.Name, sourceFile, "min_hook_timeout", block.MinHookTimeout); err != nil {
		return nil, err
	}

	return def, nil
}

func parseProfileDuration(profileName, attr, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("profile %q: invalid %s %q: %w", profileName, attr, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("profile %q: %s must be positive, got %q", profileName, attr, raw)
	}
	return d, nil
}

func parseManifestDuration(envName, sourceFile, attr, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("environment manifest %q in %s: invalid %s %q: %w", envName, sourceFile, attr, raw, err)
	}
	return d, nil
}
