package hclconf

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is the top-level grammar of a configuration file. Profiles are
// user configuration; check and environment blocks are plugin manifests.
type fileRoot struct {
	Profiles     []*profileBlock     `hcl:"profile,block"`
	Checks       []*checkDefBlock    `hcl:"check,block"`
	Environments []*environmentBlock `hcl:"environment,block"`
	Remain       hcl.Body            `hcl:",remain"`
}

// profileBlock mirrors a `profile "name" { ... }` block before translation.
// Duration attributes stay strings here and are parsed during translation so
// that errors can name the profile they came from.
type profileBlock struct {
	Name        string            `hcl:"name,label"`
	Extends     string            `hcl:"extends,optional"`
	Environment string            `hcl:"environment,optional"`
	Globals     *bool             `hcl:"globals,optional"`
	CSS         *bool             `hcl:"css,optional"`
	Setup       []string          `hcl:"setup,optional"`
	TestTimeout string            `hcl:"test_timeout,optional"`
	HookTimeout string            `hcl:"hook_timeout,optional"`
	Env         map[string]string `hcl:"env,optional"`
	Aliases     map[string]string `hcl:"aliases,optional"`
	Plugins     []string          `hcl:"plugins,optional"`
	Checks      []*checkBlock     `hcl:"check,block"`
}

// checkBlock mirrors a `check "type" "name" { ... }` instance inside a
// profile. Arguments are kept as raw expressions for deferred evaluation.
type checkBlock struct {
	Type      string     `hcl:"check_type,label"`
	Name      string     `hcl:"instance_name,label"`
	Arguments *argsBlock `hcl:"arguments,block"`
}

// argsBlock captures the body of an `arguments { ... }` block without
// decoding it. Evaluation happens later against the resolved profile env.
type argsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// checkDefBlock mirrors a top-level `check "type" { ... }` manifest block.
type checkDefBlock struct {
	Type        string          `hcl:"check_type,label"`
	Description string          `hcl:"description,optional"`
	Lifecycle   *lifecycleBlock `hcl:"lifecycle,block"`
	Inputs      []*inputBlock   `hcl:"input,block"`
	Outputs     []*outputBlock  `hcl:"output,block"`
}

type lifecycleBlock struct {
	OnCheck string `hcl:"on_check"`
}

// inputBlock mirrors an `input "name" { ... }` block of a check manifest.
// Type and default are expressions: the type is parsed by typeExprToCtyType
// and the default is evaluated statically during translation.
type inputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

type outputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// environmentBlock mirrors a top-level `environment "name" { ... }` manifest
// block contributed by an environment plugin.
type environmentBlock struct {
	Name           string            `hcl:"name,label"`
	Description    string            `hcl:"description,optional"`
	Defaults       map[string]string `hcl:"defaults,optional"`
	MinTestTimeout string            `hcl:"min_test_timeout,optional"`
	MinHookTimeout string            `hcl:"min_hook_timeout,optional"`
}
