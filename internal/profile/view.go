package profile

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// View is the serializable form of a Resolved profile — the machine boundary
// external test tooling consumes via `envrig print`. Durations are rendered
// as Go duration strings so the output stays stable and human-readable.
type View struct {
	Profile     string            `json:"profile" yaml:"profile"`
	Environment string            `json:"environment" yaml:"environment"`
	Globals     bool              `json:"globals" yaml:"globals"`
	CSS         bool              `json:"css" yaml:"css"`
	TestTimeout string            `json:"test_timeout" yaml:"test_timeout"`
	HookTimeout string            `json:"hook_timeout" yaml:"hook_timeout"`
	Setup       []string          `json:"setup,omitempty" yaml:"setup,omitempty"`
	Aliases     map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Env         map[string]string `json:"env" yaml:"env"`
	EnvSources  map[string]string `json:"env_sources" yaml:"env_sources"`
	Plugins     []string          `json:"plugins,omitempty" yaml:"plugins,omitempty"`
	Checks      []string          `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// View projects the resolved profile into its serializable form.
func (r *Resolved) View() *View {
	v := &View{
		Profile:     r.Profile,
		Environment: r.Environment,
		Globals:     r.Globals,
		CSS:         r.CSS,
		TestTimeout: r.TestTimeout.String(),
		HookTimeout: r.HookTimeout.String(),
		Setup:       r.Setup,
		Aliases:     r.Aliases,
		Env:         make(map[string]string, len(r.Env)),
		EnvSources:  make(map[string]string, len(r.Env)),
		Plugins:     r.Plugins,
	}
	for name, rv := range r.Env {
		v.Env[name] = rv.Value
		v.EnvSources[name] = string(rv.Source)
	}
	// Check order is the declared order, which is meaningful.
	for _, check := range r.Checks {
		v.Checks = append(v.Checks, check.Type+"."+check.Name)
	}
	return v
}

// Environ returns the resolved variables in "KEY=value" form, sorted by name,
// ready for exec.Cmd.Env composition.
func (r *Resolved) Environ() []string {
	out := make([]string, 0, len(r.Env))
	for name, rv := range r.Env {
		out = append(out, name+"="+rv.Value)
	}
	sort.Strings(out)
	return out
}

// EvalContext builds the HCL evaluation context exposing resolved variables
// as env.<NAME> to check arguments.
func (r *Resolved) EvalContext() *hcl.EvalContext {
	attrs := make(map[string]cty.Value, len(r.Env))
	for name, rv := range r.Env {
		attrs[name] = cty.StringVal(rv.Value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(attrs),
		},
	}
}
