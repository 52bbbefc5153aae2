package config

import (
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Built-in profile defaults, applied before any profile or extends chain.
// The 5s/10s pair mirrors the defaults of the test tooling this rig feeds.
const (
	DefaultEnvironment = "node"
	DefaultTestTimeout = 5 * time.Second
	DefaultHookTimeout = 10 * time.Second
)

// Model is the unified, format-agnostic representation of the entire
// configuration: all test-environment profiles plus the plugin manifests
// (check and environment definitions) they are validated against.
type Model struct {
	Profiles     map[string]*Profile
	Checks       map[string]*CheckDefinition
	Environments map[string]*EnvironmentDefinition
}

// NewModel returns an empty model with all maps initialized.
func NewModel() *Model {
	return &Model{
		Profiles:     make(map[string]*Profile),
		Checks:       make(map[string]*CheckDefinition),
		Environments: make(map[string]*EnvironmentDefinition),
	}
}

// Profile is the format-agnostic representation of a `profile` block: one
// declarative description of how a test suite must be provisioned.
//
// Zero values mean "not set here": resolution walks the extends chain and
// finally the built-in defaults. Bool attributes use pointers so that an
// explicit `false` survives merging.
type Profile struct {
	Name    string
	Extends string

	// Environment selects the execution environment ("node", "browser", or
	// any environment registered by a plugin).
	Environment string

	// Globals controls whether the resolved env map is exported into the
	// process environment of hooks and exec children, or only reported.
	Globals *bool

	// CSS reports whether style assets are processed or must be stubbed by
	// the consuming tooling. Carried verbatim from the source configs.
	CSS *bool

	// Setup holds ordered setup script paths, run before the suite. Paths
	// may use aliases.
	Setup []string

	TestTimeout time.Duration
	HookTimeout time.Duration

	// Env maps environment-variable names to fallback values. Fallbacks are
	// literals; the live process environment and dotenv layers outrank them.
	Env map[string]string

	// Aliases maps path prefixes for the resolver, e.g. "@" -> project root.
	Aliases map[string]string

	// Plugins names the modules this profile requires to be compiled in.
	Plugins []string

	Checks []*Check

	// SourceFile records where the block was declared, for duplicate and
	// merge diagnostics.
	SourceFile string
}

// Check is the format-agnostic representation of a `check` block inside a
// profile: a service probe instance to run against the rigged environment.
type Check struct {
	Type      string
	Name      string
	Arguments map[string]hcl.Expression
}

// --- Plugin manifest models ---

// CheckDefinition is the format-agnostic representation of a check plugin's
// manifest.
type CheckDefinition struct {
	Type        string
	Description string
	Lifecycle   *CheckLifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
}

// CheckLifecycle maps a check's single lifecycle event to a Go handler name.
type CheckLifecycle struct {
	OnCheck string
}

// EnvironmentDefinition is the format-agnostic representation of an
// execution environment provider's manifest.
type EnvironmentDefinition struct {
	Name        string
	Description string

	// Defaults are env fallbacks the environment contributes below the
	// profile's own fallback map.
	Defaults map[string]string

	// MinTestTimeout and MinHookTimeout are floors an environment imposes on
	// resolved timeouts (a browser environment needs more headroom than a
	// plain process).
	MinTestTimeout time.Duration
	MinHookTimeout time.Duration
}

// InputDefinition defines a single input argument for a check.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// OutputDefinition defines a single output value produced by a check.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}
