package registry

import (
	"github.com/vk/envrig/internal/config"
)

// Plugin is the interface all compiled-in plugins implement to be registered.
type Plugin interface {
	// Name is the identifier profiles use in their plugins list.
	Name() string
	// Register wires the plugin's handlers into the registry.
	Register(r *Registry)
}

// Registry holds all the registered handlers, definitions and environment
// providers for a single application instance.
type Registry struct {
	CheckHandlers       map[string]*RegisteredCheck
	CheckDefinitions    map[string]*config.CheckDefinition
	EnvironmentHandlers map[string]*RegisteredEnvironment
	EnvironmentDefs     map[string]*config.EnvironmentDefinition
	Plugins             map[string]Plugin
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		CheckHandlers:       make(map[string]*RegisteredCheck),
		CheckDefinitions:    make(map[string]*config.CheckDefinition),
		EnvironmentHandlers: make(map[string]*RegisteredEnvironment),
		EnvironmentDefs:     make(map[string]*config.EnvironmentDefinition),
		Plugins:             make(map[string]Plugin),
	}
}

// Use registers a plugin and records its name for profile validation.
func (r *Registry) Use(p Plugin) {
	p.Register(r)
	r.Plugins[p.Name()] = p
}

// PopulateDefinitionsFromModel copies the loaded manifest definitions from
// the config model into the registry for easy access during validation and
// check execution.
func (r *Registry) PopulateDefinitionsFromModel(model *config.Model) {
	for key, val := range model.Checks {
		r.CheckDefinitions[key] = val
	}
	for key, val := range model.Environments {
		r.EnvironmentDefs[key] = val
	}
}
