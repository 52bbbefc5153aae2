package profile

import (
	"fmt"
	"strings"

	"github.com/vk/envrig/internal/config"
)

// Merge computes the effective profile for name: the extends chain applied
// from its root down to the named profile, then global defaults for anything
// still unset. Scalar attributes override, env and aliases merge key-wise,
// setup, plugins and checks replace wholesale.
func Merge(model *config.Model, name string) (*config.Profile, error) {
	chain, err := extendsChain(model, name)
	if err != nil {
		return nil, err
	}

	eff := &config.Profile{
		Name:    name,
		Env:     make(map[string]string),
		Aliases: make(map[string]string),
	}
	for _, p := range chain {
		overlay(eff, p)
	}

	applyDefaults(eff)
	return eff, nil
}

// extendsChain returns the profiles from the chain root down to name,
// rejecting unknown bases and cycles.
func extendsChain(model *config.Model, name string) ([]*config.Profile, error) {
	if _, ok := model.Profiles[name]; !ok {
		return nil, fmt.Errorf("unknown profile %q", name)
	}

	var chain []*config.Profile
	var path []string
	seen := make(map[string]bool)

	current := name
	for {
		if seen[current] {
			return nil, fmt.Errorf("profile extends cycle: %s", strings.Join(append(path, current), " -> "))
		}
		p, ok := model.Profiles[current]
		if !ok {
			return nil, fmt.Errorf("profile %q extends %q, which is not defined", path[len(path)-1], current)
		}
		seen[current] = true
		path = append(path, current)
		chain = append(chain, p)
		if p.Extends == "" {
			break
		}
		current = p.Extends
	}

	// Walk order is leaf to root; overlay wants root first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func overlay(eff, p *config.Profile) {
	if p.Environment != "" {
		eff.Environment = p.Environment
	}
	if p.Globals != nil {
		eff.Globals = p.Globals
	}
	if p.CSS != nil {
		eff.CSS = p.CSS
	}
	if p.TestTimeout != 0 {
		eff.TestTimeout = p.TestTimeout
	}
	if p.HookTimeout != 0 {
		eff.HookTimeout = p.HookTimeout
	}
	if p.Setup != nil {
		eff.Setup = p.Setup
	}
	if p.Plugins != nil {
		eff.Plugins = p.Plugins
	}
	if len(p.Checks) > 0 {
		eff.Checks = p.Checks
	}
	for k, v := range p.Env {
		eff.Env[k] = v
	}
	for k, v := range p.Aliases {
		eff.Aliases[k] = v
	}
	if p.SourceFile != "" {
		eff.SourceFile = p.SourceFile
	}
}

func applyDefaults(eff *config.Profile) {
	if eff.Environment == "" {
		eff.Environment = config.DefaultEnvironment
	}
	if eff.TestTimeout == 0 {
		eff.TestTimeout = config.DefaultTestTimeout
	}
	if eff.HookTimeout == 0 {
		eff.HookTimeout = config.DefaultHookTimeout
	}
	if eff.Globals == nil {
		off := false
		eff.Globals = &off
	}
	if eff.CSS == nil {
		off := false
		eff.CSS = &off
	}
}
