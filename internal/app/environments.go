package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/envrig/internal/ctxlog"
)

// Environments lists the registered environment providers, compiled-in
// plugins, and available check types with their manifest descriptions.
func (a *App) Environments(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	ctxlog.FromContext(ctx).Debug("Listing registered providers.",
		"environments", len(a.registry.EnvironmentHandlers),
		"plugins", len(a.registry.Plugins),
		"checks", len(a.registry.CheckDefinitions),
	)

	fmt.Fprintln(a.outW, "Environments:")
	for _, name := range sortedEnvironmentNames(a) {
		description := a.registry.EnvironmentHandlers[name].Description
		if def, ok := a.registry.EnvironmentDefs[name]; ok && def.Description != "" {
			description = def.Description
		}
		fmt.Fprintf(a.outW, "  %-10s %s\n", name, description)
	}

	fmt.Fprintln(a.outW, "\nPlugins:")
	for _, name := range sortedPluginNames(a) {
		fmt.Fprintf(a.outW, "  %s\n", name)
	}

	fmt.Fprintln(a.outW, "\nChecks:")
	for _, checkType := range sortedCheckTypes(a) {
		fmt.Fprintf(a.outW, "  %-10s %s\n", checkType, a.registry.CheckDefinitions[checkType].Description)
	}
	return nil
}

func sortedEnvironmentNames(a *App) []string {
	names := make([]string, 0, len(a.registry.EnvironmentHandlers))
	for name := range a.registry.EnvironmentHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedPluginNames(a *App) []string {
	names := make([]string, 0, len(a.registry.Plugins))
	for name := range a.registry.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedCheckTypes(a *App) []string {
	types := make([]string, 0, len(a.registry.CheckDefinitions))
	for checkType := range a.registry.CheckDefinitions {
		types = append(types, checkType)
	}
	sort.Strings(types)
	return types
}
