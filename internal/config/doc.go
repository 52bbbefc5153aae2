// Package config defines the format-agnostic model for test-environment
// profiles and plugin manifests, along with the core interfaces (Loader,
// Converter) for loading and interpreting configuration from various sources.
//
// The config.Model is the single source of truth for the profile resolver
// and the registry. Concrete implementations of the interfaces, such as for
// HCL, are provided in separate packages.
package config
