// Package registry provides the central "glue" for the plugin system.
//
// The Registry stores mappings between the string identifiers used in
// manifests (e.g. "OnCheckHTTP") and the compiled Go functions and types that
// implement a plugin's logic, alongside the parsed, format-agnostic manifest
// definitions and the environment providers plugins contribute.
//
// During application startup the registry is populated and then validated to
// ensure the Go code and the public-facing manifests are perfectly in sync,
// preventing a wide class of runtime errors.
package registry
