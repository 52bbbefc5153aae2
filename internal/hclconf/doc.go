// Package hclconf implements the config.Loader and config.Converter
// interfaces for HCL. It discovers .hcl files across the configured paths,
// merges profile blocks and plugin manifests into the format-agnostic model,
// and provides the manifest-driven decoding of check arguments into the Go
// input structs registered by plugins.
package hclconf
