// Package profile turns a loaded configuration model into the resolved
// test-environment a suite runs in. It merges extends chains, resolves every
// declared environment variable against the live process environment, the
// layered dotenv files and the profile fallback, expands path aliases, and
// produces the serializable view consumed by external tooling.
package profile
