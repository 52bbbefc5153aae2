package profile

import (
	"path/filepath"
	"strings"
)

// ExpandPath substitutes the longest alias matching a whole leading path
// segment. Expansion is single-pass: alias targets are taken literally and
// never re-expanded.
func ExpandPath(path string, aliases map[string]string) string {
	best := ""
	for alias := range aliases {
		if alias == "" || len(alias) <= len(best) {
			continue
		}
		if path == alias || (strings.HasPrefix(path, alias) && strings.HasPrefix(path[len(alias):], "/")) {
			best = alias
		}
	}
	if best == "" {
		return path
	}
	return aliases[best] + path[len(best):]
}

// anchorAliases copies the alias map with relative targets joined to the
// project root. The "@" alias is injected when the profile does not set it.
func anchorAliases(aliases map[string]string, projectRoot string) map[string]string {
	out := make(map[string]string, len(aliases)+1)
	for alias, target := range aliases {
		if !filepath.IsAbs(target) {
			target = filepath.Join(projectRoot, target)
		}
		out[alias] = target
	}
	if _, ok := out["@"]; !ok {
		out["@"] = projectRoot
	}
	return out
}
