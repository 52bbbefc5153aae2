package profile

import "strings"

var sensitiveMarkers = []string{"KEY", "TOKEN", "SECRET", "PASSWORD"}

// IsSensitive reports whether an environment variable name looks like a
// credential. Sensitive values are redacted in logs but never in resolved
// output, which external tooling consumes whole.
func IsSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// RedactValue returns the value as-is for loggable names and a placeholder
// for sensitive ones. Empty values pass through so logs can show that a
// credential is absent.
func RedactValue(name, value string) string {
	if value != "" && IsSensitive(name) {
		return "[redacted]"
	}
	return value
}
