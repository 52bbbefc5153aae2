package testutil

import (
	"testing"

	"github.com/vk/envrig/internal/config"
)

// RunProfileTest provides a simplified harness for testing the parsing of a
// single profile HCL string. It wraps the main integration test harness with
// the compiled-in plugins, so profiles referencing the stock environments
// pass registry validation without shipping manifests of their own.
func RunProfileTest(t *testing.T, profileHCL string) (*HarnessResult, map[string]*config.Profile) {
	t.Helper()

	files := map[string]string{
		"config/testenv.hcl": profileHCL,
	}

	result := RunIntegrationTest(t, files, nil, RunOptions{})

	if result.App != nil && result.App.Model() != nil {
		return result, result.App.Model().Profiles
	}

	return result, nil
}
