package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/testutil"
)

// TestResolution_ExtendsChain validates that a child profile inherits its
// base's variables, overrides scalars, and renders merged output via print.
func TestResolution_ExtendsChain(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	configHCL := `
		profile "default" {
			environment  = "node"
			test_timeout = "5s"
			hook_timeout = "10s"
			env = {
				SERVICE_URL = "http://localhost:3000"
			}
		}

		profile "browser" {
			extends      = "default"
			environment  = "browser"
			test_timeout = "30s"
			hook_timeout = "120s"
			env = {
				OPENAI_API_KEY = ""
			}
		}
	`
	files := map[string]string{
		"config/testenv.hcl": configHCL,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil, testutil.RunOptions{
		Command: "print",
		Profile: "browser",
	})

	// --- Assert ---
	require.NoError(t, result.Err, "print returned an unexpected error")

	out := result.Stdout
	require.Contains(t, out, `"profile": "browser"`)
	require.Contains(t, out, `"environment": "browser"`, "child profile must override the environment selector")
	require.Contains(t, out, `"test_timeout": "30s"`)
	require.Contains(t, out, `"hook_timeout": "2m0s"`, "durations render in Go notation")
	require.Contains(t, out, `"SERVICE_URL": "http://localhost:3000"`, "base env vars must survive the merge")
	require.Contains(t, out, `"OPENAI_API_KEY": ""`, "child env vars must be added")
}

// TestResolution_ExtendsCycle_Fails validates that a cyclic extends chain is
// reported instead of looping forever.
func TestResolution_ExtendsCycle_Fails(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	configHCL := `
		profile "a" {
			extends = "b"
		}
		profile "b" {
			extends = "a"
		}
	`
	files := map[string]string{
		"config/testenv.hcl": configHCL,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil, testutil.RunOptions{
		Command: "print",
		Profile: "a",
	})

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "profile extends cycle")
}
