package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/testutil"
)

// TestResolution_EnvironmentManifestContributesDefaultsAndFloors validates
// that an environment manifest merges weakest-precedence defaults into the
// profile and raises resolved timeouts to its floors.
func TestResolution_EnvironmentManifestContributesDefaultsAndFloors(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	environmentManifest := `
		environment "node" {
			description      = "Plain server-side environment."
			min_test_timeout = "10s"
			defaults = {
				TZ = "UTC"
			}
		}
	`
	configHCL := `
		profile "default" {
			environment  = "node"
			test_timeout = "2s"
			env = {
				SERVICE_URL = "http://localhost:3000"
			}
		}
	`
	files := map[string]string{
		"config/testenv.hcl":           configHCL,
		"modules/nodeenv/manifest.hcl": environmentManifest,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil, testutil.RunOptions{
		Command: "print",
	})

	// --- Assert ---
	require.NoError(t, result.Err, "print returned an unexpected error")

	out := result.Stdout
	require.Contains(t, out, `"TZ": "UTC"`, "environment defaults must be merged into the env map")
	require.Contains(t, out, `"test_timeout": "10s"`, "the environment floor must raise the profile's shorter timeout")
	require.Contains(t, out, `"hook_timeout": "10s"`, "floors never lower an already sufficient timeout")
}

// TestResolution_ProfileEnvOutranksEnvironmentDefaults validates that a
// variable declared by the profile shadows the environment manifest default.
func TestResolution_ProfileEnvOutranksEnvironmentDefaults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	environmentManifest := `
		environment "node" {
			defaults = {
				TZ = "UTC"
			}
		}
	`
	configHCL := `
		profile "default" {
			environment = "node"
			env = {
				TZ = "Europe/Kyiv"
			}
		}
	`
	files := map[string]string{
		"config/testenv.hcl":           configHCL,
		"modules/nodeenv/manifest.hcl": environmentManifest,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil, testutil.RunOptions{
		Command: "print",
	})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.Stdout, `"TZ": "Europe/Kyiv"`)
}
