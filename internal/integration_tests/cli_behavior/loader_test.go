package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/registry"
	"github.com/vk/envrig/internal/testutil"
)

// TestLoader_DiscoversManifestsUnderModulesPath validates that check
// manifests anywhere under the modules directory are loaded into the model.
func TestLoader_DiscoversManifestsUnderModulesPath(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"config/testenv.hcl":        `profile "default" {}`,
		"modules/noop/manifest.hcl": testutil.NoopManifest,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, []registry.Plugin{&testutil.NoopPlugin{}}, testutil.RunOptions{})

	// --- Assert ---
	require.NoError(t, result.Err, "startup returned an unexpected error")
	require.NotNil(t, result.App)
	require.Contains(t, result.App.Model().Checks, "noop")
	require.Equal(t, "OnCheckNoop", result.App.Model().Checks["noop"].Lifecycle.OnCheck)
}

// TestLoader_CheckWithoutManifest_Fails validates that a profile referencing
// a check type with no loaded manifest is rejected at startup.
func TestLoader_CheckWithoutManifest_Fails(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	configHCL := `
		profile "default" {
			check "ghost" "first" {
			}
		}
	`
	files := map[string]string{
		"config/testenv.hcl": configHCL,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil, testutil.RunOptions{})

	// --- Assert ---
	require.Error(t, result.Err, "startup should have panicked on the unmanifested check")
	require.Contains(t, result.Err.Error(), "check 'ghost' 'first' has no loaded manifest")
}
