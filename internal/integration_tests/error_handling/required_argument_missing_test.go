package integration_tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/registry"
	"github.com/vk/envrig/internal/testutil"
)

// TestErrorHandling_RequiredArgumentMissing validates that a check instance
// omitting a required manifest input fails that check at doctor time with a
// decode error naming the argument.
func TestErrorHandling_RequiredArgumentMissing(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	configHCL := `
		profile "default" {
			check "sleeper" "incomplete" {
				arguments {
				}
			}
		}
	`
	files := map[string]string{
		"config/testenv.hcl":           configHCL,
		"modules/sleeper/manifest.hcl": testutil.SleeperManifest,
	}

	plugin := testutil.NewMockSleeperPlugin(nil, time.Millisecond)

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, []registry.Plugin{plugin}, testutil.RunOptions{
		Command: "doctor",
	})

	// --- Assert ---
	require.Error(t, result.Err)
	require.Contains(t, result.Err.Error(), "1 of 1 checks failed")
	require.Contains(t, result.Stdout, "FAIL")
	require.Contains(t, result.Stdout, `missing required argument "id"`)
	require.Empty(t, plugin.ExecutionTimes, "the handler must not run when decoding fails")
}
