package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertCheckRan checks the log output within a HarnessResult to confirm that
// a specific check instance was picked up by the engine. It abstracts the
// underlying log attribute format, making tests more resilient to internal
// refactoring.
func AssertCheckRan(t *testing.T, result *HarnessResult, checkType, checkName string) {
	t.Helper()

	expectedLogSubstring := fmt.Sprintf("check=%s.%s", checkType, checkName)

	require.True(t,
		strings.Contains(result.LogOutput, expectedLogSubstring),
		"expected log output for check '%s.%s' was not found in logs", checkType, checkName,
	)
}
