package dotenv

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_LaterLayersOverrideEarlier(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, ".env", "API_URL=https://base.example.com\nSHARED=base\n")
	writeFile(t, dir, ".env.local", "SHARED=local\n")
	writeFile(t, dir, ".env.ci", "API_URL=https://ci.example.com\n")

	// Act
	vars, origins, err := Load(testContext(), dir, "ci")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "https://ci.example.com", vars["API_URL"])
	require.Equal(t, "local", vars["SHARED"])
	require.Equal(t, filepath.Join(dir, ".env.ci"), origins["API_URL"])
	require.Equal(t, filepath.Join(dir, ".env.local"), origins["SHARED"])
}

func TestLoad_MissingFilesAreSkipped(t *testing.T) {
	// Arrange: only the base layer exists.
	dir := t.TempDir()
	writeFile(t, dir, ".env", "ONLY=here\n")

	// Act
	vars, _, err := Load(testContext(), dir, "default")

	// Assert
	require.NoError(t, err)
	require.Equal(t, map[string]string{"ONLY": "here"}, vars)
}

func TestLoad_EmptyDirYieldsEmptyMap(t *testing.T) {
	// Act
	vars, origins, err := Load(testContext(), t.TempDir(), "default")

	// Assert
	require.NoError(t, err)
	require.Empty(t, vars)
	require.Empty(t, origins)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	writeFile(t, dir, ".env", "not a valid line without equals or export\n")

	// Act
	_, _, err := Load(testContext(), dir, "default")

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), ".env")
}

func TestLayers_OrderIsLowestPrecedenceFirst(t *testing.T) {
	require.Equal(t, []string{".env", ".env.local", ".env.browser", ".env.browser.local"}, Layers("browser"))
}
