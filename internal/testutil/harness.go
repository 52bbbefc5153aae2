package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/app"
	"github.com/vk/envrig/internal/hclconf"
	"github.com/vk/envrig/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// RunOptions selects the command and profile a harness run exercises. The
// zero value stops after startup (load plus validation), which is enough for
// parsing and parity tests.
type RunOptions struct {
	Command  string
	Profile  string
	Format   string
	Strict   bool
	Workers  int
	ExecArgs []string
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Stdout    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, plugins []registry.Plugin, opts RunOptions) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, plugins, opts)
}

// RunIntegrationTestWithContext provides a standardized harness for running
// integration tests with a specific context provided by the caller.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, plugins []registry.Plugin, opts RunOptions) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	tmpDir, err := os.MkdirTemp("", ".tmp-integration-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	configDir := filepath.Join(tmpDir, "config")
	modulesDir := filepath.Join(tmpDir, "modules")
	require.NoError(t, os.Mkdir(configDir, 0755))
	require.NoError(t, os.Mkdir(modulesDir, 0755))

	// 2. Write all files to the temporary directory. Tests provide relative
	//    paths (e.g. "config/testenv.hcl", "modules/x/manifest.hcl", ".env"),
	//    which naturally creates the directory structure within tmpDir. Dotenv
	//    layers belong at the root because EnvDir points there. Shell scripts
	//    are made executable so setup hook tests can run them.
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		dir := filepath.Dir(filePath)
		require.NoError(t, os.MkdirAll(dir, 0755))
		mode := os.FileMode(0644)
		if strings.HasSuffix(name, ".sh") {
			mode = 0755
		}
		err = os.WriteFile(filePath, []byte(content), mode)
		require.NoError(t, err)
	}

	// 3. Configure the app to use the dedicated, non-overlapping subdirectories.
	appConfig, err := app.NewConfig(app.Config{
		ConfigPath:  configDir,
		ModulesPath: modulesDir,
		EnvDir:      tmpDir,
		Profile:     opts.Profile,
		Format:      opts.Format,
		LogFormat:   "text",
		LogLevel:    "debug",
		WorkerCount: opts.Workers,
		Strict:      opts.Strict,
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	stdout := &bytes.Buffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				if os.Getenv("ENVRIG_TEST_LOGS") == "true" {
					t.Logf("--- HARNESS RECOVERED PANIC ---\n%q", fmt.Sprintf("%v", r))
				}
				panicErr = r
			}
		}()
		testApp = app.NewApp(stdout, logBuffer, appConfig, hclconf.NewLoader(), plugins...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
			App:       nil,
		}
	}

	// Startup (load plus validation) already ran inside NewApp; an empty
	// command stops there so parsing tests stay focused and reliable.
	var runErr error
	switch opts.Command {
	case "":
	case "print":
		runErr = testApp.Print(ctx)
	case "doctor":
		runErr = testApp.Doctor(ctx)
	case "exec":
		runErr = testApp.Exec(ctx, opts.ExecArgs)
	case "environments":
		runErr = testApp.Environments(ctx)
	default:
		t.Fatalf("unknown harness command %q", opts.Command)
	}

	if os.Getenv("ENVRIG_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Stdout:    stdout.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
