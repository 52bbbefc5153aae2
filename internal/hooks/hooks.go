// Package hooks runs a profile's setup scripts before the suite. Hooks run
// in declared order, never concurrently: they prepare state for one another,
// and the order is part of the configuration contract.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/profile"
)

// Runner executes setup hooks sequentially.
type Runner struct{}

// NewRunner creates a hook runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes every setup script of the resolved profile in declared order,
// each bounded by the profile's hook timeout. Hooks inherit the process
// environment overlaid with the resolved variables, plus ENVRIG_PROFILE and
// a per-run ENVRIG_RUN_ID. The first failure or timeout aborts the remainder.
func (r *Runner) Run(ctx context.Context, resolved *profile.Resolved) error {
	logger := ctxlog.FromContext(ctx)
	if len(resolved.Setup) == 0 {
		logger.Debug("No setup hooks declared.")
		return nil
	}

	runID := uuid.NewString()
	hookEnv := append(os.Environ(), resolved.Environ()...)
	hookEnv = append(hookEnv,
		"ENVRIG_PROFILE="+resolved.Profile,
		"ENVRIG_RUN_ID="+runID,
	)

	logger.Info("▶️ Running setup hooks.", "hooks", len(resolved.Setup), "run_id", runID)

	for i, script := range resolved.Setup {
		hookLogger := logger.With("hook", script, "index", i)
		if err := runHook(ctx, hookLogger, script, hookEnv, resolved.HookTimeout); err != nil {
			hookLogger.Error("Setup hook failed, aborting the remainder.", "error", err)
			return err
		}
	}

	logger.Info("✅ Setup hooks finished.", "hooks", len(resolved.Setup))
	return nil
}

func runHook(ctx context.Context, logger *slog.Logger, script string, env []string, timeout time.Duration) error {
	hookCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("▶️ Starting setup hook.")

	stdout := &logWriter{logger: logger, stream: "stdout"}
	stderr := &logWriter{logger: logger, stream: "stderr"}

	cmd := exec.CommandContext(hookCtx, script)
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	started := time.Now()
	err := cmd.Run()
	stdout.flush()
	stderr.flush()

	if err != nil {
		if hookCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("setup hook %q timed out after %s", script, timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("setup hook %q exited with code %d", script, exitErr.ExitCode())
		}
		return fmt.Errorf("setup hook %q failed to start: %w", script, err)
	}

	logger.Info("✅ Finished setup hook.", "duration", time.Since(started))
	return nil
}

// logWriter streams a hook's output to the run logger line by line at debug
// level, so hook chatter stays out of envrig's own machine output.
type logWriter struct {
	logger *slog.Logger
	stream string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// flush logs any trailing output that did not end in a newline.
func (w *logWriter) flush() {
	if len(w.buf) > 0 {
		w.logLine(string(w.buf))
		w.buf = nil
	}
}

func (w *logWriter) logLine(line string) {
	line = strings.TrimRight(line, "\r")
	if line != "" {
		w.logger.Debug("Hook output.", "stream", w.stream, "line", line)
	}
}
