package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/hooks"
	"github.com/vk/envrig/internal/profile"
)

// ExitCodeError carries a child process exit code back to the entrypoint.
// The child already wrote its own failure output, so the message stays terse
// and main only forwards the code.
type ExitCodeError struct {
	Code int
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// Exec resolves the profile, runs its setup hooks, and then executes the
// given command with the rigged environment. The child run is bounded by the
// profile's test timeout; a non-zero child exit is returned as ExitCodeError.
func (a *App) Exec(ctx context.Context, args []string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if len(args) == 0 {
		return errors.New("exec requires a command to run")
	}

	resolved, err := a.resolveProfile(ctx)
	if err != nil {
		return err
	}

	if err := hooks.NewRunner().Run(ctx, resolved); err != nil {
		return err
	}

	childCtx, cancel := context.WithTimeout(ctx, resolved.TestTimeout)
	defer cancel()

	cmd := exec.CommandContext(childCtx, args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = a.outW
	cmd.Stderr = a.errW
	cmd.Env = childEnvironment(resolved)

	a.logger.Info("🚀 Executing command with rigged environment.",
		"command", args[0],
		"profile", resolved.Profile,
		"globals", resolved.Globals,
		"timeout", resolved.TestTimeout,
	)

	err = cmd.Run()
	if childCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("command timed out after %s", resolved.TestTimeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		a.logger.Error("Command exited with a non-zero code.", "command", args[0], "code", exitErr.ExitCode())
		return &ExitCodeError{Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("failed to start command %q: %w", args[0], err)
	}

	a.logger.Info("✅ Command finished.", "command", args[0])
	return nil
}

// childEnvironment builds the child's environment. The resolved variable map
// is only exported when the profile enables globals; the identification
// variables are always present so the suite can tell it runs under envrig.
func childEnvironment(resolved *profile.Resolved) []string {
	env := os.Environ()
	if resolved.Globals {
		env = append(env, resolved.Environ()...)
	}
	env = append(env,
		"ENVRIG_PROFILE="+resolved.Profile,
		"ENVRIG_ENVIRONMENT="+resolved.Environment,
	)
	return env
}
