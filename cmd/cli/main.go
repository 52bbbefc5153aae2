package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/envrig/internal/app"
	"github.com/vk/envrig/internal/cli"
	"github.com/vk/envrig/internal/hclconf"
)

// main is the entrypoint for the envrig application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// Watch mode blocks until interrupted, so wire signals into the context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		var codeErr *app.ExitCodeError
		if errors.As(err, &codeErr) {
			// The child process already reported its own failure.
			os.Exit(codeErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Command output goes to outW; logs and child stderr go to errW.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	invocation, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors, so recover here to hand the
	// user a clean error message instead of a stack trace.
	var envrigApp *app.App
	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("application startup panicked: %v", r)
			}
		}()
		envrigApp = app.NewApp(outW, errW, invocation.Config, hclconf.NewLoader())
		return nil
	}()
	if err != nil {
		return err
	}

	switch invocation.Command {
	case cli.CommandPrint:
		return envrigApp.Print(ctx)
	case cli.CommandDoctor:
		if invocation.Config.Watch {
			return envrigApp.DoctorWatch(ctx)
		}
		return envrigApp.Doctor(ctx)
	case cli.CommandExec:
		return envrigApp.Exec(ctx, invocation.ExecArgs)
	case cli.CommandEnvironments:
		return envrigApp.Environments(ctx)
	default:
		return fmt.Errorf("unhandled command %q", invocation.Command)
	}
}
