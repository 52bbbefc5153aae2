package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/envrig/internal/app"
)

// Command words accepted as the first positional argument.
const (
	CommandPrint        = "print"
	CommandDoctor       = "doctor"
	CommandExec         = "exec"
	CommandEnvironments = "environments"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Invocation is a fully parsed and validated command line: which command to
// run, the application configuration, and for exec the child command line.
type Invocation struct {
	Command  string
	Config   *app.Config
	ExecArgs []string
}

// Parse processes command-line arguments. It returns a populated Invocation,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("envrig", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
envrig - A declarative test-environment rig.

Usage:
  envrig [options] COMMAND [-- CMD ARGS...]

Commands:
  print         Resolve the selected profile and print it to stdout.
  doctor        Inspect the rig and run the profile's service checks.
  exec          Run a command inside the rigged environment.
  environments  List registered environments, plugins and checks.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "testenv.hcl", "Path to a profile .hcl file or a directory containing .hcl files.")
	modulesPathFlag := flagSet.String("modules-path", "modules", "Path to the directory containing module definitions.")
	profileFlag := flagSet.String("profile", "default", "Name of the profile to resolve.")
	envDirFlag := flagSet.String("env-dir", ".", "Directory holding the layered .env files. Missing files are skipped.")
	formatFlag := flagSet.String("format", "json", "Output format for 'print'. Options: 'json' or 'yaml'.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent workers for the check engine.")
	strictFlag := flagSet.Bool("strict", false, "Treat warnings, skips and rig findings as failures.")
	watchFlag := flagSet.Bool("watch", false, "With 'doctor': re-run whenever the configuration changes.")
	statusPortFlag := flagSet.Int("status-port", 0, "Port for the HTTP status server in watch mode. 0 is disabled.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	command := flagSet.Arg(0)
	switch command {
	case CommandPrint, CommandDoctor, CommandExec, CommandEnvironments:
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf(
			"unknown command %q: must be 'print', 'doctor', 'exec', or 'environments'", command)}
	}

	execArgs := flagSet.Args()[1:]
	if len(execArgs) > 0 && execArgs[0] == "--" {
		execArgs = execArgs[1:]
	}
	if command == CommandExec && len(execArgs) == 0 {
		return nil, false, &ExitError{Code: 2, Message: "exec requires a command after --"}
	}
	if command != CommandExec && len(execArgs) > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf(
			"unexpected arguments after %q: %s", command, strings.Join(execArgs, " "))}
	}

	format := strings.ToLower(*formatFlag)
	if format != "json" && format != "yaml" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'json' or 'yaml'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:  *configFlag,
		ModulesPath: *modulesPathFlag,
		EnvDir:      *envDirFlag,
		Profile:     *profileFlag,
		Format:      format,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		WorkerCount: *workersFlag,
		StatusPort:  *statusPortFlag,
		Strict:      *strictFlag,
		Watch:       *watchFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "command", command, "config", config)
	return &Invocation{
		Command:  command,
		Config:   config,
		ExecArgs: execArgs,
	}, false, nil
}
