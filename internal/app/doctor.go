package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/dotenv"
	"github.com/vk/envrig/internal/profile"
)

// Doctor resolves the selected profile, inspects the rig itself, and then
// runs the profile's service checks. Hard check failures always return an
// error; in strict mode warnings, skips and rig findings do too.
func (a *App) Doctor(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("🩺 Running doctor.", "profile", a.appConfig.Profile)

	resolved, err := a.resolveProfile(ctx)
	if err != nil {
		return err
	}

	findings := a.rigFindings(ctx, resolved)

	if handler, ok := a.registry.EnvironmentHandlers[resolved.Environment]; ok && handler.Validate != nil {
		if err := handler.Validate(ctx, resolved); err != nil {
			return fmt.Errorf("environment '%s' rejected the profile: %w", resolved.Environment, err)
		}
	}

	engine := checks.NewEngine(a.registry, a.converter, a.appConfig.WorkerCount, a.appConfig.Strict)
	results, err := engine.Run(ctx, resolved)
	if err != nil {
		return err
	}

	a.writeReport(resolved, findings, results)

	passed, failed, skipped, warned := tally(results)
	a.logger.Debug("Doctor finished.",
		"passed", passed, "failed", failed, "skipped", skipped, "warnings", warned, "findings", len(findings))

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	if a.appConfig.Strict && (warned > 0 || skipped > 0 || len(findings) > 0) {
		return fmt.Errorf("strict mode: %d warnings, %d skips, %d rig findings", warned, skipped, len(findings))
	}
	return nil
}

// rigFindings reports profile-level problems that no individual service check
// can see: missing setup scripts, timeout budgets that cannot hold, and
// dotenv keys the profile never declared.
func (a *App) rigFindings(ctx context.Context, resolved *profile.Resolved) []string {
	var findings []string

	for _, script := range resolved.Setup {
		if _, err := os.Stat(script); err != nil {
			findings = append(findings, fmt.Sprintf("setup script not found: %s", script))
		}
	}

	if resolved.HookTimeout < resolved.TestTimeout && hasCheckType(resolved, "inference") {
		findings = append(findings, fmt.Sprintf(
			"hook timeout %s is below the test timeout %s although the profile declares inference checks",
			resolved.HookTimeout, resolved.TestTimeout))
	}

	if a.appConfig.EnvDir != "" {
		dotVars, origins, err := dotenv.Load(ctx, a.appConfig.EnvDir, resolved.Profile)
		if err == nil {
			for _, name := range sortedKeys(dotVars) {
				if _, declared := resolved.Env[name]; !declared {
					findings = append(findings, fmt.Sprintf(
						"%s defines %s, which the profile does not declare", origins[name], name))
				}
			}
		}
	}

	return findings
}

// writeReport renders the human-readable doctor report to the output writer.
func (a *App) writeReport(resolved *profile.Resolved, findings []string, results []*checks.Result) {
	fmt.Fprintf(a.outW, "Profile %s (environment %s)\n", resolved.Profile, resolved.Environment)
	fmt.Fprintf(a.outW, "Timeouts: test %s, hook %s\n", resolved.TestTimeout, resolved.HookTimeout)

	if len(findings) > 0 {
		fmt.Fprintf(a.outW, "\nRig findings:\n")
		for _, finding := range findings {
			fmt.Fprintf(a.outW, "  WARN  %s\n", finding)
		}
	}

	if len(results) > 0 {
		fmt.Fprintf(a.outW, "\nChecks:\n")
		for _, result := range results {
			detail := ""
			if result.Err != nil {
				detail = result.Err.Error()
			} else if len(result.Output) > 0 {
				detail = formatOutput(result.Output)
			}
			fmt.Fprintf(a.outW, "  %-5s %-28s %10s  %s\n",
				statusLabel(result.Status),
				result.Type+"."+result.Name,
				result.Duration.Round(100*time.Microsecond),
				detail)
		}
	}

	passed, failed, skipped, warned := tally(results)
	summary := fmt.Sprintf("%d passed, %d failed, %d skipped, %d warnings", passed, failed, skipped, warned)
	if len(findings) > 0 {
		summary += fmt.Sprintf(", %d rig findings", len(findings))
	}
	fmt.Fprintf(a.outW, "\n%s\n", summary)
}

func statusLabel(status checks.Status) string {
	switch status {
	case checks.StatusPassed:
		return "PASS"
	case checks.StatusFailed:
		return "FAIL"
	case checks.StatusSkipped:
		return "SKIP"
	case checks.StatusWarning:
		return "WARN"
	default:
		return strings.ToUpper(string(status))
	}
}

func tally(results []*checks.Result) (passed, failed, skipped, warned int) {
	for _, result := range results {
		switch result.Status {
		case checks.StatusPassed:
			passed++
		case checks.StatusFailed:
			failed++
		case checks.StatusSkipped:
			skipped++
		case checks.StatusWarning:
			warned++
		}
	}
	return passed, failed, skipped, warned
}

// formatOutput renders check outputs as sorted key=value pairs.
func formatOutput(output map[string]any) string {
	keys := make([]string, 0, len(output))
	for key := range output {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, output[key]))
	}
	return strings.Join(pairs, " ")
}

func hasCheckType(resolved *profile.Resolved, checkType string) bool {
	for _, check := range resolved.Checks {
		if check.Type == checkType {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
