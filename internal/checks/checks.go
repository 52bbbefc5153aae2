// Package checks runs a resolved profile's service checks through a bounded
// worker pool. Checks are independent probes; there is no ordering or
// dependency between them, only shared run-scoped dependencies.
package checks

import (
	"errors"
	"net/http"
	"time"
)

// ErrSkip marks a check that cannot run in this rig but should not fail a
// doctor run, e.g. an inference probe whose API key resolved empty. Strict
// mode still reports skips as findings.
var ErrSkip = errors.New("check skipped")

// ErrWarn marks a degraded-but-usable finding, e.g. a placeholder value
// leaking into a profile that should carry real credentials. Strict mode
// fails on warnings.
var ErrWarn = errors.New("check warning")

// Deps carries the run-scoped dependencies handed to every check handler.
type Deps struct {
	// HTTP is the shared client for probe traffic, built once per run.
	HTTP *http.Client
	// Env holds the resolved variable values of the profile under check.
	Env map[string]string
	// Fallbacks holds each variable's declared fallback, so checks can tell
	// a real value from a placeholder that never got overridden.
	Fallbacks map[string]string
	// Profile is the name of the profile under check.
	Profile string
}

// Status classifies a finished check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusWarning Status = "warning"
)

// Result is the outcome of one check instance.
type Result struct {
	Type     string
	Name     string
	Status   Status
	Duration time.Duration
	Err      error
	// Output carries the handler's declared outputs in native form for
	// doctor's findings table.
	Output map[string]any
}

// Failed reports whether the result is a hard failure.
func (r *Result) Failed() bool {
	return r.Status == StatusFailed
}

// newHTTPClient builds the shared probe client. No overall client timeout:
// each check invocation is bounded by its own context deadline.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
