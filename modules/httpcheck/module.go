package httpcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/registry"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the identifier profiles use in their plugins list.
func (m *Module) Name() string { return "httpcheck" }

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	URL          string `rig:"url"`
	Method       string `rig:"method"`
	ExpectStatus int    `rig:"expect_status"`
}

// Output defines the data structure returned by the check.
type Output struct {
	StatusCode int     `cty:"status_code"`
	LatencyMs  float64 `cty:"latency_ms"`
}

// OnCheckHTTP is the handler for the 'http' check's on_check event.
func OnCheckHTTP(ctx context.Context, deps *checks.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("check", "http", "method", input.Method, "url", input.URL)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	req, err := http.NewRequestWithContext(ctx, input.Method, input.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := deps.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the shared transport can reuse the connection.
	_, _ = io.Copy(io.Discard, resp.Body)
	latency := time.Since(start)

	logger.Debug("Received HTTP response.", "status", resp.Status, "latency", latency)

	if resp.StatusCode != input.ExpectStatus {
		return nil, fmt.Errorf("unexpected status for %s: got %d, want %d", input.URL, resp.StatusCode, input.ExpectStatus)
	}

	return &Output{
		StatusCode: resp.StatusCode,
		LatencyMs:  float64(latency.Microseconds()) / 1000.0,
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCheck("OnCheckHTTP", &registry.RegisteredCheck{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnCheckHTTP,
	})
}
