package inference

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/registry"
	"resty.dev/v3"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the identifier profiles use in their plugins list.
func (m *Module) Name() string { return "inference" }

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	BaseURL string `rig:"base_url"`
	APIKey  string `rig:"api_key"`
	Model   string `rig:"model"`
}

// Output defines the data structure returned by the check.
type Output struct {
	Models    int     `cty:"models"`
	LatencyMs float64 `cty:"latency_ms"`
}

// modelsPayload is the OpenAI-compatible list response for /models.
type modelsPayload struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// OnCheckInference is the handler for the 'inference' check's on_check event.
// An empty API key skips the check: suites that never touch the endpoint run
// without credentials on purpose.
func OnCheckInference(ctx context.Context, deps *checks.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("check", "inference", "baseUrl", input.BaseURL, "model", input.Model)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	if input.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key resolved for the inference endpoint", checks.ErrSkip)
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(input.BaseURL, "/")).
		SetAuthToken(input.APIKey)
	defer client.Close()

	payload := &modelsPayload{}
	started := time.Now()
	res, err := client.R().
		SetContext(ctx).
		SetResult(payload).
		Get("/models")
	if err != nil {
		return nil, fmt.Errorf("failed to reach inference endpoint: %w", err)
	}
	latency := time.Since(started)

	logger.Debug("Received models response.", "status", res.StatusCode(), "models", len(payload.Data), "latency", latency)

	if res.StatusCode() == http.StatusUnauthorized || res.StatusCode() == http.StatusForbidden {
		return nil, fmt.Errorf("inference endpoint rejected the API key: %s", res.Status())
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("inference endpoint unhealthy: %s", res.Status())
	}

	if input.Model != "" && !hasModel(payload, input.Model) {
		return nil, fmt.Errorf("model %q is not available on the inference endpoint", input.Model)
	}

	return &Output{
		Models:    len(payload.Data),
		LatencyMs: float64(latency.Microseconds()) / 1000.0,
	}, nil
}

func hasModel(payload *modelsPayload, model string) bool {
	for _, entry := range payload.Data {
		if entry.ID == model {
			return true
		}
	}
	return false
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCheck("OnCheckInference", &registry.RegisteredCheck{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnCheckInference,
	})
}
