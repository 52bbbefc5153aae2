package storagecheck

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"reflect"
	"strings"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/registry"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the identifier profiles use in their plugins list.
func (m *Module) Name() string { return "storagecheck" }

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	URL       string `rig:"url"`
	APIKey    string `rig:"api_key"`
	UploadURL string `rig:"upload_url"`
}

// Output defines the data structure returned by the check.
type Output struct {
	StatusCode int  `cty:"status_code"`
	RoundTrip  bool `cty:"round_trip"`
}

// probePayload is the small object written and read back during a round trip.
const probePayload = "storage round-trip probe"

// OnCheckStorage is the handler for the 'storage' check's on_check event.
func OnCheckStorage(ctx context.Context, deps *checks.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("check", "storage", "url", input.URL)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	status, err := probeHealth(ctx, deps, input)
	if err != nil {
		return nil, err
	}

	output := &Output{StatusCode: status}
	if input.UploadURL == "" {
		return output, nil
	}

	if err := roundTrip(ctx, deps, input); err != nil {
		return nil, err
	}
	output.RoundTrip = true
	return output, nil
}

// authorize sets the header pair storage services expect. Supabase-style
// gateways read the apikey header, S3-compatible proxies read the bearer.
func authorize(req *http.Request, apiKey string) {
	if apiKey == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("apikey", apiKey)
}

func probeHealth(ctx context.Context, deps *checks.Deps, input *Input) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create health request: %w", err)
	}
	authorize(req, input.APIKey)

	resp, err := deps.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to reach storage endpoint: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("storage endpoint unhealthy: %s", resp.Status)
	}
	return resp.StatusCode, nil
}

// roundTrip overwrites the probe object at the upload URL and reads it back.
func roundTrip(ctx context.Context, deps *checks.Deps, input *Input) error {
	logger := ctxlog.FromContext(ctx).With("action", "round_trip", "uploadUrl", input.UploadURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, input.UploadURL, strings.NewReader(probePayload))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	authorize(req, input.APIKey)

	contentType := mime.TypeByExtension(path.Ext(input.UploadURL))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(probePayload))

	logger.Debug("Uploading probe object.", "size", len(probePayload), "contentType", contentType)

	resp, err := deps.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	readReq, err := http.NewRequestWithContext(ctx, http.MethodGet, input.UploadURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create read-back request: %w", err)
	}
	authorize(readReq, input.APIKey)

	readResp, err := deps.HTTP.Do(readReq)
	if err != nil {
		return fmt.Errorf("failed to execute read-back request: %w", err)
	}
	defer readResp.Body.Close()

	if readResp.StatusCode < 200 || readResp.StatusCode >= 300 {
		return fmt.Errorf("read-back failed with status: %s", readResp.Status)
	}
	body, err := io.ReadAll(readResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stored object: %w", err)
	}
	if string(body) != probePayload {
		return fmt.Errorf("read-back mismatch: stored object does not match the uploaded probe")
	}

	logger.Debug("Round trip verified.")
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCheck("OnCheckStorage", &registry.RegisteredCheck{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnCheckStorage,
	})
}
