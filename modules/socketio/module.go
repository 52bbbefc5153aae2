package socketio

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Plugin interface for this package.
type Module struct{}

// Name returns the identifier profiles use in their plugins list.
func (m *Module) Name() string { return "socketio" }

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	URL                string            `rig:"url"`
	Namespace          string            `rig:"namespace"`
	OnEvent            string            `rig:"on_event"`
	EmitEvent          string            `rig:"emit_event"`
	EmitData           map[string]string `rig:"emit_data"`
	Timeout            string            `rig:"timeout"`
	InsecureSkipVerify bool              `rig:"insecure_skip_verify"`
}

// Output defines the data structure returned by the check.
type Output struct {
	Event        string `cty:"event"`
	ResponseJSON string `cty:"response_json"`
}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value *Output
	err   error
}

// OnCheckSocketIO is the handler for the 'socketio' check's on_check event.
// An empty on_event makes this a pure connectivity probe; setting emit_event
// and on_event turns it into an emit-and-wait echo check.
func OnCheckSocketIO(ctx context.Context, deps *checks.Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("check", "socketio", "url", input.URL, "onEvent", input.OnEvent, "emitEvent", input.EmitEvent)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s.", "inputTimeout", input.Timeout, "error", err)
		timeout = 10 * time.Second
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected.", "namespace", input.Namespace, "sid", io.Id())
		if input.EmitEvent != "" {
			jsonData, _ := json.Marshal(input.EmitData)
			logger.Debug("Emitting event.", "event", input.EmitEvent, "data", string(jsonData))
			io.Emit(input.EmitEvent, input.EmitData)
		}
		if input.OnEvent == "" {
			done <- opResult{value: &Output{Event: "connect"}}
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: fmt.Errorf("connect error: %v", errs[0])}
	})

	if input.OnEvent != "" {
		io.On(types.EventName(input.OnEvent), func(data ...any) {
			output := &Output{Event: input.OnEvent}
			if len(data) > 0 {
				if encoded, jsonErr := json.Marshal(data[0]); jsonErr == nil {
					output.ResponseJSON = string(encoded)
				}
			}
			done <- opResult{value: output}
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", input.OnEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		return res.value, res.err
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterCheck("OnCheckSocketIO", &registry.RegisteredCheck{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnCheckSocketIO,
	})
}
