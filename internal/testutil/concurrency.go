package testutil

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/registry"
)

// MockSleeperPlugin is a shared, self-contained plugin for concurrency tests.
// It records the execution interval of each check instance that uses it.
type MockSleeperPlugin struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockSleeperPlugin creates a new sleeper plugin for testing.
func NewMockSleeperPlugin(completionChan chan<- string, sleep time.Duration) *MockSleeperPlugin {
	return &MockSleeperPlugin{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

// Name implements the registry.Plugin interface.
func (p *MockSleeperPlugin) Name() string { return "sleeper" }

// Register registers the "sleeper" check's Go handler.
func (p *MockSleeperPlugin) Register(r *registry.Registry) {
	type sleeperInput struct {
		ID string `rig:"id"`
	}

	r.RegisterCheck("OnCheckSleeper", &registry.RegisteredCheck{
		NewInput:  func() any { return new(sleeperInput) },
		InputType: reflect.TypeOf(sleeperInput{}),
		Fn: func(_ context.Context, _ *checks.Deps, input *sleeperInput) (any, error) {
			startTime := time.Now()
			time.Sleep(p.sleepDuration)
			endTime := time.Now()

			p.mu.Lock()
			p.ExecutionTimes[input.ID] = &ExecutionRecord{Start: startTime, End: endTime}
			p.mu.Unlock()

			if p.completionChan != nil {
				p.completionChan <- input.ID
			}
			return nil, nil
		},
	})
}

// SleeperManifest is the manifest matching MockSleeperPlugin, for tests that
// load modules from files.
const SleeperManifest = `
check "sleeper" {
  description = "Sleeps and records when it ran."
  lifecycle {
    on_check = "OnCheckSleeper"
  }
  input "id" {
    type = string
  }
}
`
