package checks

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/envrig/internal/config"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/profile"
	"github.com/vk/envrig/internal/registry"
)

// DefaultWorkers bounds check concurrency when no worker count is configured.
const DefaultWorkers = 4

// Engine executes check instances against a resolved profile.
type Engine struct {
	registry  *registry.Registry
	converter config.Converter
	workers   int
	strict    bool
}

// NewEngine creates a check engine. A non-positive worker count falls back
// to DefaultWorkers. In strict mode the first hard failure cancels the
// remaining checks.
func NewEngine(reg *registry.Registry, conv config.Converter, workers int, strict bool) *Engine {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{
		registry:  reg,
		converter: conv,
		workers:   workers,
		strict:    strict,
	}
}

// Run executes every check of the resolved profile through the worker pool
// and returns one result per check, in declared order. The error return is
// reserved for engine failures; check outcomes live in the results.
func (e *Engine) Run(ctx context.Context, resolved *profile.Resolved) ([]*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if len(resolved.Checks) == 0 {
		logger.Debug("No checks declared, nothing to run.")
		return nil, nil
	}

	runLogger := logger.With("run_id", uuid.NewString())
	runCtx, cancel := context.WithCancel(ctxlog.WithLogger(ctx, runLogger))
	defer cancel()

	deps := &Deps{
		HTTP:      newHTTPClient(),
		Env:       make(map[string]string, len(resolved.Env)),
		Fallbacks: make(map[string]string, len(resolved.Env)),
		Profile:   resolved.Profile,
	}
	for name, rv := range resolved.Env {
		deps.Env[name] = rv.Value
		deps.Fallbacks[name] = rv.Fallback
	}
	defer deps.HTTP.CloseIdleConnections()

	evalCtx := resolved.EvalContext()

	workerCount := e.workers
	if workerCount > len(resolved.Checks) {
		workerCount = len(resolved.Checks)
	}
	runLogger.Info("▶️ Running checks.", "checks", len(resolved.Checks), "workers", workerCount)

	results := make([]*Result, len(resolved.Checks))
	workChan := make(chan int)
	var wg sync.WaitGroup
	wg.Add(len(resolved.Checks))

	for workerID := 0; workerID < workerCount; workerID++ {
		go e.worker(runCtx, workChan, cancel, workerID, resolved, deps, evalCtx, results, &wg)
	}
	for i := range resolved.Checks {
		workChan <- i
	}
	close(workChan)
	wg.Wait()

	failed := 0
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}
	if failed > 0 {
		runLogger.Error("Checks finished with failures.", "failed", failed, "total", len(results))
	} else {
		runLogger.Info("✅ Checks finished.", "total", len(results))
	}
	return results, nil
}

// worker is the core processing loop for a single concurrent worker.
func (e *Engine) worker(
	ctx context.Context,
	workChan chan int,
	cancel context.CancelFunc,
	workerID int,
	resolved *profile.Resolved,
	deps *Deps,
	evalCtx *hcl.EvalContext,
	results []*Result,
	wg *sync.WaitGroup,
) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for idx := range workChan {
		check := resolved.Checks[idx]
		workerLogger := logger.With("workerID", workerID, "check", check.Type+"."+check.Name)

		if ctx.Err() != nil {
			results[idx] = &Result{Type: check.Type, Name: check.Name, Status: StatusSkipped, Err: ctx.Err()}
			wg.Done()
			continue
		}

		workerLogger.Debug("Worker picked up check.")
		result := e.runCheck(ctx, check, resolved, deps, evalCtx)
		results[idx] = result

		if result.Failed() {
			workerLogger.Error("Check failed.", "error", result.Err)
			if e.strict {
				cancel()
			}
		}
		wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// runCheck decodes one check's arguments, calls its registered handler under
// the per-check timeout, and classifies the outcome.
func (e *Engine) runCheck(
	ctx context.Context,
	check *config.Check,
	resolved *profile.Resolved,
	deps *Deps,
	evalCtx *hcl.EvalContext,
) *Result {
	logger := ctxlog.FromContext(ctx).With("check", check.Type+"."+check.Name)
	result := &Result{Type: check.Type, Name: check.Name}
	started := time.Now()
	defer func() { result.Duration = time.Since(started) }()

	logger.Info("▶️ Starting check.")

	def, ok := e.registry.CheckDefinitions[check.Type]
	if !ok {
		result.Status, result.Err = StatusFailed, fmt.Errorf("unknown check type '%s'", check.Type)
		return result
	}
	handler, ok := e.registry.CheckHandlers[def.Lifecycle.OnCheck]
	if !ok {
		result.Status, result.Err = StatusFailed, fmt.Errorf("handler '%s' not registered", def.Lifecycle.OnCheck)
		return result
	}

	inputStruct := handler.NewInput()
	if inputStruct != nil {
		if err := e.converter.DecodeArguments(ctx, inputStruct, check.Arguments, def.Inputs, evalCtx); err != nil {
			result.Status = StatusFailed
			result.Err = fmt.Errorf("failed to decode arguments for check %s.%s: %w", check.Type, check.Name, err)
			return result
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, resolved.HookTimeout)
	defer cancel()

	logger.Debug("Calling check handler.", "handler", def.Lifecycle.OnCheck)
	handlerFunc := reflect.ValueOf(handler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(checkCtx), reflect.ValueOf(deps)}
	if inputStruct == nil {
		inputType := handlerFunc.Type().In(2)
		callArgs = append(callArgs, reflect.Zero(inputType))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(inputStruct))
	}

	outs := handlerFunc.Call(callArgs)
	nativeOutput, errResult := outs[0].Interface(), outs[1].Interface()
	if errResult != nil {
		err := errResult.(error)
		switch {
		case errors.Is(err, ErrSkip):
			result.Status, result.Err = StatusSkipped, err
			logger.Info("Check skipped.", "reason", err)
		case errors.Is(err, ErrWarn):
			result.Status, result.Err = StatusWarning, err
			logger.Warn("Check finished with a warning.", "warning", err)
		default:
			result.Status, result.Err = StatusFailed, err
		}
		return result
	}

	output, err := e.outputToMap(nativeOutput)
	if err != nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("failed to convert handler output for check %s.%s: %w", check.Type, check.Name, err)
		return result
	}
	result.Status = StatusPassed
	result.Output = output

	logger.Info("✅ Finished check.", "duration", time.Since(started))
	return result
}

// outputToMap renders a handler's output struct into the findings map via
// the converter, so outputs pass through the same cty typing as inputs.
func (e *Engine) outputToMap(nativeOutput any) (map[string]any, error) {
	if nativeOutput == nil {
		return nil, nil
	}
	if v := reflect.ValueOf(nativeOutput); v.Kind() == reflect.Ptr && v.IsNil() {
		return nil, nil
	}

	ctyOutput, err := e.converter.ToCtyValue(nativeOutput)
	if err != nil {
		return nil, err
	}
	if ctyOutput.IsNull() {
		return nil, nil
	}
	native, err := e.converter.ToNative(ctyOutput)
	if err != nil {
		return nil, err
	}
	if m, ok := native.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"value": native}, nil
}
