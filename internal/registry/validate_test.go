package registry

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/config"
	"github.com/vk/envrig/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func manifestWith(inputs map[string]cty.Type) *config.CheckDefinition {
	def := &config.CheckDefinition{
		Type:      "http",
		Lifecycle: &config.CheckLifecycle{OnCheck: "OnCheckHTTP"},
		Inputs:    make(map[string]*config.InputDefinition),
		Outputs:   make(map[string]*config.OutputDefinition),
	}
	for name, ty := range inputs {
		def.Inputs[name] = &config.InputDefinition{Name: name, Type: ty}
	}
	return def
}

func TestValidate_ParityOK(t *testing.T) {
	// Arrange
	type input struct {
		URL    string `rig:"url"`
		Method string `rig:"method"`
	}
	r := New()
	r.RegisterCheck("OnCheckHTTP", &RegisteredCheck{
		NewInput:  func() any { return new(input) },
		InputType: reflect.TypeOf(input{}),
		Fn:        func() {},
	})
	r.CheckDefinitions["http"] = manifestWith(map[string]cty.Type{
		"url":    cty.String,
		"method": cty.String,
	})

	// Act & Assert
	require.NoError(t, r.Validate(testContext()))
}

func TestValidate_ManifestWithoutHandlerFails(t *testing.T) {
	// Arrange
	r := New()
	r.CheckDefinitions["http"] = manifestWith(nil)

	// Act
	err := r.Validate(testContext())

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such handler is registered")
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	// Arrange: the manifest declares an input the struct lacks, and the
	// struct carries a field the manifest never mentions.
	type input struct {
		Extra string `rig:"extra"`
	}
	r := New()
	r.RegisterCheck("OnCheckHTTP", &RegisteredCheck{
		NewInput:  func() any { return new(input) },
		InputType: reflect.TypeOf(input{}),
		Fn:        func() {},
	})
	r.CheckDefinitions["http"] = manifestWith(map[string]cty.Type{"url": cty.String})

	// Act
	err := r.Validate(testContext())

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "input 'extra' which is not declared in manifest")
	require.Contains(t, err.Error(), "input 'url' which is not found in Go struct")
}

func TestValidate_TypeMismatchFails(t *testing.T) {
	// Arrange
	type input struct {
		Port int `rig:"port"`
	}
	r := New()
	r.RegisterCheck("OnCheckHTTP", &RegisteredCheck{
		NewInput:  func() any { return new(input) },
		InputType: reflect.TypeOf(input{}),
		Fn:        func() {},
	})
	r.CheckDefinitions["http"] = manifestWith(map[string]cty.Type{"port": cty.String})

	// Act
	err := r.Validate(testContext())

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "type mismatch")
}

func TestValidateProfiles(t *testing.T) {
	// Arrange
	r := New()
	r.RegisterEnvironment("node", &RegisteredEnvironment{Description: "plain process env"})
	r.Plugins["nodeenv"] = nil

	model := config.NewModel()
	model.Profiles["default"] = &config.Profile{
		Name:        "default",
		Environment: "node",
		Plugins:     []string{"nodeenv"},
	}
	model.Profiles["broken"] = &config.Profile{
		Name:        "broken",
		Environment: "browser",
		Plugins:     []string{"render"},
		Checks:      []*config.Check{{Type: "http", Name: "health"}},
	}

	// Act
	err := r.ValidateProfiles(model)

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "environment 'browser' is not provided")
	require.Contains(t, err.Error(), "plugin 'render' is not registered")
	require.Contains(t, err.Error(), "check 'http' 'health' has no loaded manifest")
	require.NotContains(t, err.Error(), "profile 'default'")
}

func TestRegisterCheck_DuplicatePanics(t *testing.T) {
	r := New()
	r.RegisterCheck("OnCheckHTTP", &RegisteredCheck{Fn: func() {}})
	require.Panics(t, func() {
		r.RegisterCheck("OnCheckHTTP", &RegisteredCheck{Fn: func() {}})
	})
}

func TestPopulateDefinitionsFromModel(t *testing.T) {
	// Arrange
	model := config.NewModel()
	model.Checks["http"] = manifestWith(nil)
	model.Environments["node"] = &config.EnvironmentDefinition{Name: "node"}

	// Act
	r := New()
	r.PopulateDefinitionsFromModel(model)

	// Assert
	require.Contains(t, r.CheckDefinitions, "http")
	require.Contains(t, r.EnvironmentDefs, "node")
}
