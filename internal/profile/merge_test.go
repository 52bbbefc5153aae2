package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/config"
)

func modelWith(profiles ...*config.Profile) *config.Model {
	model := config.NewModel()
	for _, p := range profiles {
		model.Profiles[p.Name] = p
	}
	return model
}

func TestMerge_AppliesDefaultsToEmptyProfile(t *testing.T) {
	// Arrange
	model := modelWith(&config.Profile{Name: "default"})

	// Act
	eff, err := Merge(model, "default")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "node", eff.Environment)
	require.Equal(t, 5*time.Second, eff.TestTimeout)
	require.Equal(t, 10*time.Second, eff.HookTimeout)
	require.False(t, *eff.Globals)
	require.False(t, *eff.CSS)
}

func TestMerge_ExtendsOverridesScalarsAndMergesMaps(t *testing.T) {
	// Arrange
	on := true
	model := modelWith(
		&config.Profile{
			Name:        "default",
			Environment: "node",
			Globals:     &on,
			TestTimeout: 5 * time.Second,
			Env: map[string]string{
				"NEXT_PUBLIC_SUPABASE_URL":             "https://test.supabase.co",
				"NEXT_PUBLIC_SUPABASE_PUBLISHABLE_KEY": "test-key-placeholder",
			},
			Aliases: map[string]string{"@": "."},
		},
		&config.Profile{
			Name:        "browser",
			Extends:     "default",
			Environment: "browser",
			TestTimeout: 30 * time.Second,
			HookTimeout: 120 * time.Second,
			Env:         map[string]string{"OPENAI_API_KEY": ""},
		},
	)

	// Act
	eff, err := Merge(model, "browser")

	// Assert
	require.NoError(t, err)
	require.Equal(t, "browser", eff.Environment)
	require.Equal(t, 30*time.Second, eff.TestTimeout)
	require.Equal(t, 120*time.Second, eff.HookTimeout)
	require.True(t, *eff.Globals, "unset globals should inherit from the base")

	require.Equal(t, "https://test.supabase.co", eff.Env["NEXT_PUBLIC_SUPABASE_URL"])
	require.Equal(t, "test-key-placeholder", eff.Env["NEXT_PUBLIC_SUPABASE_PUBLISHABLE_KEY"])

	value, declared := eff.Env["OPENAI_API_KEY"]
	require.True(t, declared, "empty fallback must stay declared")
	require.Equal(t, "", value)
}

func TestMerge_ListsReplaceWholesale(t *testing.T) {
	// Arrange
	model := modelWith(
		&config.Profile{
			Name:    "default",
			Setup:   []string{"@/scripts/reset.sh", "@/scripts/seed.sh"},
			Plugins: []string{"nodeenv"},
		},
		&config.Profile{
			Name:    "browser",
			Extends: "default",
			Setup:   []string{"@/scripts/browser.sh"},
		},
	)

	// Act
	eff, err := Merge(model, "browser")

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"@/scripts/browser.sh"}, eff.Setup, "setup lists replace, not append")
	require.Equal(t, []string{"nodeenv"}, eff.Plugins, "unset plugins inherit from the base")
}

func TestMerge_CycleIsAnError(t *testing.T) {
	// Arrange
	model := modelWith(
		&config.Profile{Name: "a", Extends: "b"},
		&config.Profile{Name: "b", Extends: "a"},
	)

	// Act
	_, err := Merge(model, "a")

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "extends cycle")
	require.Contains(t, err.Error(), "a -> b -> a")
}

func TestMerge_UnknownBaseIsAnError(t *testing.T) {
	// Arrange
	model := modelWith(&config.Profile{Name: "ci", Extends: "missing"})

	// Act
	_, err := Merge(model, "ci")

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), `extends "missing"`)
}

func TestMerge_UnknownProfileIsAnError(t *testing.T) {
	// Act
	_, err := Merge(config.NewModel(), "nope")

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown profile "nope"`)
}
