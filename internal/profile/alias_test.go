package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	aliases := map[string]string{
		"@":           "/proj",
		"@components": "/proj/src/components",
	}

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "root alias", in: "@/scripts/seed.sh", want: "/proj/scripts/seed.sh"},
		{name: "exact match", in: "@", want: "/proj"},
		{name: "longest alias wins", in: "@components/Button.tsx", want: "/proj/src/components/Button.tsx"},
		{name: "segment boundary respected", in: "@componentsextra/x", want: "@componentsextra/x"},
		{name: "no alias", in: "scripts/seed.sh", want: "scripts/seed.sh"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExpandPath(tc.in, aliases))
		})
	}
}

func TestExpandPath_SinglePass(t *testing.T) {
	// Alias targets are literal: a target that itself looks like an alias
	// reference must not be expanded again.
	aliases := map[string]string{
		"@":    "/proj",
		"@lib": "@/lib",
	}

	require.Equal(t, "@/lib/util.ts", ExpandPath("@lib/util.ts", aliases))
}

func TestAnchorAliases(t *testing.T) {
	// Arrange
	root := t.TempDir()

	// Act
	anchored := anchorAliases(map[string]string{
		"@src": "src",
		"@abs": "/somewhere/else",
	}, root)

	// Assert
	require.Equal(t, filepath.Join(root, "src"), anchored["@src"])
	require.Equal(t, "/somewhere/else", anchored["@abs"])
	require.Equal(t, root, anchored["@"], "default root alias should be injected")
}

func TestIsSensitive(t *testing.T) {
	require.True(t, IsSensitive("OPENAI_API_KEY"))
	require.True(t, IsSensitive("NEXT_PUBLIC_SUPABASE_PUBLISHABLE_KEY"))
	require.True(t, IsSensitive("session_token"))
	require.True(t, IsSensitive("DB_PASSWORD"))
	require.False(t, IsSensitive("NEXT_PUBLIC_SUPABASE_URL"))

	require.Equal(t, "[redacted]", RedactValue("OPENAI_API_KEY", "sk-123"))
	require.Equal(t, "", RedactValue("OPENAI_API_KEY", ""), "absent credentials stay visible as empty")
	require.Equal(t, "https://x", RedactValue("BASE_URL", "https://x"))
}
