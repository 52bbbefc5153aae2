package inference

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/envrig/internal/checks"
	"github.com/vk/envrig/internal/ctxlog"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

// modelsHandler serves an OpenAI-shaped /models listing behind bearer auth.
func modelsHandler(t *testing.T, key string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer "+key {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o-mini"},{"id":"text-embedding-3-small"}]}`))
	})
}

func TestOnCheckInference(t *testing.T) {
	t.Parallel()

	t.Run("Success: endpoint accepts the key", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(modelsHandler(t, "sk-test"))
		defer server.Close()

		input := &Input{BaseURL: server.URL, APIKey: "sk-test"}

		// Act
		output, err := OnCheckInference(testContext(t), &checks.Deps{}, input)

		// Assert
		require.NoError(t, err)
		require.Equal(t, 2, output.Models)
		require.GreaterOrEqual(t, output.LatencyMs, 0.0)
	})

	t.Run("Skip: empty API key", func(t *testing.T) {
		t.Parallel()
		// Arrange
		input := &Input{BaseURL: "http://127.0.0.1:1", APIKey: ""}

		// Act
		output, err := OnCheckInference(testContext(t), &checks.Deps{}, input)

		// Assert
		require.Nil(t, output)
		require.ErrorIs(t, err, checks.ErrSkip)
	})

	t.Run("Failure: endpoint rejects the key", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(modelsHandler(t, "sk-real"))
		defer server.Close()

		input := &Input{BaseURL: server.URL, APIKey: "sk-wrong"}

		// Act
		output, err := OnCheckInference(testContext(t), &checks.Deps{}, input)

		// Assert
		require.Nil(t, output)
		require.Error(t, err)
		require.Contains(t, err.Error(), "rejected the API key")
	})

	t.Run("Success: required model is advertised", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(modelsHandler(t, "sk-test"))
		defer server.Close()

		input := &Input{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-4o-mini"}

		// Act
		output, err := OnCheckInference(testContext(t), &checks.Deps{}, input)

		// Assert
		require.NoError(t, err)
		require.Equal(t, 2, output.Models)
	})

	t.Run("Failure: required model is missing", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(modelsHandler(t, "sk-test"))
		defer server.Close()

		input := &Input{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-payload-9000"}

		// Act
		_, err := OnCheckInference(testContext(t), &checks.Deps{}, input)

		// Assert
		require.Error(t, err)
		require.Contains(t, err.Error(), `model "gpt-payload-9000" is not available`)
	})

	t.Run("Success: trailing slash on base_url is tolerated", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(modelsHandler(t, "sk-test"))
		defer server.Close()

		input := &Input{BaseURL: server.URL + "/", APIKey: "sk-test"}

		// Act
		output, err := OnCheckInference(testContext(t), &checks.Deps{}, input)

		// Assert
		require.NoError(t, err)
		require.Equal(t, 2, output.Models)
	})
}
