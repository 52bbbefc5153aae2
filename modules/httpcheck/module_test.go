package httpcheck

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

func TestOnCheckHTTP(t *testing.T) {
	t.Parallel()

	t.Run("Success: passes on expected status", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		deps := &checks.Deps{HTTP: server.Client()}
		input := &Input{URL: server.URL, Method: http.MethodGet, ExpectStatus: http.StatusOK}

		// Act
		output, err := OnCheckHTTP(testContext(t), deps, input)

		// Assert
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, output.StatusCode)
		require.GreaterOrEqual(t, output.LatencyMs, 0.0)
	})

	t.Run("Failure: reports unexpected status", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		deps := &checks.Deps{HTTP: server.Client()}
		input := &Input{URL: server.URL, Method: http.MethodGet, ExpectStatus: http.StatusOK}

		// Act
		output, err := OnCheckHTTP(testContext(t), deps, input)

		// Assert
		require.Error(t, err)
		require.Nil(t, output)
		require.Contains(t, err.Error(), "got 503, want 200")
	})

	t.Run("Success: uses the configured method", func(t *testing.T) {
		t.Parallel()
		// Arrange
		methodChan := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methodChan <- r.Method
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		deps := &checks.Deps{HTTP: server.Client()}
		input := &Input{URL: server.URL, Method: http.MethodHead, ExpectStatus: http.StatusNoContent}

		// Act
		_, err := OnCheckHTTP(testContext(t), deps, input)

		// Assert
		require.NoError(t, err)
		require.Equal(t, http.MethodHead, <-methodChan)
	})

	t.Run("Failure: unreachable endpoint surfaces transport error", func(t *testing.T) {
		t.Parallel()
		// Arrange: a server that is already closed.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		deps := &checks.Deps{HTTP: http.DefaultClient}
		input := &Input{URL: url, Method: http.MethodGet, ExpectStatus: http.StatusOK}

		// Act
		_, err := OnCheckHTTP(testContext(t), deps, input)

		// Assert
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to execute request")
	})
}
