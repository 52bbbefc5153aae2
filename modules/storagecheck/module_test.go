package storagecheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
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

// storageServer is a minimal object store: GET /health answers 200, PUT and
// GET on any other path write and read an in-memory object.
type storageServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	apiKeys []string
}

func newStorageServer() *storageServer {
	return &storageServer{objects: make(map[string][]byte)}
}

func (s *storageServer) object(objectPath string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[objectPath]
}

func (s *storageServer) seenKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.apiKeys...)
}

func (s *storageServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiKeys = append(s.apiKeys, r.Header.Get("apikey"))

	if r.URL.Path == "/health" {
		w.WriteHeader(http.StatusOK)
		return
	}
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		s.objects[r.URL.Path] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := s.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestOnCheckStorage(t *testing.T) {
	t.Parallel()

	t.Run("Success: health only", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(newStorageServer())
		defer server.Close()

		deps := &checks.Deps{HTTP: server.Client()}
		input := &Input{URL: server.URL + "/health"}

		// Act
		output, err := OnCheckStorage(testContext(t), deps, input)

		// Assert
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, output.StatusCode)
		require.False(t, output.RoundTrip)
	})

	t.Run("Success: round trip writes and reads the probe back", func(t *testing.T) {
		t.Parallel()
		// Arrange
		store := newStorageServer()
		server := httptest.NewServer(store)
		defer server.Close()

		deps := &checks.Deps{HTTP: server.Client()}
		input := &Input{
			URL:       server.URL + "/health",
			APIKey:    "pk-test",
			UploadURL: server.URL + "/probes/envrig-probe.txt",
		}

		// Act
		output, err := OnCheckStorage(testContext(t), deps, input)

		// Assert
		require.NoError(t, err)
		require.True(t, output.RoundTrip)
		require.Equal(t, []byte(probePayload), store.object("/probes/envrig-probe.txt"))
		for _, key := range store.seenKeys() {
			require.Equal(t, "pk-test", key, "every request should carry the apikey header")
		}
	})

	t.Run("Failure: unhealthy endpoint", func(t *testing.T) {
		t.Parallel()
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		deps := &checks.Deps{HTTP: server.Client()}
		input := &Input{URL: server.URL + "/health"}

		// Act
		output, err := OnCheckStorage(testContext(t), deps, input)

		// Assert
		require.Nil(t, output)
		require.Error(t, err)
		require.Contains(t, err.Error(), "storage endpoint unhealthy")
	})

	t.Run("Failure: read-back returns a different object", func(t *testing.T) {
		t.Parallel()
		// Arrange: a server that accepts writes but always serves junk.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.Method == http.MethodPut {
				w.WriteHeader(http.StatusOK)
				return
			}
			_, _ = w.Write([]byte("corrupted"))
		}))
		defer server.Close()

		deps := &checks.Deps{HTTP: server.Client()}
		input := &Input{URL: server.URL + "/health", UploadURL: server.URL + "/probes/p.txt"}

		// Act
		_, err := OnCheckStorage(testContext(t), deps, input)

		// Assert
		require.Error(t, err)
		require.Contains(t, err.Error(), "read-back mismatch")
	})
}
