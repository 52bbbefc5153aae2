package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/envrig/internal/ctxlog"
	"github.com/vk/envrig/internal/watch"
)

// DoctorWatch runs doctor once, then re-runs it whenever the configuration,
// manifests or dotenv layers change. It blocks until the context is canceled.
// Doctor failures do not stop the loop: the next change may fix the rig.
func (a *App) DoctorWatch(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if a.appConfig.StatusPort > 0 {
		server := a.startStatusServer(a.appConfig.StatusPort)
		defer a.stopStatusServer(server)
	}

	paths := []string{a.appConfig.ConfigPath}
	if a.appConfig.ModulesPath != "" {
		paths = append(paths, a.appConfig.ModulesPath)
	}
	if a.appConfig.EnvDir != "" {
		paths = append(paths, a.appConfig.EnvDir)
	}
	watcher, err := watch.New(ctx, watch.DefaultDebounce, paths...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	for {
		if err := a.Doctor(ctx); err != nil {
			a.logger.Error("Doctor run reported problems.", "error", err)
		}

		select {
		case <-ctx.Done():
			a.logger.Info("Watch mode stopping.")
			return nil
		case path, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			a.logger.Info("🔄 Configuration changed, re-running doctor.", "path", path)
			if err := a.load(ctx); err != nil {
				// Keep serving the last good model until the config parses again.
				a.logger.Error("Reload failed, keeping previous configuration.", "error", err)
			}
		}
	}
}

// statusHandler answers the watch loop's liveness probe.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startStatusServer exposes a liveness endpoint while watch mode runs, so CI
// sidecars can tell a watching envrig from a wedged one.
func (a *App) startStatusServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.statusHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		a.logger.Info("🩺 Status server starting.", "address", fmt.Sprintf("http://localhost%s/health", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Status server failed unexpectedly.", "error", err)
		}
	}()
	return server
}

func (a *App) stopStatusServer(server *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("🩺 Shutting down status server.")
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Status server shutdown failed.", "error", err)
	}
}
