package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/envrig/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Print resolves the selected profile and writes it to the output writer in
// the configured encoding. This output is the machine boundary external test
// tooling consumes, which is why logs never share its writer.
func (a *App) Print(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	resolved, err := a.resolveProfile(ctx)
	if err != nil {
		return err
	}

	view := resolved.View()
	switch a.appConfig.Format {
	case "yaml":
		data, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to encode resolved profile as yaml: %w", err)
		}
		_, err = a.outW.Write(data)
		return err
	default:
		encoder := json.NewEncoder(a.outW)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(view); err != nil {
			return fmt.Errorf("failed to encode resolved profile as json: %w", err)
		}
		return nil
	}
}
