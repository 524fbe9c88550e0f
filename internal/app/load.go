package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/woozymasta/agpconf"
	"github.com/woozymasta/agpconf/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// script is one parsed build script, or the reason it could not be parsed.
type script struct {
	path  string
	model *agpconf.Model
	err   error
}

// loadScripts parses every path concurrently. A script that fails to parse is
// recorded with its error and does not stop the others; only cancellation does.
func loadScripts(ctx context.Context, paths []string, workers int) ([]script, error) {
	logger := ctxlog.FromContext(ctx)
	out := make([]script, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			logger.Debug("Parsing build script.", "path", path)
			m, err := agpconf.DecodeFile(path, &agpconf.ParseOptions{Filename: path})
			if err != nil {
				logger.Error("Failed to parse build script.", "path", path, "error", err)
				out[i] = script{path: path, err: fmt.Errorf("failed to parse %s: %w", path, err)}
				return nil
			}
			logDiagnostics(ctx, m.Diagnostics)

			out[i] = script{path: path, model: m}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("All build scripts loaded.", "count", len(out))

	return out, nil
}

// logDiagnostics reports normalization and build warnings.
func logDiagnostics(ctx context.Context, diags hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	for _, d := range diags {
		attrs := []any{"summary", d.Summary, "detail", d.Detail}
		if d.Subject != nil {
			attrs = append(attrs, "range", d.Subject.String())
		}
		logger.Debug("Build script diagnostic.", attrs...)
	}
}
