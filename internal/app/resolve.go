package app

import (
	"context"

	"github.com/woozymasta/agpconf"
	"github.com/woozymasta/agpconf/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// VariantResult is one resolved variant or the reason it failed.
type VariantResult struct {
	Name    string           `json:"name" yaml:"name"`                           // Variant name
	Variant *agpconf.Variant `json:"variant,omitempty" yaml:"variant,omitempty"` // Resolved variant
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`     // Resolution failure
}

// resolveJob is one variant request of one script.
type resolveJob struct {
	script int
	slot   int
	req    agpconf.Request
}

// resolveVariants resolves the requested variants of every script concurrently.
// Results keep script order and request order.
func (a *App) resolveVariants(ctx context.Context, scripts []script) ([][]VariantResult, error) {
	logger := ctxlog.FromContext(ctx)
	opt := &agpconf.ResolveOptions{NamespaceFallback: a.config.NamespaceFallback}

	results := make([][]VariantResult, len(scripts))
	var jobs []resolveJob
	for i, s := range scripts {
		if s.model == nil {
			continue
		}
		reqs, err := a.requests(s.model)
		if err != nil {
			results[i] = []VariantResult{{Name: a.config.Variant, Error: err.Error()}}
			continue
		}

		results[i] = make([]VariantResult, len(reqs))
		for j, req := range reqs {
			results[i][j].Name = req.Name()
			jobs = append(jobs, resolveJob{script: i, slot: j, req: req})
		}
	}
	logger.Debug("Variant requests planned.", "count", len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := &results[job.script][job.slot]
			v, err := scripts[job.script].model.Resolve(job.req, opt)
			if err != nil {
				logger.Debug("Variant failed to resolve.", "path", scripts[job.script].path, "variant", res.Name, "error", err)
				res.Error = err.Error()
				return nil
			}

			res.Variant = &v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// requests returns the variant requests the config asks for on m.
func (a *App) requests(m *agpconf.Model) ([]agpconf.Request, error) {
	if !a.config.explicitRequest() {
		return m.VariantRequests(), nil
	}

	if a.config.Variant != "" {
		req, err := m.ParseRequest(a.config.Variant)
		if err != nil {
			return nil, err
		}
		return []agpconf.Request{req}, nil
	}

	return []agpconf.Request{{Flavors: a.config.Flavors, BuildType: a.config.BuildType}}, nil
}
