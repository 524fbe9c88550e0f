package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/woozymasta/agpconf"
	"github.com/woozymasta/agpconf/internal/ctxlog"
)

// Report is the output for one build script.
type Report struct {
	File     string           `json:"file" yaml:"file"`                             // Script path
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`       // Lex or parse failure
	Variants []VariantResult  `json:"variants,omitempty" yaml:"variants,omitempty"` // Resolve mode
	Summary  *agpconf.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`   // Inspect mode
	Issues   []agpconf.Issue  `json:"issues,omitempty" yaml:"issues,omitempty"`     // Validate mode
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. Results go to outW,
// logs go to logW.
func NewApp(outW, logW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: config,
	}
}

// Run loads the configured scripts, computes the report for the configured
// mode and renders it. Parse failures, variant failures and validation errors
// are rendered and then returned as an error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	scripts, err := loadScripts(ctx, a.config.Paths, a.config.WorkerCount)
	if err != nil {
		return err
	}

	reports := make([]Report, len(scripts))
	broken := 0
	for i, s := range scripts {
		reports[i].File = s.path
		if s.err != nil {
			reports[i].Error = s.err.Error()
			broken++
		}
	}

	failed := 0
	switch a.config.Mode {
	case ModeInspect:
		for i, s := range scripts {
			if s.model == nil {
				continue
			}
			summary := s.model.Inspect()
			reports[i].Summary = &summary
		}

	case ModeValidate:
		for i, s := range scripts {
			if s.model == nil {
				continue
			}
			issues := agpconf.Validate(s.model, nil)
			for _, issue := range issues {
				if issue.Level == agpconf.IssueError {
					failed++
				}
			}
			reports[i].Issues = issues
		}

	default:
		results, err := a.resolveVariants(ctx, scripts)
		if err != nil {
			return err
		}
		for i := range reports {
			reports[i].Variants = results[i]
			for _, r := range results[i] {
				if r.Error != "" {
					failed++
				}
			}
		}
	}

	if err := render(a.outW, a.config.Format, reports); err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	var errs []error
	if broken > 0 {
		errs = append(errs, fmt.Errorf("%d scripts failed to parse", broken))
	}
	if failed > 0 {
		if a.config.Mode == ModeValidate {
			errs = append(errs, fmt.Errorf("%d validation errors", failed))
		} else {
			errs = append(errs, fmt.Errorf("%d variants failed to resolve", failed))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	a.logger.Info("Done.", "scripts", len(scripts), "mode", a.config.Mode)
	return nil
}
