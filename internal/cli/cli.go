package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/woozymasta/agpconf/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag.
type stringList []string

// String implements flag.Value.
func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

// Set implements flag.Value.
func (l *stringList) Set(v string) error {
	if v == "" {
		return fmt.Errorf("empty value")
	}
	*l = append(*l, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("agpconf", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
agpconf - Effective Android build variant configuration from Gradle build scripts.

Usage:
  agpconf [options] FILE...

Arguments:
  FILE
    Path to a build.gradle or build.gradle.kts file.

Options:
`)
		flagSet.PrintDefaults()
	}

	var flavors stringList
	variantFlag := flagSet.String("variant", "", "Resolve one variant by its name, e.g. 'devRelease'.")
	buildTypeFlag := flagSet.String("build-type", "", "Build type of an explicit variant request.")
	flagSet.Var(&flavors, "flavor", "Flavor of an explicit variant request. Repeat for each dimension.")
	inspectFlag := flagSet.Bool("inspect", false, "Print build types, flavors, variants and unrecognized declarations.")
	validateFlag := flagSet.Bool("validate", false, "Print validation issues.")
	fallbackFlag := flagSet.Bool("namespace-fallback", false, "Use android.namespace when no applicationId is declared.")
	formatFlag := flagSet.String("format", "json", "Output format. Options: 'json', 'yaml' or 'text'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent workers for parsing and resolution.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := flagSet.Args()
	if len(paths) == 0 {
		slog.Debug("No build script provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if *inspectFlag && *validateFlag {
		return nil, false, &ExitError{Code: 2, Message: "inspect and validate are mutually exclusive"}
	}
	mode := app.ModeResolve
	switch {
	case *inspectFlag:
		mode = app.ModeInspect
	case *validateFlag:
		mode = app.ModeValidate
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Paths:             paths,
		Mode:              mode,
		Variant:           *variantFlag,
		BuildType:         *buildTypeFlag,
		Flavors:           flavors,
		NamespaceFallback: *fallbackFlag,
		Format:            strings.ToLower(*formatFlag),
		LogFormat:         logFormat,
		LogLevel:          logLevel,
		WorkerCount:       *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
