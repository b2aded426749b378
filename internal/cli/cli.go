package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kbbdata/fecho/internal/app"
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

// Parse processes command-line arguments. It returns a populated AppConfig,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("fecho", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Fecho - An incremental, mtime-driven monthly closing pipeline runner.

Usage:
  fecho [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	pipelineFlag := flagSet.String("pipeline", "pipelines/fechamento.hcl", "Path to the pipeline definition file.")
	pFlag := flagSet.String("p", "", "Path to the pipeline definition file (shorthand).")
	yearFlag := flagSet.Int("year", 0, "Year of the period to process (YYYY).")
	yFlag := flagSet.Int("y", 0, "Year of the period to process (shorthand).")
	monthFlag := flagSet.Int("month", 0, "Month of the period to process (1-12).")
	mFlag := flagSet.Int("m", 0, "Month of the period to process (shorthand).")
	stepFlag := flagSet.String("step", "", "Run exactly one named step; its predecessors are not auto-run.")
	startFromFlag := flagSet.String("start-from", "", "Skip every step declared before the named step.")
	forceFlag := flagSet.Bool("force", false, "Treat every in-scope step as stale regardless of timestamps.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	pipeline := *pipelineFlag
	if *pFlag != "" {
		pipeline = *pFlag
	}

	year := *yearFlag
	if *yFlag != 0 {
		year = *yFlag
	}
	month := *monthFlag
	if *mFlag != 0 {
		month = *mFlag
	}
	if year == 0 || month == 0 {
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "both --year and --month are required"}
	}

	if *stepFlag != "" && *startFromFlag != "" {
		return nil, false, &ExitError{Code: 2, Message: "--step and --start-from are mutually exclusive"}
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
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PipelinePath: pipeline,
		Year:         year,
		Month:        month,
		Step:         *stepFlag,
		StartFrom:    *startFromFlag,
		Force:        *forceFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
