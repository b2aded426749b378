package app

import (
	"errors"
	"io"

	"github.com/kbbdata/fecho/internal/executor"
	"github.com/kbbdata/fecho/internal/hcl"
)

// App ties the pipeline loader, resolver and executor together for a single
// invocation.
type App struct {
	outW   io.Writer
	errW   io.Writer
	cfg    *Config
	loader *hcl.Loader
}

// NewApp creates an App instance with the provided writers and configuration.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	return &App{
		outW:   outW,
		errW:   errW,
		cfg:    cfg,
		loader: hcl.NewLoader(),
	}
}

// ExitCode maps a run error to the process exit code: step execution
// failures and missing required inputs are 1, everything else (storage
// root, pipeline definition, unknown step, invalid period) is a
// configuration error, 2.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stepErr *executor.StepExecutionError
	var missingErr *executor.MissingInputsError
	if errors.As(err, &stepErr) || errors.As(err, &missingErr) {
		return 1
	}
	return 2
}
