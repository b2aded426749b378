package executor

import "fmt"

// UnknownStepError reports a run intent naming a step the pipeline does not
// define. It is a configuration error: no steps run.
type UnknownStepError struct {
	Key string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step %q", e.Key)
}

// MissingInputsError reports a required step that resolved zero input files.
// The run halts at the step; it is never silently skipped.
type MissingInputsError struct {
	Key string
}

func (e *MissingInputsError) Error() string {
	return fmt.Sprintf("step %q has no inputs on disk", e.Key)
}

// StepExecutionError reports an external step command that exited non-zero.
type StepExecutionError struct {
	Key      string
	ExitCode int
	Err      error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %q failed with exit code %d", e.Key, e.ExitCode)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}
