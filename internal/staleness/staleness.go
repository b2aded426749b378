package staleness

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/ctxlog"
	"github.com/kbbdata/fecho/internal/resolver"
)

// Decision classifies a step's inputs against its outputs.
type Decision int

const (
	// Stale means at least one input is newer than the oldest output, or no
	// outputs exist yet.
	Stale Decision = iota
	// Fresh means every output is at least as new as the newest input.
	Fresh
	// MissingInputs means the step resolved zero input files. The executor
	// decides whether the step's optional flag downgrades this to a skip.
	MissingInputs
)

func (d Decision) String() string {
	switch d {
	case Stale:
		return "stale"
	case Fresh:
		return "fresh"
	case MissingInputs:
		return "missing inputs"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Verdict is the result of evaluating one step.
type Verdict struct {
	StepKey  string
	Decision Decision

	// Reason is a human-readable explanation of the decision.
	Reason string

	// NewestInput is the most recently modified input path, when inputs exist.
	NewestInput     string
	NewestInputTime time.Time

	// OldestOutput is the least recently modified output path, when outputs exist.
	OldestOutput     string
	OldestOutputTime time.Time
}

// Evaluate resolves a step's input and output path specs and compares
// modification times. The rule is uniformly conservative: the newest input
// is compared against the *oldest* output, so a single lagging output makes
// the whole step stale. Exact timestamp ties count as fresh, so copy
// operations that preserve mtimes do not cause re-run churn.
func Evaluate(ctx context.Context, step *config.Step, r *resolver.Resolver) (Verdict, error) {
	logger := ctxlog.FromContext(ctx).With("step", step.Key)
	v := Verdict{StepKey: step.Key}

	inputs, err := r.Paths(step.Inputs)
	if err != nil {
		return v, fmt.Errorf("resolving inputs for step %q: %w", step.Key, err)
	}
	if len(inputs) == 0 {
		v.Decision = MissingInputs
		v.Reason = "no inputs found"
		logger.Debug("Step has no inputs on disk.")
		return v, nil
	}

	newestInput, newestInputTime, err := newest(inputs)
	if err != nil {
		return v, fmt.Errorf("inspecting inputs for step %q: %w", step.Key, err)
	}
	v.NewestInput = newestInput
	v.NewestInputTime = newestInputTime

	outputs, err := r.Paths(step.Outputs)
	if err != nil {
		return v, fmt.Errorf("resolving outputs for step %q: %w", step.Key, err)
	}
	if len(outputs) == 0 {
		v.Decision = Stale
		v.Reason = "no outputs found"
		logger.Debug("Step has never produced outputs.")
		return v, nil
	}

	oldestOutput, oldestOutputTime, err := oldest(outputs)
	if err != nil {
		return v, fmt.Errorf("inspecting outputs for step %q: %w", step.Key, err)
	}
	v.OldestOutput = oldestOutput
	v.OldestOutputTime = oldestOutputTime

	if newestInputTime.After(oldestOutputTime) {
		v.Decision = Stale
		v.Reason = fmt.Sprintf("%s (%s) is newer than %s (%s)",
			newestInput, newestInputTime.Format(time.RFC3339),
			oldestOutput, oldestOutputTime.Format(time.RFC3339))
	} else {
		v.Decision = Fresh
		v.Reason = "outputs up to date"
	}

	logger.Debug("Staleness evaluated.",
		"decision", v.Decision.String(),
		"newest_input", v.NewestInput,
		"oldest_output", v.OldestOutput,
	)
	return v, nil
}

// newest returns the path with the greatest mtime.
func newest(paths []string) (string, time.Time, error) {
	var bestPath string
	var bestTime time.Time
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", time.Time{}, err
		}
		if bestPath == "" || info.ModTime().After(bestTime) {
			bestPath = p
			bestTime = info.ModTime()
		}
	}
	return bestPath, bestTime, nil
}

// oldest returns the path with the smallest mtime.
func oldest(paths []string) (string, time.Time, error) {
	var bestPath string
	var bestTime time.Time
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", time.Time{}, err
		}
		if bestPath == "" || info.ModTime().Before(bestTime) {
			bestPath = p
			bestTime = info.ModTime()
		}
	}
	return bestPath, bestTime, nil
}
