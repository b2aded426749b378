package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/ctxlog"
	"github.com/kbbdata/fecho/internal/dag"
	"github.com/kbbdata/fecho/internal/period"
	"github.com/kbbdata/fecho/internal/resolver"
	"github.com/kbbdata/fecho/internal/staleness"
)

// Executor walks a pipeline's steps in declared order, evaluating staleness
// and invoking external step commands. Execution is strictly sequential:
// every step structurally depends on its predecessors' outputs being final
// before their mtimes are read.
type Executor struct {
	model  *config.Model
	graph  *dag.Graph
	res    *resolver.Resolver
	period period.Context
	outW   io.Writer
	errW   io.Writer
}

// New creates an Executor bound to one (pipeline, period, storage root) run.
func New(model *config.Model, graph *dag.Graph, res *resolver.Resolver, p period.Context, outW, errW io.Writer) *Executor {
	return &Executor{
		model:  model,
		graph:  graph,
		res:    res,
		period: p,
		outW:   outW,
		errW:   errW,
	}
}

// Execute walks the plan in order. Each in-scope step is re-evaluated just
// before execution, because earlier steps change timestamps mid-run. The
// run halts on the first failure, on missing required inputs, and on a
// manual step that needs the operator; a manual pause is not an error.
func (e *Executor) Execute(ctx context.Context, plan *RunPlan) (*RunReport, error) {
	logger := ctxlog.FromContext(ctx)

	report := &RunReport{
		Pipeline: plan.Pipeline,
		Period:   plan.Period,
		Intent:   plan.Intent,
		Results:  make([]StepResult, len(plan.Entries)),
	}
	byKey := make(map[string]*StepResult, len(plan.Entries))
	for i, entry := range plan.Entries {
		report.Results[i] = StepResult{Step: entry.Step, State: Pending}
		byKey[entry.Step.Key] = &report.Results[i]
	}

	for i, entry := range plan.Entries {
		step := entry.Step
		result := &report.Results[i]

		if !entry.InScope {
			result.State = SkippedOutOfScope
			logger.Debug("Step out of scope, not evaluated.", "step", step.Key)
			continue
		}

		verdict, err := staleness.Evaluate(ctx, step, e.res)
		if err != nil {
			result.State = Failed
			result.Err = err
			return report, err
		}
		result.Verdict = &verdict

		switch verdict.Decision {
		case staleness.MissingInputs:
			if step.Optional {
				result.State = SkippedMissingOptional
				e.statusf(styleWarn, "⚠️  %s — optional step has no inputs, skipping", step.Key)
				continue
			}
			result.State = Failed
			result.Err = &MissingInputsError{Key: step.Key}
			e.statusf(styleFail, "❌ %s — no inputs on disk, halting", step.Key)
			e.reportBlocked(step)
			return report, result.Err

		case staleness.Fresh:
			if !plan.Intent.Force {
				result.State = SkippedFresh
				e.statusf(styleSkip, "⏭  %s — outputs up to date, skipping", step.Key)
				continue
			}
			logger.Debug("Step is fresh but the run is forced.", "step", step.Key)
		}

		if err := e.dependenciesSettled(step, byKey); err != nil {
			result.State = Failed
			result.Err = err
			return report, err
		}

		if step.Manual {
			result.State = AwaitingManual
			e.pauseForOperator(step)
			return report, nil
		}

		result.State = Running
		e.statusf(styleRun, "▶️  %s — %s", step.Key, verdict.Reason)

		start := time.Now()
		err = e.runCommand(ctx, step)
		result.Duration = time.Since(start)

		if err != nil {
			result.State = Failed
			result.Err = err
			e.statusf(styleFail, "❌ %s — %v", step.Key, err)
			e.reportBlocked(step)
			return report, err
		}

		result.State = Succeeded
		e.statusf(styleOK, "✅ %s — completed in %s", step.Key, result.Duration.Round(time.Millisecond))
	}

	return report, nil
}

// dependenciesSettled asserts every declared dependency of a step reached a
// terminal state before the step acts. Declared order is validated as a
// topological order at build time, so a violation here is an internal
// sequencing bug, not an operator error.
func (e *Executor) dependenciesSettled(step *config.Step, results map[string]*StepResult) error {
	deps, err := e.graph.Dependencies(step.Key)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		res, ok := results[dep]
		if !ok || res.State == Pending || res.State == Running {
			return fmt.Errorf("step %q reached before its dependency %q settled", step.Key, dep)
		}
	}
	return nil
}

// reportBlocked tells the operator which downstream steps a halt cut off.
func (e *Executor) reportBlocked(step *config.Step) {
	blocked, err := e.graph.Dependents(step.Key)
	if err != nil || len(blocked) == 0 {
		return
	}
	e.statusf(styleSkip, "   blocked downstream: %s", strings.Join(blocked, ", "))
}

// runCommand resolves a step's command, appends the period flags every step
// script accepts, and waits for the process's terminal exit status.
func (e *Executor) runCommand(ctx context.Context, step *config.Step) error {
	logger := ctxlog.FromContext(ctx)

	argv, err := e.res.Strings(step.Command)
	if err != nil {
		return fmt.Errorf("resolving command for step %q: %w", step.Key, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("step %q resolved an empty command", step.Key)
	}
	argv = append(argv,
		"--year", strconv.Itoa(e.period.Year),
		"--month", strconv.Itoa(e.period.Month),
	)

	logger.Debug("Invoking step command.", "step", step.Key, "argv", argv)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = e.outW
	cmd.Stderr = e.errW

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &StepExecutionError{Key: step.Key, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return &StepExecutionError{Key: step.Key, ExitCode: -1, Err: err}
	}
	return nil
}

// pauseForOperator prints the manual step's instructions and how to resume.
// Completion is never confirmed in-process: the next invocation infers it
// from the output file's mtime.
func (e *Executor) pauseForOperator(step *config.Step) {
	instructions, err := e.res.String(step.Instructions)
	if err != nil || instructions == "" {
		instructions = "complete the manual action for this step"
	}

	e.statusf(styleManual, "✋ %s — manual step, pausing the run", step.Key)
	fmt.Fprintf(e.outW, "\n   %s\n\n", instructions)

	if next := e.nextStep(step); next != nil {
		fmt.Fprintf(e.outW, "   When done, resume with: fecho --year %d --month %d --start-from %s\n",
			e.period.Year, e.period.Month, next.Key)
	}
}

// nextStep returns the step declared immediately after the given one.
func (e *Executor) nextStep(step *config.Step) *config.Step {
	if step.Ordinal+1 < len(e.model.Steps) {
		return e.model.Steps[step.Ordinal+1]
	}
	return nil
}
