package executor

import (
	"context"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/ctxlog"
	"github.com/kbbdata/fecho/internal/period"
	"github.com/kbbdata/fecho/internal/staleness"
)

// PlanEntry pairs a step with its pre-flight verdict. Out-of-scope steps
// carry no verdict: they are never resolved nor evaluated.
type PlanEntry struct {
	Step        *config.Step
	InScope     bool
	Verdict     *staleness.Verdict
	WillExecute bool
}

// RunPlan is the ordered pre-flight view of a run: which steps are in scope
// and what the evaluator thought of them before anything executed. Verdicts
// for later steps are advisory; the executor re-evaluates each step when it
// reaches it, because earlier steps change timestamps mid-run.
type RunPlan struct {
	Pipeline string
	Period   period.Context
	Intent   RunIntent
	Entries  []PlanEntry
}

// Plan computes the RunPlan for an intent without executing anything.
func (e *Executor) Plan(ctx context.Context, intent RunIntent) (*RunPlan, error) {
	logger := ctxlog.FromContext(ctx)

	if intent.Mode != ModeFull {
		if _, ok := e.model.Step(intent.StepKey); !ok {
			return nil, &UnknownStepError{Key: intent.StepKey}
		}
	}

	plan := &RunPlan{
		Pipeline: e.model.Name,
		Period:   e.period,
		Intent:   intent,
		Entries:  make([]PlanEntry, 0, len(e.model.Steps)),
	}

	for _, step := range e.model.Steps {
		entry := PlanEntry{Step: step, InScope: e.inScope(step, intent)}
		if entry.InScope {
			v, err := staleness.Evaluate(ctx, step, e.res)
			if err != nil {
				return nil, err
			}
			entry.Verdict = &v
			entry.WillExecute = willExecute(&v, intent)
		}
		plan.Entries = append(plan.Entries, entry)
		logger.Debug("Planned step.",
			"step", step.Key,
			"in_scope", entry.InScope,
			"will_execute", entry.WillExecute,
		)
	}

	return plan, nil
}

// inScope applies the run intent's scope rule to one step. Plan has already
// verified that intent.StepKey exists.
func (e *Executor) inScope(step *config.Step, intent RunIntent) bool {
	switch intent.Mode {
	case ModeSingle:
		return step.Key == intent.StepKey
	case ModeStartFrom:
		from, _ := e.model.Step(intent.StepKey)
		return step.Ordinal >= from.Ordinal
	default:
		return true
	}
}

// willExecute decides whether a verdict plus the intent leads to execution.
// Missing inputs never execute: optional steps skip, required steps halt the
// run when reached.
func willExecute(v *staleness.Verdict, intent RunIntent) bool {
	switch v.Decision {
	case staleness.MissingInputs:
		return false
	case staleness.Stale:
		return true
	default:
		return intent.Force
	}
}
