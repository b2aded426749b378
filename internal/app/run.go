package app

import (
	"context"
	"fmt"

	"github.com/kbbdata/fecho/internal/ctxlog"
	"github.com/kbbdata/fecho/internal/dag"
	"github.com/kbbdata/fecho/internal/executor"
	"github.com/kbbdata/fecho/internal/period"
	"github.com/kbbdata/fecho/internal/resolver"
)

// Run executes one pipeline invocation end to end: load the definition,
// probe the storage root, build the graph, plan, execute, summarize.
func (a *App) Run(ctx context.Context) (*executor.RunReport, error) {
	logger := newLogger(a.cfg, a.errW)
	ctx = ctxlog.WithLogger(ctx, logger)

	p, err := period.New(a.cfg.Year, a.cfg.Month)
	if err != nil {
		return nil, err
	}
	logger.Debug("Period resolved.", "period", p.String(), "tag", p.Tag())

	model, err := a.loader.Load(ctx, a.cfg.PipelinePath)
	if err != nil {
		return nil, err
	}

	base, err := resolver.SelectRoot(model.Roots)
	if err != nil {
		return nil, err
	}
	logger.Debug("Storage root selected.", "base", base)

	graph, err := dag.Build(ctx, model)
	if err != nil {
		return nil, err
	}
	logger.Debug("Dependency graph built.", "steps", graph.Len())

	exe := executor.New(model, graph, resolver.New(p, base), p, a.outW, a.errW)

	plan, err := exe.Plan(ctx, a.intent())
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(a.outW, plan.Render())

	report, execErr := exe.Execute(ctx, plan)
	if report != nil {
		fmt.Fprintln(a.outW, report.Render())
	}
	return report, execErr
}

// intent translates the flag-level configuration into a run intent.
func (a *App) intent() executor.RunIntent {
	intent := executor.RunIntent{Mode: executor.ModeFull, Force: a.cfg.Force}
	switch {
	case a.cfg.Step != "":
		intent.Mode = executor.ModeSingle
		intent.StepKey = a.cfg.Step
	case a.cfg.StartFrom != "":
		intent.Mode = executor.ModeStartFrom
		intent.StepKey = a.cfg.StartFrom
	}
	return intent
}
