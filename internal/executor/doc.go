// Package executor is the orchestration layer: it turns a run intent into a
// pre-flight RunPlan, walks the steps in declared order, consults the
// staleness evaluator per step, invokes external step commands, and halts on
// failure, missing inputs, or a manual step awaiting the operator.
package executor
