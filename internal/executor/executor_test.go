package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/dag"
	hclloader "github.com/kbbdata/fecho/internal/hcl"
	"github.com/kbbdata/fecho/internal/period"
	"github.com/kbbdata/fecho/internal/resolver"
	"github.com/kbbdata/fecho/internal/staleness"
)

func load(t *testing.T, src string) *config.Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	model, err := hclloader.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	return model
}

func newExecutor(t *testing.T, model *config.Model, base string) (*Executor, *bytes.Buffer) {
	t.Helper()
	p, err := period.New(2024, 10)
	require.NoError(t, err)
	graph, err := dag.Build(context.Background(), model)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return New(model, graph, resolver.New(p, base), p, out, out), out
}

// writeAt creates a file and pins its mtime in the past so freshly touched
// outputs always win the comparison.
func writeAt(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

var past = time.Date(2024, 10, 5, 12, 0, 0, 0, time.UTC)

// chainPipeline is a two-step chain: src.txt -> mid.txt -> end.txt.
const chainPipeline = `
pipeline "chain" {
  storage { roots = ["/tmp"] }

  step "make_mid" {
    command = ["/bin/sh", "-c", "touch ${base}/mid.txt"]
    inputs  = ["${base}/src.txt"]
    outputs = ["${base}/mid.txt"]
  }

  step "make_end" {
    command    = ["/bin/sh", "-c", "touch ${base}/end.txt"]
    depends_on = ["make_mid"]
    inputs     = ["${base}/mid.txt"]
    outputs    = ["${base}/end.txt"]
  }
}
`

func states(r *RunReport) []State {
	out := make([]State, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.State
	}
	return out
}

func TestFullRunIsIdempotent(t *testing.T) {
	base := t.TempDir()
	writeAt(t, filepath.Join(base, "src.txt"), past)

	model := load(t, chainPipeline)
	exec, _ := newExecutor(t, model, base)
	ctx := context.Background()

	plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
	require.NoError(t, err)
	report, err := exec.Execute(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, []State{Succeeded, Succeeded}, states(report))
	assert.FileExists(t, filepath.Join(base, "mid.txt"))
	assert.FileExists(t, filepath.Join(base, "end.txt"))

	// Second run with no input changes: every step skips as fresh.
	plan, err = exec.Plan(ctx, RunIntent{Mode: ModeFull})
	require.NoError(t, err)
	report, err = exec.Execute(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, []State{SkippedFresh, SkippedFresh}, states(report))
	assert.False(t, report.Failed())
	assert.Equal(t, 0, report.Executed())
	assert.Equal(t, 2, report.Skipped())
}

func TestTouchedInputMakesOnlyThatStepStale(t *testing.T) {
	base := t.TempDir()
	writeAt(t, filepath.Join(base, "src.txt"), past)

	model := load(t, chainPipeline)
	exec, _ := newExecutor(t, model, base)
	ctx := context.Background()

	plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
	require.NoError(t, err)
	_, err = exec.Execute(ctx, plan)
	require.NoError(t, err)

	// Touch mid.txt: input of make_end, output of make_mid. Only make_end
	// becomes stale; make_mid's output being newer keeps it fresh.
	now := time.Now()
	require.NoError(t, os.Chtimes(filepath.Join(base, "mid.txt"), now, now))

	plan, err = exec.Plan(ctx, RunIntent{Mode: ModeFull})
	require.NoError(t, err)
	assert.Equal(t, staleness.Fresh, plan.Entries[0].Verdict.Decision)
	assert.Equal(t, staleness.Stale, plan.Entries[1].Verdict.Decision)
	assert.False(t, plan.Entries[0].WillExecute)
	assert.True(t, plan.Entries[1].WillExecute)
}

func TestForce(t *testing.T) {
	t.Run("fresh steps re-run", func(t *testing.T) {
		base := t.TempDir()
		writeAt(t, filepath.Join(base, "src.txt"), past)

		model := load(t, chainPipeline)
		exec, _ := newExecutor(t, model, base)
		ctx := context.Background()

		plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
		require.NoError(t, err)
		_, err = exec.Execute(ctx, plan)
		require.NoError(t, err)

		plan, err = exec.Plan(ctx, RunIntent{Mode: ModeFull, Force: true})
		require.NoError(t, err)
		assert.True(t, plan.Entries[0].WillExecute)
		assert.True(t, plan.Entries[1].WillExecute)

		report, err := exec.Execute(ctx, plan)
		require.NoError(t, err)
		assert.Equal(t, []State{Succeeded, Succeeded}, states(report))
	})

	t.Run("missing required inputs still halt", func(t *testing.T) {
		base := t.TempDir() // no src.txt

		model := load(t, chainPipeline)
		exec, out := newExecutor(t, model, base)
		ctx := context.Background()

		plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull, Force: true})
		require.NoError(t, err)
		report, err := exec.Execute(ctx, plan)

		var missErr *MissingInputsError
		require.ErrorAs(t, err, &missErr)
		assert.Equal(t, "make_mid", missErr.Key)
		assert.Equal(t, []State{Failed, Pending}, states(report))
		assert.Contains(t, out.String(), "blocked downstream: make_end")
	})
}

func TestStartFromNeverEvaluatesEarlierSteps(t *testing.T) {
	base := t.TempDir()
	// Only make_end's input exists; make_mid has no input at all, which
	// would halt the run if it were ever evaluated.
	writeAt(t, filepath.Join(base, "mid.txt"), past)

	model := load(t, chainPipeline)
	exec, _ := newExecutor(t, model, base)
	ctx := context.Background()

	plan, err := exec.Plan(ctx, RunIntent{Mode: ModeStartFrom, StepKey: "make_end"})
	require.NoError(t, err)

	require.False(t, plan.Entries[0].InScope)
	assert.Nil(t, plan.Entries[0].Verdict, "out-of-scope steps must not be evaluated")
	require.True(t, plan.Entries[1].InScope)

	report, err := exec.Execute(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, []State{SkippedOutOfScope, Succeeded}, states(report))
	assert.Nil(t, report.Results[0].Verdict, "skipped steps carry no verdict")
}

func TestSingleStep(t *testing.T) {
	base := t.TempDir()
	writeAt(t, filepath.Join(base, "mid.txt"), past)

	model := load(t, chainPipeline)
	exec, _ := newExecutor(t, model, base)
	ctx := context.Background()

	plan, err := exec.Plan(ctx, RunIntent{Mode: ModeSingle, StepKey: "make_end"})
	require.NoError(t, err)
	assert.False(t, plan.Entries[0].InScope)
	assert.True(t, plan.Entries[1].InScope)

	report, err := exec.Execute(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, []State{SkippedOutOfScope, Succeeded}, states(report))
}

func TestUnknownStepKey(t *testing.T) {
	base := t.TempDir()
	model := load(t, chainPipeline)
	exec, _ := newExecutor(t, model, base)

	_, err := exec.Plan(context.Background(), RunIntent{Mode: ModeSingle, StepKey: "nope"})
	var unknownErr *UnknownStepError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "nope", unknownErr.Key)
}

func TestHaltOnFailure(t *testing.T) {
	base := t.TempDir()
	writeAt(t, filepath.Join(base, "src.txt"), past)

	src := `
pipeline "failing" {
  storage { roots = ["/tmp"] }

  step "step2_nf_agg" {
    command = ["/bin/sh", "-c", "exit 3"]
    inputs  = ["${base}/src.txt"]
    outputs = ["${base}/nf_todos.xlsx"]
  }

  step "step3_update_entradas" {
    command    = ["/bin/sh", "-c", "touch ${base}/entradas.xlsx"]
    depends_on = ["step2_nf_agg"]
    inputs     = ["${base}/src.txt"]
    outputs    = ["${base}/entradas.xlsx"]
  }
}
`
	model := load(t, src)
	exec, out := newExecutor(t, model, base)
	ctx := context.Background()

	plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
	require.NoError(t, err)
	report, err := exec.Execute(ctx, plan)

	var stepErr *StepExecutionError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "step2_nf_agg", stepErr.Key)
	assert.Equal(t, 3, stepErr.ExitCode)

	assert.Equal(t, []State{Failed, Pending}, states(report))
	assert.True(t, report.Failed())
	assert.Contains(t, out.String(), "blocked downstream: step3_update_entradas")
	assert.NoFileExists(t, filepath.Join(base, "entradas.xlsx"))
}

func TestOptionalStepWithNoInputsIsSkipped(t *testing.T) {
	base := t.TempDir()
	writeAt(t, filepath.Join(base, "src.txt"), past)

	src := `
pipeline "optional" {
  storage { roots = ["/tmp"] }

  step "step1_nf" {
    optional = true
    command  = ["/bin/sh", "-c", "touch ${base}/nf.xlsx"]
    inputs   = ["${base}/nf_xml/*.xml"]
    outputs  = ["${base}/nf.xlsx"]
  }

  step "step1_nfi" {
    command = ["/bin/sh", "-c", "touch ${base}/nfi.xlsx"]
    inputs  = ["${base}/src.txt"]
    outputs = ["${base}/nfi.xlsx"]
  }
}
`
	model := load(t, src)
	exec, out := newExecutor(t, model, base)
	ctx := context.Background()

	plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
	require.NoError(t, err)
	report, err := exec.Execute(ctx, plan)
	require.NoError(t, err)

	assert.Equal(t, []State{SkippedMissingOptional, Succeeded}, states(report))
	assert.Contains(t, out.String(), "optional step has no inputs")
}

func TestManualStep(t *testing.T) {
	manualPipeline := `
pipeline "manual" {
  storage { roots = ["/tmp"] }

  step "step3_update_entradas" {
    command = ["/bin/sh", "-c", "touch ${base}/T_Entradas_modified.xlsx"]
    inputs  = ["${base}/nf_todos.xlsx"]
    outputs = ["${base}/T_Entradas_modified.xlsx"]
  }

  step "recalc_entradas" {
    manual       = true
    instructions = "Open ${base}/T_Entradas.xlsx, recalculate, save and close."
    depends_on   = ["step3_update_entradas"]
    inputs       = ["${base}/T_Entradas_modified.xlsx"]
    outputs      = ["${base}/T_Entradas.xlsx"]
  }

  step "step4_inventory" {
    command    = ["/bin/sh", "-c", "touch ${base}/R_Estoq.xlsx"]
    depends_on = ["recalc_entradas"]
    inputs     = ["${base}/T_Entradas.xlsx"]
    outputs    = ["${base}/R_Estoq.xlsx"]
  }
}
`

	t.Run("stale manual step pauses the run", func(t *testing.T) {
		base := t.TempDir()
		writeAt(t, filepath.Join(base, "nf_todos.xlsx"), past)

		model := load(t, manualPipeline)
		exec, out := newExecutor(t, model, base)
		ctx := context.Background()

		plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
		require.NoError(t, err)
		report, err := exec.Execute(ctx, plan)
		require.NoError(t, err, "a manual pause is not an error")

		assert.Equal(t, []State{Succeeded, AwaitingManual, Pending}, states(report))
		require.NotNil(t, report.ManualPause())
		assert.Equal(t, "recalc_entradas", report.ManualPause().Key)

		assert.Contains(t, out.String(), "recalculate, save and close")
		assert.Contains(t, out.String(), "--start-from step4_inventory")
		assert.NoFileExists(t, filepath.Join(base, "R_Estoq.xlsx"))
	})

	t.Run("fresh manual step is passed over", func(t *testing.T) {
		base := t.TempDir()
		writeAt(t, filepath.Join(base, "nf_todos.xlsx"), past)
		writeAt(t, filepath.Join(base, "T_Entradas_modified.xlsx"), past.Add(time.Hour))
		// The operator already recalculated: the manual step's output is
		// newer than its input.
		writeAt(t, filepath.Join(base, "T_Entradas.xlsx"), past.Add(2*time.Hour))

		model := load(t, manualPipeline)
		exec, _ := newExecutor(t, model, base)
		ctx := context.Background()

		plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
		require.NoError(t, err)
		report, err := exec.Execute(ctx, plan)
		require.NoError(t, err)

		assert.Equal(t, []State{SkippedFresh, SkippedFresh, Succeeded}, states(report))
		assert.Nil(t, report.ManualPause())
		assert.FileExists(t, filepath.Join(base, "R_Estoq.xlsx"))
	})
}

func TestPlanPreviewsMissingInputs(t *testing.T) {
	t.Run("required step previews as halt", func(t *testing.T) {
		base := t.TempDir() // no src.txt

		model := load(t, chainPipeline)
		exec, _ := newExecutor(t, model, base)

		plan, err := exec.Plan(context.Background(), RunIntent{Mode: ModeFull})
		require.NoError(t, err)

		assert.Equal(t, staleness.MissingInputs, plan.Entries[0].Verdict.Decision)
		assert.False(t, plan.Entries[0].WillExecute)
		assert.Contains(t, plan.Render(), "halt")
	})

	t.Run("optional step previews as skip", func(t *testing.T) {
		base := t.TempDir()
		writeAt(t, filepath.Join(base, "src.txt"), past)

		src := `
pipeline "optional" {
  storage { roots = ["/tmp"] }

  step "step1_nf" {
    optional = true
    command  = ["/bin/sh", "-c", "touch ${base}/nf.xlsx"]
    inputs   = ["${base}/nf_xml/*.xml"]
    outputs  = ["${base}/nf.xlsx"]
  }

  step "step1_nfi" {
    command = ["/bin/sh", "-c", "touch ${base}/nfi.xlsx"]
    inputs  = ["${base}/src.txt"]
    outputs = ["${base}/nfi.xlsx"]
  }
}
`
		model := load(t, src)
		exec, _ := newExecutor(t, model, base)

		plan, err := exec.Plan(context.Background(), RunIntent{Mode: ModeFull})
		require.NoError(t, err)

		assert.False(t, plan.Entries[0].WillExecute)
		rendered := plan.Render()
		assert.NotContains(t, rendered, "halt")
		assert.Contains(t, rendered, "skip")
	})
}

func TestRunReportRendering(t *testing.T) {
	base := t.TempDir()
	writeAt(t, filepath.Join(base, "src.txt"), past)

	model := load(t, chainPipeline)
	exec, _ := newExecutor(t, model, base)
	ctx := context.Background()

	plan, err := exec.Plan(ctx, RunIntent{Mode: ModeFull})
	require.NoError(t, err)

	rendered := plan.Render()
	assert.Contains(t, rendered, "Plan for chain 2024-10")
	assert.Contains(t, rendered, "make_mid")
	assert.Contains(t, rendered, "make_end")

	report, err := exec.Execute(ctx, plan)
	require.NoError(t, err)

	rendered = report.Render()
	assert.Contains(t, rendered, "Summary for chain 2024-10")
	assert.Contains(t, rendered, "succeeded")
	assert.Contains(t, rendered, fmt.Sprintf("executed %d, skipped %d, total %d", 2, 0, 2))
}
