package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kbbdata/fecho/internal/staleness"
)

var (
	styleRun    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleSkip   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleManual = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	styleHeader = lipgloss.NewStyle().Bold(true)
)

// statusf prints one styled operator-facing status line.
func (e *Executor) statusf(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(e.outW, style.Render(fmt.Sprintf(format, args...)))
}

// Render formats the pre-flight view of a run for the operator.
func (p *RunPlan) Render() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("Plan for %s %s — %s", p.Pipeline, p.Period, p.Intent)))
	b.WriteString("\n")

	for i, entry := range p.Entries {
		action := "skip"
		detail := "out of scope"
		style := styleSkip

		if entry.InScope && entry.Verdict != nil {
			detail = entry.Verdict.Reason
			switch {
			case entry.WillExecute && entry.Step.Manual:
				action, style = "pause", styleManual
			case entry.WillExecute:
				action, style = "run", styleRun
			case entry.Verdict.Decision == staleness.MissingInputs && !entry.Step.Optional:
				action, style = "halt", styleFail
			case entry.Verdict.Decision == staleness.MissingInputs:
				action, style = "skip", styleWarn
			}
		}

		line := fmt.Sprintf("  %d. %-24s %-6s (%s)", i+1, entry.Step.Key, action, detail)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// Render formats the final per-step summary of a finished (or halted) run.
func (r *RunReport) Render() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("Summary for %s %s", r.Pipeline, r.Period)))
	b.WriteString("\n")

	for i, res := range r.Results {
		style := styleSkip
		switch res.State {
		case Succeeded:
			style = styleOK
		case Failed:
			style = styleFail
		case AwaitingManual:
			style = styleManual
		case SkippedMissingOptional:
			style = styleWarn
		}

		detail := res.State.String()
		if res.State == Succeeded {
			detail = fmt.Sprintf("%s in %s", detail, res.Duration.Round(time.Millisecond))
		}
		if res.Err != nil {
			detail = fmt.Sprintf("%s: %v", detail, res.Err)
		}

		line := fmt.Sprintf("  %d. %-24s %s", i+1, res.Step.Key, detail)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("  executed %d, skipped %d, total %d\n",
		r.Executed(), r.Skipped(), len(r.Results)))
	return b.String()
}
