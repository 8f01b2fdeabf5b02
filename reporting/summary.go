package reporting

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/specstream/specstream/types"
)

// RenderSummary prints the per-scenario rollup of a feature run.
func RenderSummary(w io.Writer, result *types.FeatureResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Scenario Results: %s (%s)", result.Name, formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Scenario", "Duration", "Steps", "Passed", "Failed", "Skipped", "Status", "Error",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Scenario", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Steps", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, sc := range result.Scenarios {
		var stats types.Stats
		for _, step := range sc.Steps {
			stats.Add(step)
		}
		t.AppendRow(table.Row{
			sc.Name,
			formatDuration(sc.Duration),
			stats.Total,
			stats.Passed,
			stats.Failed,
			stats.Skipped,
			statusString(sc.Status),
			firstError(sc),
		})
	}

	if result.Status == types.StatusPass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		formatDuration(result.Duration),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Skipped,
		statusString(result.Status),
		"",
	})

	t.Render()
}

// firstError returns the first failing step's error, trimmed for display.
func firstError(sc types.ScenarioResult) string {
	for _, step := range sc.Steps {
		if step.Status == types.StatusFail && step.Err != nil {
			msg := step.Err.Error()
			if len(msg) > 80 {
				return msg[:70] + "..."
			}
			return msg
		}
	}
	return ""
}

func statusString(status types.Status) string {
	switch status {
	case types.StatusPass:
		return "✓ pass"
	case types.StatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
