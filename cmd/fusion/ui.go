package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"MarketFusion/internal/fault"
	"MarketFusion/internal/pipeline"
	"MarketFusion/internal/recorder"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Width(12)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case recorder.StatusOK:
		return okStyle
	case recorder.StatusDegraded:
		return warnStyle
	default:
		return errorStyle
	}
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// renderSummary formats one run result for the terminal.
func renderSummary(symbol string, res *pipeline.Result, runErr error) string {
	status := recorder.StatusOK
	switch {
	case runErr != nil:
		status = recorder.StatusFailed
	case res.Report.Degraded():
		status = recorder.StatusDegraded
	}

	lines := []string{
		field("run", res.RunID),
		field("symbol", symbol),
		field("status", statusStyle(status).Render(status)),
	}
	if runErr == nil {
		lines = append(lines,
			field("rows", fmt.Sprint(res.Rows)),
			field("output", res.Output),
		)
		if res.XLSX != "" {
			lines = append(lines, field("xlsx", res.XLSX))
		}
	} else {
		lines = append(lines, field("error", errorStyle.Render(runErr.Error())))
	}
	lines = append(lines, field("filled", fmt.Sprint(res.Report.TotalFilled())))

	if entries := res.Report.Entries(); len(entries) > 0 {
		lines = append(lines, "", warnStyle.Render("warnings"))
		for _, e := range entries {
			lines = append(lines, formatEntry(e))
		}
	}
	return titleStyle.Render("MarketFusion") + "\n" + boxStyle.Render(strings.Join(lines, "\n"))
}

func formatEntry(e fault.Entry) string {
	return fmt.Sprintf("  %s %s/%s x%d %s", e.Kind, e.Stage, e.Field, e.Count, e.Detail)
}

// renderHistory formats journal rows, newest first.
func renderHistory(runs []recorder.RunRecord) string {
	if len(runs) == 0 {
		return labelStyle.Render("no runs recorded")
	}
	lines := make([]string, 0, len(runs))
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-8s %s  rows=%d filled=%d warnings=%d",
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Symbol,
			statusStyle(r.Status).Render(fmt.Sprintf("%-8s", r.Status)),
			r.Rows, r.Filled, len(r.Warnings))
		if r.ErrorKind != "" {
			line += "  " + errorStyle.Render(r.ErrorKind)
		}
		lines = append(lines, line)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
