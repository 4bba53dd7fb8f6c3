// Package report renders the calculator summary as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Simplici0/nebula-roi/internal/roi"
)

const (
	warningText = "Projected savings do not cover the cost of this option yet."
	emptyTip    = "Tip: enter sanitation, outbreak, or sick-day costs to see your savings."
)

// Markdown renders the summary panel for state.
func Markdown(state roi.InputState) string {
	result, flags := roi.Compute(state)
	summary := roi.Summarize(state, result, flags)

	var b strings.Builder
	b.WriteString("# NebulaOne ROI Summary\n\n")

	if summary.ShowEmptyTip {
		fmt.Fprintf(&b, "> %s\n\n", emptyTip)
	}
	if summary.ShowWarning {
		fmt.Fprintf(&b, "> **Warning:** %s\n\n", warningText)
	}

	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| Scenario | %s |\n", scenarioName(summary.Mode))
	fmt.Fprintf(&b, "| Current Annual Costs | $%s |\n", summary.Baseline)
	fmt.Fprintf(&b, "| Estimated Annual Savings | $%s |\n", summary.Savings)
	fmt.Fprintf(&b, "| %s | $%s |\n", summary.CostLabel, summary.Cost)
	fmt.Fprintf(&b, "| Annual ROI | %s |\n", withUnit(summary.ROI, "%"))
	fmt.Fprintf(&b, "| Payback Period | %s |\n", withUnit(summary.PaybackMonths, " months"))
	fmt.Fprintf(&b, "| Lease Cost (Monthly) | $%s |\n", summary.MonthlyLease)

	return b.String()
}

// HTML renders Markdown output as an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render summary html: %w", err)
	}
	return buf.String(), nil
}

func scenarioName(mode roi.Mode) string {
	if mode == roi.ModePurchase {
		return "Purchase"
	}
	return "Lease"
}

func withUnit(value, unit string) string {
	if value == roi.NotApplicable {
		return value
	}
	return value + unit
}
