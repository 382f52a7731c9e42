package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/internal/alarm"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorAmber = lipgloss.Color("#f59e0b")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorAmber)
)

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case "error":
		return errorStyle
	case "warning":
		return warnStyle
	default:
		return dimStyle
	}
}

func rule(width int) string {
	return dimStyle.Render("  " + strings.Repeat("─", width))
}

// renderList produces the resource table for `list`.
func renderList(stackName string, result wetwire.ListResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("  %s: %d resources", stackName, len(result.Resources))))
	b.WriteString("\n")
	b.WriteString(rule(72))
	b.WriteString("\n")

	width := 0
	for _, res := range result.Resources {
		width = max(width, len(res.Name))
	}
	for _, res := range result.Resources {
		fmt.Fprintf(&b, "  %-*s  %s", width, res.Name, sectionStyle.Render(res.Type))
		if len(res.Dependencies) > 0 {
			b.WriteString(dimStyle.Render("  → " + strings.Join(res.Dependencies, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderLint produces the text report for `lint`.
func renderLint(result wetwire.LintResult) string {
	if len(result.Issues) == 0 {
		return okStyle.Render("No issues found.") + "\n"
	}

	var b strings.Builder
	for _, issue := range result.Issues {
		sev := severityStyle(issue.Severity).Render(issue.Severity)
		switch {
		case issue.File != "":
			fmt.Fprintf(&b, "%s:%d:%d: %s: %s [%s]\n", issue.File, issue.Line, issue.Column, sev, issue.Message, issue.Rule)
		case issue.Resource != "":
			fmt.Fprintf(&b, "%s: %s: %s [%s]\n", issue.Resource, sev, issue.Message, issue.Rule)
		default:
			fmt.Fprintf(&b, "%s: %s [%s]\n", sev, issue.Message, issue.Rule)
		}
	}
	return b.String()
}

// renderValidate produces the text report for `validate`.
func renderValidate(result wetwire.ValidateResult) string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("  Inventory"))
	b.WriteString("\n")
	b.WriteString(rule(30))
	b.WriteString("\n")
	for _, entity := range sortedKeys(result.Inventory) {
		fmt.Fprintf(&b, "    %-16s %d\n", entity, result.Inventory[entity])
	}
	b.WriteString("\n")

	for _, e := range result.Errors {
		b.WriteString(errorStyle.Render("error: ") + e + "\n")
	}
	for _, w := range result.Warnings {
		b.WriteString(warnStyle.Render("warning: ") + w + "\n")
	}

	if result.Success {
		b.WriteString(okStyle.Render(fmt.Sprintf("Template is valid (%d resources).", result.Resources)))
	} else {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Template is invalid: %d errors.", len(result.Errors))))
	}
	b.WriteString("\n")
	return b.String()
}

// renderDiff produces the text report for `diff`.
func renderDiff(diff wetwire.TemplateDiff, summary wetwire.DiffSummary) string {
	if summary.Total == 0 {
		return okStyle.Render("Templates are identical.") + "\n"
	}

	var b strings.Builder
	for _, e := range diff.Added {
		b.WriteString(okStyle.Render("+ "+e.Resource) + dimStyle.Render(" ("+e.Type+")") + "\n")
	}
	for _, e := range diff.Removed {
		b.WriteString(errorStyle.Render("- "+e.Resource) + dimStyle.Render(" ("+e.Type+")") + "\n")
	}
	for _, e := range diff.Modified {
		b.WriteString(warnStyle.Render("~ "+e.Resource) + dimStyle.Render(" ("+e.Type+")") + "\n")
		for _, c := range e.Changes {
			b.WriteString("    " + c + "\n")
		}
	}
	fmt.Fprintf(&b, "\n%d added, %d removed, %d modified\n", summary.Added, summary.Removed, summary.Modified)
	return b.String()
}

// renderSimulation produces the per-period trace for `simulate`.
func renderSimulation(name string, steps []simulationStep) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("  " + name))
	b.WriteString("\n")
	b.WriteString(rule(40))
	b.WriteString("\n")
	for i, s := range steps {
		value := "missing"
		if !s.Missing {
			value = fmt.Sprintf("%.2f", s.Value)
		}
		state := string(s.State)
		switch s.State {
		case alarm.StateAlarm:
			state = errorStyle.Render(state)
		case alarm.StateOK:
			state = okStyle.Render(state)
		default:
			state = dimStyle.Render(state)
		}
		fmt.Fprintf(&b, "  %3d  %8s  %s", i, value, state)
		if s.Fired {
			b.WriteString(errorStyle.Render("  stop instance"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
