package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/composer"
	"github.com/Conceptual-Machines/magda-lsystem-go/lsystem"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// renderReport describes an editor state: unparsable lines, then the probability sum of
// every context character
func renderReport(e *composer.RuleEditor) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d rules", len(e.Rules()))))
	b.WriteString("\n")

	for _, d := range e.Diagnostics() {
		b.WriteString(errorStyle.Render("✗ " + d.String()))
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(strings.TrimSpace(d.Text)))
		b.WriteString("\n")
	}

	sums := lsystem.NewRuleSet(e.Rules()).ContextSums()
	if len(sums) == 0 {
		return b.String()
	}

	rows := [][]string{{"symbol", "rules", "sum", ""}}
	counts := make(map[byte]int)
	for _, r := range e.Rules() {
		counts[r.ContextChar()]++
	}
	for _, s := range sums {
		status := okStyle.Render("ok")
		if math.Abs(s.Diff) > lsystem.DefaultTolerance {
			status = errorStyle.Render(fmt.Sprintf("off by %+.4f", s.Diff))
		}
		rows = append(rows, []string{string(s.Char), fmt.Sprint(counts[s.Char]), fmt.Sprintf("%.4f", s.Sum), status})
	}
	b.WriteString(renderTable(rows))
	return b.String()
}

// renderTable lays rows out in aligned columns; the first row is the header
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := cellStyle.Width(widths[i] + 2)
			if r == 0 {
				style = style.Inherit(headerStyle)
			}
			cells[i] = style.Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}
