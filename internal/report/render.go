package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")).Width(18)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFC107"))
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
)

// Render formats the diagnostics as a human-readable summary.
func (d *Diagnostics) Render() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Recovery report") + "\n")
	writeRow(&b, "run", d.RunID)
	writeRow(&b, "input", d.Basename)

	keys := make([]string, 0, len(d.HeaderFields))
	for k := range d.HeaderFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeRow(&b, "header."+k, d.HeaderFields[k])
	}

	writeRow(&b, "payload bytes", fmt.Sprintf("%d", d.PayloadLength))
	writeRow(&b, "payload entropy", fmt.Sprintf("%.3f", d.PayloadEntropy))
	writeRow(&b, "output bytes", fmt.Sprintf("%d", d.OutputLength))

	switch d.RecoveryKind {
	case KindDecoded:
		b.WriteString(okStyle.Render("outcome: DECODED") + " via " + d.StrategyName + "\n")
	case KindSynthesized:
		b.WriteString(warnStyle.Render("outcome: SYNTHESIZED") +
			" from template " + d.TemplateCategory + " (fabricated, not recovered)\n")
	}

	if d.StrictValid != nil {
		writeRow(&b, "strict parse", fmt.Sprintf("%t", *d.StrictValid))
	}
	if len(d.Analysis.Functions) > 0 {
		writeRow(&b, "functions", strings.Join(d.Analysis.Functions, ", "))
	}
	if len(d.Analysis.Classes) > 0 {
		writeRow(&b, "classes", strings.Join(d.Analysis.Classes, ", "))
	}
	if len(d.Analysis.SecurityFunctions) > 0 {
		writeRow(&b, "security funcs", strings.Join(d.Analysis.SecurityFunctions, ", "))
	}

	return b.String()
}

func writeRow(b *strings.Builder, key, value string) {
	b.WriteString(keyStyle.Render(key) + " " + value + "\n")
}
