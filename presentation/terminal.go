package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e74c3c"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b71c1c"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	maxStyle   = cellStyle.Copy().Foreground(lipgloss.Color("#2ecc71"))
	matchStyle = cellStyle.Copy().Foreground(lipgloss.Color("#f1c40f")).Bold(true)
)

// Terminal renders a detection as a colored block followed by the sheet tail.
type Terminal struct{}

func (Terminal) Render(w io.Writer, v View) error {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Stress Level Detection"))
	sb.WriteString("\n\n")

	if v.Error != "" {
		sb.WriteString(errorStyle.Render("error: " + v.Error))
		sb.WriteString("\n")
	}

	if d := v.Detection; d != nil {
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(d.Color)).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true).
			Padding(1, 4)
		sb.WriteString(swatch.Render("Stress level: " + d.Label.String()))
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("temperature %s °C  spo2 %s %%  heart rate %s BPM  (%s)",
			formatFloat(d.Reading.Temperature), formatFloat(d.Reading.SpO2), formatFloat(d.Reading.HeartRate), d.Source)))
		sb.WriteString("\n")
	}

	if header, rows := SheetTable(v.Snapshot); len(rows) > 0 {
		sb.WriteString("\n")
		sb.WriteString(renderTable(header, rows))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func renderTable(header []string, rows [][]Cell) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if i < len(widths) && lipgloss.Width(c.Value) > widths[i] {
				widths[i] = lipgloss.Width(c.Value)
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	sep := mutedStyle.Render("|")
	var sb strings.Builder
	for i, h := range header {
		sb.WriteString(headStyle.Width(widths[i]).Render(h))
		if i < len(header)-1 {
			sb.WriteString(sep)
		}
	}
	sb.WriteString("\n")

	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i := range widths {
			var c Cell
			if i < len(row) {
				c = row[i]
			}
			style := cellStyle
			switch {
			case c.Match:
				style = matchStyle
			case c.Max:
				style = maxStyle
			}
			sb.WriteString(style.Width(widths[i]).Render(c.Value))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
