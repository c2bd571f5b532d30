// Package presentation renders detections for people: an HTML page for the
// browser and a styled block for the terminal. Both take their colors from
// ml.StressLabel so every path shows the same swatch.
package presentation

import (
	"io"
	"strconv"
	"strings"

	"stresscheck/ml"
	"stresscheck/sensor"
)

// View is everything a renderer may show for one request.
type View struct {
	Detection *ml.Detection
	Snapshot  *sensor.Snapshot
	Error     string
	Form      FormValues
}

// FormValues echoes manual input back into the form.
type FormValues struct {
	Temperature string
	SpO2        string
	HeartRate   string
}

// Renderer is implemented by each presentation.
type Renderer interface {
	Render(w io.Writer, v View) error
}

// Cell is one sheet table cell. Match marks a value equal to one of the
// reading's features; Max marks the column maximum among the shown rows.
type Cell struct {
	Value string
	Match bool
	Max   bool
}

// SheetTable lays out the snapshot tail with highlight flags.
func SheetTable(snap *sensor.Snapshot) ([]string, [][]Cell) {
	if snap == nil || len(snap.Tail) == 0 {
		return nil, nil
	}
	reading := snap.Reading.Vector()

	width := len(snap.Header)
	maxes := make([]float64, width)
	numeric := make([]bool, width)
	for col := 0; col < width; col++ {
		first := true
		for _, row := range snap.Tail {
			if col >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				continue
			}
			if first || v > maxes[col] {
				maxes[col] = v
				first = false
			}
			numeric[col] = true
		}
	}

	rows := make([][]Cell, len(snap.Tail))
	for i, row := range snap.Tail {
		cells := make([]Cell, width)
		for col := 0; col < width; col++ {
			if col >= len(row) {
				continue
			}
			cell := Cell{Value: row[col]}
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64); err == nil {
				for _, r := range reading {
					if v == r {
						cell.Match = true
						break
					}
				}
				cell.Max = numeric[col] && v == maxes[col]
			}
			cells[col] = cell
		}
		rows[i] = cells
	}
	return snap.Header, rows
}

// formatFloat drops trailing zeros: 36.50 -> 36.5, 72.0 -> 72.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
