package presentation

import (
	"html/template"
	"io"

	"stresscheck/ml"
	"stresscheck/sensor"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Stress Level Detection</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { text-align: center; color: #e74c3c; }
.subtitle { text-align: center; color: #666; }
.swatch { padding: 20px; border-radius: 10px; text-align: center; color: #fff; margin: 1rem 0; }
.error { background: #fdecea; color: #b71c1c; padding: 12px; border-radius: 6px; }
label { display: block; margin: .5rem 0 .2rem; }
input[type=number] { width: 100%; padding: .4rem; }
button { margin-top: 1rem; padding: .5rem 1rem; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #ddd; padding: 4px 8px; text-align: right; }
td.max { background: lightgreen; }
td.match { background: #f9ebae; }
.legend span { display: inline-block; padding: 2px 8px; margin-right: 4px; border-radius: 4px; color: #fff; }
</style>
</head>
<body>
<h1>Stress Level Detection</h1>
<p class="subtitle">Realtime physiological data from the sensor spreadsheet</p>
<hr>

{{with .Error}}<div class="error" role="alert">{{.}}</div>{{end}}

{{with .Detection}}
<div class="swatch" style="background-color: {{.Color}}">
<h2>Stress level: {{.Label}}</h2>
<p>Temperature {{fmt .Reading.Temperature}} °C · SpO2 {{fmt .Reading.SpO2}} % · Heart rate {{fmt .Reading.HeartRate}} BPM</p>
</div>
{{end}}

<h3>Realtime detection</h3>
<form method="post" action="/detect/live">
<button type="submit">Detect stress (realtime)</button>
</form>

{{if .TableHeader}}
<h3>Latest sheet rows</h3>
<table>
<tr>{{range .TableHeader}}<th>{{.}}</th>{{end}}</tr>
{{range .TableRows}}<tr>{{range .}}<td class="{{if .Match}}match{{else if .Max}}max{{end}}">{{.Value}}</td>{{end}}</tr>
{{end}}
</table>
{{end}}

<h3>Manual test</h3>
<form method="post" action="/detect/manual">
<label for="temperature">Body temperature (°C)</label>
<input id="temperature" name="temperature" type="number" required min="{{fmt .Bounds.Temperature.Min}}" max="{{fmt .Bounds.Temperature.Max}}" step="{{fmt .Bounds.Temperature.Step}}" value="{{.Form.Temperature}}">
<label for="spo2">SpO2 (%)</label>
<input id="spo2" name="spo2" type="number" required min="{{fmt .Bounds.SpO2.Min}}" max="{{fmt .Bounds.SpO2.Max}}" step="{{fmt .Bounds.SpO2.Step}}" value="{{.Form.SpO2}}">
<label for="heart_rate">Heart rate (BPM)</label>
<input id="heart_rate" name="heart_rate" type="number" required min="{{fmt .Bounds.HeartRate.Min}}" max="{{fmt .Bounds.HeartRate.Max}}" step="{{fmt .Bounds.HeartRate.Step}}" value="{{.Form.HeartRate}}">
<button type="submit">Detect (manual)</button>
</form>

<p class="legend">{{range .Legend}}<span style="background-color: {{.Color}}">{{.}}</span>{{end}}</p>
</body>
</html>
`

var page = template.Must(template.New("page").Funcs(template.FuncMap{
	"fmt": formatFloat,
}).Parse(pageTemplate))

type pageData struct {
	View
	Bounds      sensor.ManualBoundsSet
	Legend      []ml.StressLabel
	TableHeader []string
	TableRows   [][]Cell
}

// HTML renders the single-page browser UI.
type HTML struct{}

func (HTML) Render(w io.Writer, v View) error {
	header, rows := SheetTable(v.Snapshot)
	return page.Execute(w, pageData{
		View:        v,
		Bounds:      sensor.ManualBounds,
		Legend:      ml.Labels(),
		TableHeader: header,
		TableRows:   rows,
	})
}
