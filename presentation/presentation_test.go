package presentation

import (
	"bytes"
	"strings"
	"testing"

	"stresscheck/ml"
	"stresscheck/sensor"
)

func sampleSnapshot() *sensor.Snapshot {
	return &sensor.Snapshot{
		Reading: sensor.Reading{Temperature: 36.5, SpO2: 98, HeartRate: 72},
		Header:  []string{sensor.ColumnTemperature, sensor.ColumnSpO2, sensor.ColumnHeartRate},
		Tail: [][]string{
			{"36.9", "97", "80"},
			{"37.1", "96", "91"},
			{"36.5", "98", "72"},
		},
	}
}

func sampleDetection() *ml.Detection {
	return &ml.Detection{
		Reading: sensor.Reading{Temperature: 36.5, SpO2: 98, HeartRate: 72},
		Label:   ml.Relaxed,
		Color:   ml.Relaxed.Color(),
		Source:  "live",
	}
}

func TestSheetTableHighlights(t *testing.T) {
	header, rows := SheetTable(sampleSnapshot())
	if len(header) != 3 || len(rows) != 3 {
		t.Fatalf("unexpected shape: %d headers, %d rows", len(header), len(rows))
	}

	last := rows[2]
	for i, c := range last {
		if !c.Match {
			t.Errorf("cell %d of the fed row should be marked as a match", i)
		}
	}
	if !rows[1][0].Max || !rows[2][1].Max || !rows[1][2].Max {
		t.Errorf("column maxima not marked: %+v", rows)
	}
	if rows[0][0].Max {
		t.Errorf("36.9 is not the temperature maximum")
	}
}

func TestSheetTableEmpty(t *testing.T) {
	if header, rows := SheetTable(nil); header != nil || rows != nil {
		t.Fatal("nil snapshot should produce no table")
	}
	if _, rows := SheetTable(&sensor.Snapshot{}); rows != nil {
		t.Fatal("empty tail should produce no table")
	}
}

func TestHTMLRender(t *testing.T) {
	var buf bytes.Buffer
	err := HTML{}.Render(&buf, View{
		Detection: sampleDetection(),
		Snapshot:  sampleSnapshot(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Stress level: Relaxed",
		ml.Relaxed.Color(),
		`action="/detect/live"`,
		`action="/detect/manual"`,
		`min="30" max="45" step="0.1"`,
		`min="50" max="100" step="0.1"`,
		`min="30" max="200" step="1"`,
		`class="match"`,
		"HeartRate (BPM)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
	for _, l := range ml.Labels() {
		if !strings.Contains(out, l.Color()) {
			t.Errorf("legend missing color for %s", l)
		}
	}
}

func TestHTMLRenderError(t *testing.T) {
	var buf bytes.Buffer
	err := HTML{}.Render(&buf, View{
		Error: "fetch sheet: <unreachable>",
		Form:  FormValues{Temperature: "50"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "fetch sheet: &lt;unreachable&gt;") {
		t.Error("error message should be shown escaped")
	}
	if strings.Contains(out, "Stress level:") {
		t.Error("no detection should be rendered on error")
	}
	if !strings.Contains(out, `value="50"`) {
		t.Error("form input should be echoed back")
	}
}

func TestTerminalRender(t *testing.T) {
	var buf bytes.Buffer
	if err := (Terminal{}).Render(&buf, View{
		Detection: sampleDetection(),
		Snapshot:  sampleSnapshot(),
	}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Stress level: Relaxed", "heart rate 72 BPM", "SpO2 (%)", "37.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q:\n%s", want, out)
		}
	}
}

func TestTerminalRenderError(t *testing.T) {
	var buf bytes.Buffer
	if err := (Terminal{}).Render(&buf, View{Error: "sheet unreachable"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "error: sheet unreachable") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
