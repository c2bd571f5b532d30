package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stresscheck/ml"
	"stresscheck/sensor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndQueryDetections(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	detections := []ml.Detection{
		{Reading: sensor.Reading{Temperature: 36.5, SpO2: 98, HeartRate: 72}, Label: ml.Relaxed, ClassID: 2, Confidence: 0.9, Source: "manual", DetectedAt: base},
		{Reading: sensor.Reading{Temperature: 37.5, SpO2: 97, HeartRate: 95}, Label: ml.Anxious, ClassID: 0, Confidence: 0.8, Source: "live", DetectedAt: base.Add(time.Minute)},
		{Reading: sensor.Reading{Temperature: 36.5, SpO2: 97, HeartRate: 90}, Label: ml.Tense, ClassID: 3, Confidence: 0.7, Source: "live", DetectedAt: base.Add(2 * time.Minute)},
	}
	for _, d := range detections {
		if _, err := store.SaveDetection(ctx, d); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	entries, err := store.RecentDetections(ctx, 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Label != ml.Tense || entries[1].Label != ml.Anxious {
		t.Fatalf("expected newest first, got %s, %s", entries[0].Label, entries[1].Label)
	}
	if entries[0].Color != ml.Tense.Color() {
		t.Fatalf("expected color to be restored, got %q", entries[0].Color)
	}
	if entries[1].Reading.HeartRate != 95 || entries[1].Source != "live" {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}
	if !entries[0].DetectedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected timestamp %v", entries[0].DetectedAt)
	}

	counts, err := store.CountByLabel(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["Relaxed"] != 1 || counts["Calm"] != 0 || len(counts) != 4 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
