package ml

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"stresscheck/sensor"
)

type fakeClassifier struct {
	label int
	calls int
	err   error
}

func (f *fakeClassifier) Predict(features []float64) (int, float64, error) {
	f.calls++
	return f.label, 0.5, f.err
}

func identityScaler() *Scaler {
	return &Scaler{Mean: []float64{0, 0, 0}, Scale: []float64{1, 1, 1}}
}

func TestDetectorBundledArtifacts(t *testing.T) {
	detector, err := LoadArtifacts("../models/scaler_stres.json", ModelTypeDecisionTree, "../models/model_stres.json", 0)
	if err != nil {
		t.Fatalf("load artifacts: %v", err)
	}

	tests := []struct {
		reading sensor.Reading
		want    StressLabel
	}{
		{sensor.Reading{Temperature: 36.5, SpO2: 98, HeartRate: 72}, Relaxed},
		{sensor.Reading{Temperature: 36.5, SpO2: 94, HeartRate: 70}, Calm},
		{sensor.Reading{Temperature: 36.5, SpO2: 97, HeartRate: 90}, Tense},
		{sensor.Reading{Temperature: 37.5, SpO2: 97, HeartRate: 95}, Anxious},
		{sensor.Reading{Temperature: 36.5, SpO2: 97, HeartRate: 130}, Anxious},
	}
	for _, tt := range tests {
		got, err := detector.Detect(context.Background(), tt.reading)
		if err != nil {
			t.Fatalf("%+v: unexpected error: %v", tt.reading, err)
		}
		if got.Label != tt.want {
			t.Fatalf("%+v: expected %s, got %s", tt.reading, tt.want, got.Label)
		}
		if got.Color != tt.want.Color() {
			t.Fatalf("%+v: expected color %s, got %s", tt.reading, tt.want.Color(), got.Color)
		}
		if got.Reading != tt.reading {
			t.Fatalf("reading not carried through: %+v", got.Reading)
		}
	}
}

func TestDetectorIsDeterministic(t *testing.T) {
	detector, err := LoadArtifacts("../models/scaler_stres.json", ModelTypeDecisionTree, "../models/model_stres.json", 16)
	if err != nil {
		t.Fatalf("load artifacts: %v", err)
	}
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		reading := sensor.Reading{
			Temperature: 30 + rnd.Float64()*15,
			SpO2:        50 + rnd.Float64()*50,
			HeartRate:   30 + rnd.Float64()*170,
		}
		first, err := detector.Detect(context.Background(), reading)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !first.Label.Valid() {
			t.Fatalf("invalid label %d for %+v", first.Label, reading)
		}
		second, err := detector.Detect(context.Background(), reading)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.Label != second.Label || first.ClassID != second.ClassID {
			t.Fatalf("non-deterministic result for %+v: %s vs %s", reading, first.Label, second.Label)
		}
	}
}

func TestDetectorUnknownClass(t *testing.T) {
	classifier := &fakeClassifier{label: 7}
	detector, err := NewDetector(identityScaler(), classifier, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reading := sensor.Reading{Temperature: 36.5, SpO2: 98, HeartRate: 72}
	for i := 0; i < 2; i++ {
		_, err := detector.Detect(context.Background(), reading)
		if !errors.Is(err, ErrUnknownClass) {
			t.Fatalf("expected ErrUnknownClass, got %v", err)
		}
		if !strings.Contains(err.Error(), "7") {
			t.Fatalf("expected error to name the class id, got %v", err)
		}
	}
	if classifier.calls != 2 {
		t.Fatalf("unmapped ids must not be cached, classifier called %d times", classifier.calls)
	}
}

func TestDetectorCachesPredictions(t *testing.T) {
	classifier := &fakeClassifier{label: 1}
	detector, err := NewDetector(identityScaler(), classifier, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reading := sensor.Reading{Temperature: 36.5, SpO2: 98, HeartRate: 72}
	for i := 0; i < 3; i++ {
		got, err := detector.Detect(context.Background(), reading)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Label != Calm {
			t.Fatalf("expected Calm, got %s", got.Label)
		}
	}
	if classifier.calls != 1 {
		t.Fatalf("expected one classifier call, got %d", classifier.calls)
	}
}

func TestDetectorPropagatesClassifierError(t *testing.T) {
	classifier := &fakeClassifier{err: fmt.Errorf("boom")}
	detector, err := NewDetector(identityScaler(), classifier, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := detector.Detect(context.Background(), sensor.Reading{}); err == nil {
		t.Fatal("expected classifier error")
	}
}

func TestDetectorArity(t *testing.T) {
	twoFeatures := &Scaler{Mean: []float64{0, 0}, Scale: []float64{1, 1}}
	if _, err := NewDetector(twoFeatures, &fakeClassifier{}, 0); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("expected ErrArityMismatch, got %v", err)
	}

	detector, err := NewDetector(identityScaler(), &fakeClassifier{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := detector.PredictVector([]float64{1, 2, 3, 4}); !errors.Is(err, ErrArityMismatch) {
		t.Fatalf("expected ErrArityMismatch, got %v", err)
	}
}

func TestDetectorChecksScalerFeatureOrder(t *testing.T) {
	names := sensor.FeatureNames()
	reordered := identityScaler()
	reordered.FeatureNames = []string{names[2], names[0], names[1]}
	if _, err := NewDetector(reordered, &fakeClassifier{}, 0); !errors.Is(err, ErrFeatureOrder) {
		t.Fatalf("expected ErrFeatureOrder, got %v", err)
	}

	named := identityScaler()
	named.FeatureNames = names
	if _, err := NewDetector(named, &fakeClassifier{}, 0); err != nil {
		t.Fatalf("matching names rejected: %v", err)
	}
	if _, err := NewDetector(identityScaler(), &fakeClassifier{}, 0); err != nil {
		t.Fatalf("unnamed scaler rejected: %v", err)
	}
}

func TestDetectorWithUnloadedLinearModel(t *testing.T) {
	model := &LinearModel{
		Coef:      [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-1, -1, -1}},
		Intercept: []float64{0, 0, 0, 0},
	}
	detector, err := NewDetector(identityScaler(), model, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := detector.Detect(context.Background(), sensor.Reading{Temperature: 0.1, SpO2: 2, HeartRate: 0.3})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if d.ClassID != 1 || d.Label != Calm {
		t.Fatalf("unexpected detection %+v", d)
	}

	model.Intercept = model.Intercept[:1]
	if _, err := detector.Detect(context.Background(), sensor.Reading{Temperature: 3}); err == nil {
		t.Fatal("expected an error for mismatched intercepts")
	}
}

func TestDetectorRespectsCancelledContext(t *testing.T) {
	detector, err := NewDetector(identityScaler(), &fakeClassifier{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := detector.Detect(ctx, sensor.Reading{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoadArtifactsMissingFiles(t *testing.T) {
	if _, err := LoadArtifacts("missing-scaler.json", ModelTypeDecisionTree, "../models/model_stres.json", 0); err == nil {
		t.Fatal("expected error for missing scaler")
	}
	if _, err := LoadArtifacts("../models/scaler_stres.json", ModelTypeDecisionTree, "missing-model.json", 0); err == nil {
		t.Fatal("expected error for missing model")
	}
}
