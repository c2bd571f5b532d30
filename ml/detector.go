package ml

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"stresscheck/sensor"
)

// Detection is the outcome of one inference call.
type Detection struct {
	Reading    sensor.Reading `json:"reading"`
	Label      StressLabel    `json:"label"`
	Color      string         `json:"color"`
	ClassID    int            `json:"class_id"`
	Confidence float64        `json:"confidence"`
	Source     string         `json:"source,omitempty"`
	DetectedAt time.Time      `json:"detected_at"`
}

type prediction struct {
	classID    int
	confidence float64
}

// Detector pairs a fitted scaler with a classifier. Both are read-only after
// construction, so a Detector may be shared across goroutines.
type Detector struct {
	scaler     *Scaler
	classifier Classifier
	cache      *lru.Cache[sensor.Reading, prediction]
	now        func() time.Time
}

// NewDetector builds a detector. cacheSize <= 0 disables memoisation.
func NewDetector(scaler *Scaler, classifier Classifier, cacheSize int) (*Detector, error) {
	if scaler == nil {
		return nil, errors.New("scaler is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if scaler.Width() != sensor.FeatureCount {
		return nil, fmt.Errorf("%w: scaler has %d features, readings have %d", ErrArityMismatch, scaler.Width(), sensor.FeatureCount)
	}
	if names := scaler.FeatureNames; len(names) > 0 {
		if want := sensor.FeatureNames(); !slices.Equal(names, want) {
			return nil, fmt.Errorf("%w: scaler has %q, readings have %q", ErrFeatureOrder, names, want)
		}
	}
	d := &Detector{
		scaler:     scaler,
		classifier: classifier,
		now:        time.Now,
	}
	if cacheSize > 0 {
		cache, err := lru.New[sensor.Reading, prediction](cacheSize)
		if err != nil {
			return nil, err
		}
		d.cache = cache
	}
	return d, nil
}

// LoadArtifacts deserializes the scaler and model artifacts and wires them into
// a Detector.
func LoadArtifacts(scalerPath, modelType, modelPath string, cacheSize int) (*Detector, error) {
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(modelType, modelPath)
	if err != nil {
		return nil, err
	}
	return NewDetector(scaler, model, cacheSize)
}

// Detect scales the reading, runs the classifier and maps the class id to a
// StressLabel.
func (d *Detector) Detect(ctx context.Context, reading sensor.Reading) (Detection, error) {
	if err := ctx.Err(); err != nil {
		return Detection{}, err
	}
	pred, err := d.predict(reading)
	if err != nil {
		return Detection{}, err
	}
	label, err := LabelForClass(pred.classID)
	if err != nil {
		return Detection{}, err
	}
	return Detection{
		Reading:    reading,
		Label:      label,
		Color:      label.Color(),
		ClassID:    pred.classID,
		Confidence: pred.confidence,
		DetectedAt: d.now(),
	}, nil
}

// PredictVector runs inference on a raw feature vector. Callers that do not
// go through sensor.Reading get the arity check here.
func (d *Detector) PredictVector(values []float64) (int, float64, error) {
	scaled, err := d.scaler.Transform(values)
	if err != nil {
		return 0, 0, err
	}
	return d.classifier.Predict(scaled)
}

func (d *Detector) predict(reading sensor.Reading) (prediction, error) {
	if d.cache != nil {
		if cached, ok := d.cache.Get(reading); ok {
			return cached, nil
		}
	}
	classID, confidence, err := d.PredictVector(reading.Vector())
	if err != nil {
		return prediction{}, fmt.Errorf("predict: %w", err)
	}
	pred := prediction{classID: classID, confidence: confidence}
	// Unmapped ids are not memoised so every call reports the failure.
	if d.cache != nil {
		if _, err := LabelForClass(classID); err == nil {
			d.cache.Add(reading, pred)
		}
	}
	return pred, nil
}
