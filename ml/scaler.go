package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Scaler is a fitted standard scaler: each feature is centered on Mean and
// divided by Scale.
type Scaler struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// FitScaler computes per-feature mean and population standard deviation.
func FitScaler(features [][]float64, names []string) (*Scaler, error) {
	if len(features) == 0 {
		return nil, errors.New("features is empty")
	}
	width := len(features[0])
	if width == 0 {
		return nil, errors.New("feature vectors are empty")
	}
	if len(names) > 0 && len(names) != width {
		return nil, fmt.Errorf("%w: %d names for %d features", ErrArityMismatch, len(names), width)
	}

	mean := make([]float64, width)
	for i, row := range features {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrArityMismatch, i, len(row), width)
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	n := float64(len(features))
	for j := range mean {
		mean[j] /= n
	}

	scale := make([]float64, width)
	for _, row := range features {
		for j, v := range row {
			diff := v - mean[j]
			scale[j] += diff * diff
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
	}

	return &Scaler{
		FeatureNames: append([]string(nil), names...),
		Mean:         mean,
		Scale:        scale,
	}, nil
}

func (s *Scaler) Width() int {
	return len(s.Mean)
}

// Transform returns a new scaled vector. A zero scale leaves the centered value
// unscaled, matching how scikit-learn stores constant features.
func (s *Scaler) Transform(values []float64) ([]float64, error) {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, errors.New("scaler not fitted")
	}
	if len(values) != len(s.Mean) {
		return nil, fmt.Errorf("%w: got %d values, scaler expects %d", ErrArityMismatch, len(values), len(s.Mean))
	}
	scaled := make([]float64, len(values))
	for i, v := range values {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		scaled[i] = (v - s.Mean[i]) / scale
	}
	return scaled, nil
}

func (s *Scaler) Save(path string) error {
	if len(s.Mean) == 0 {
		return errors.New("scaler not fitted")
	}
	payload, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// LoadScaler reads a scaler artifact written by Save.
func LoadScaler(path string) (*Scaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var s Scaler
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode scaler %s: %w", path, err)
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler %s: mean/scale length mismatch (%d/%d)", path, len(s.Mean), len(s.Scale))
	}
	if len(s.FeatureNames) > 0 && len(s.FeatureNames) != len(s.Mean) {
		return nil, fmt.Errorf("scaler %s: %d feature names for %d features", path, len(s.FeatureNames), len(s.Mean))
	}
	return &s, nil
}
