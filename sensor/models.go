// Package sensor acquires physiological readings, either from the live
// spreadsheet export or from manual entry.
package sensor

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Column headers of the spreadsheet feed, in feature order.
const (
	ColumnTemperature = "Suhu (°C)"
	ColumnSpO2        = "SpO2 (%)"
	ColumnHeartRate   = "HeartRate (BPM)"
)

// FeatureCount is the arity of a Reading vector.
const FeatureCount = 3

// Form field names used by the manual entry paths.
const (
	FieldTemperature = "temperature"
	FieldSpO2        = "spo2"
	FieldHeartRate   = "heart_rate"
)

var (
	ErrNoRows        = errors.New("sheet has no data rows")
	ErrMissingColumn = errors.New("missing column")
	ErrNotNumeric    = errors.New("value is not numeric")
)

// Reading is one physiological sample. It is a plain value; equal readings
// compare equal.
type Reading struct {
	Temperature float64 `json:"temperature"`
	SpO2        float64 `json:"spo2"`
	HeartRate   float64 `json:"heart_rate"`
}

// Vector returns the features in model order: temperature, SpO2, heart rate.
func (r Reading) Vector() []float64 {
	return []float64{r.Temperature, r.SpO2, r.HeartRate}
}

func FeatureNames() []string {
	return []string{ColumnTemperature, ColumnSpO2, ColumnHeartRate}
}

// Bounds is an inclusive range with the step used by input widgets.
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ManualBoundsSet holds the accepted ranges for manual entry.
type ManualBoundsSet struct {
	Temperature Bounds `json:"temperature"`
	SpO2        Bounds `json:"spo2"`
	HeartRate   Bounds `json:"heart_rate"`
}

var ManualBounds = ManualBoundsSet{
	Temperature: Bounds{Min: 30, Max: 45, Step: 0.1},
	SpO2:        Bounds{Min: 50, Max: 100, Step: 0.1},
	HeartRate:   Bounds{Min: 30, Max: 200, Step: 1},
}

// BoundsError reports a manual value outside its accepted range.
type BoundsError struct {
	Field  string
	Value  float64
	Bounds Bounds
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s must be between %g and %g, got %g", e.Field, e.Bounds.Min, e.Bounds.Max, e.Value)
}

// NewManualReading validates manually entered values against ManualBounds.
func NewManualReading(temperature, spo2, heartRate float64) (Reading, error) {
	checks := []struct {
		field  string
		value  float64
		bounds Bounds
	}{
		{FieldTemperature, temperature, ManualBounds.Temperature},
		{FieldSpO2, spo2, ManualBounds.SpO2},
		{FieldHeartRate, heartRate, ManualBounds.HeartRate},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || !c.bounds.Contains(c.value) {
			return Reading{}, &BoundsError{Field: c.field, Value: c.value, Bounds: c.bounds}
		}
	}
	return Reading{Temperature: temperature, SpO2: spo2, HeartRate: heartRate}, nil
}

// ParseManualForm reads the three manual entry fields and applies the bounds.
func ParseManualForm(values url.Values) (Reading, error) {
	parsed := make([]float64, 0, FeatureCount)
	for _, field := range []string{FieldTemperature, FieldSpO2, FieldHeartRate} {
		v, err := parseNumber(values.Get(field))
		if err != nil {
			return Reading{}, fmt.Errorf("%s: %w", field, err)
		}
		parsed = append(parsed, v)
	}
	return NewManualReading(parsed[0], parsed[1], parsed[2])
}

func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrNotNumeric)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
	}
	return v, nil
}
