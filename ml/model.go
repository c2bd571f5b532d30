package ml

import "errors"

var (
	ErrArityMismatch = errors.New("feature vector arity mismatch")
	ErrNotTrained    = errors.New("model not trained")
	// ErrFeatureOrder means a scaler was fitted on differently named or ordered
	// columns than the readings it would scale.
	ErrFeatureOrder  = errors.New("scaler feature order mismatch")
)

// Classifier maps a scaled feature vector to a class id and a confidence in [0,1].
type Classifier interface {
	Predict(features []float64) (int, float64, error)
}

// Model is a Classifier that can be persisted as a JSON artifact.
type Model interface {
	Classifier
	Save(path string) error
	Load(path string) error
}
