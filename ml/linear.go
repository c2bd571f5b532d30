package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// LinearModel is a one-vs-rest linear classifier, the shape scikit-learn's
// LogisticRegression and LinearSVC export: one coefficient row and intercept per
// class, prediction is the arg-max decision score.
type LinearModel struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
	Classes   []int       `json:"classes"`
}

func (m *LinearModel) Predict(features []float64) (int, float64, error) {
	if len(m.Coef) == 0 {
		return 0, 0, ErrNotTrained
	}
	if len(m.Intercept) != len(m.Coef) {
		return 0, 0, fmt.Errorf("linear model: %d intercepts for %d classes", len(m.Intercept), len(m.Coef))
	}
	if len(m.Classes) != 0 && len(m.Classes) != len(m.Coef) {
		return 0, 0, fmt.Errorf("linear model: %d class ids for %d coefficient rows", len(m.Classes), len(m.Coef))
	}
	scores := make([]float64, len(m.Coef))
	for c, row := range m.Coef {
		if len(row) != len(features) {
			return 0, 0, fmt.Errorf("%w: got %d values, model expects %d", ErrArityMismatch, len(features), len(row))
		}
		score := m.Intercept[c]
		for i, w := range row {
			score += w * features[i]
		}
		scores[c] = score
	}

	best := 0
	for c := range scores {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return m.classAt(best), softmaxAt(scores, best), nil
}

// classAt maps a coefficient row to its class id. Without explicit ids the row
// index is the class.
func (m *LinearModel) classAt(row int) int {
	if len(m.Classes) == 0 {
		return row
	}
	return m.Classes[row]
}

func (m *LinearModel) Save(path string) error {
	if err := m.validate(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (m *LinearModel) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var loaded LinearModel
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return fmt.Errorf("decode linear model %s: %w", path, err)
	}
	if err := loaded.validate(); err != nil {
		return err
	}
	*m = loaded
	return nil
}

func (m *LinearModel) validate() error {
	if len(m.Coef) == 0 {
		return ErrNotTrained
	}
	if len(m.Intercept) != len(m.Coef) {
		return fmt.Errorf("linear model: %d intercepts for %d classes", len(m.Intercept), len(m.Coef))
	}
	if len(m.Classes) == 0 {
		m.Classes = make([]int, len(m.Coef))
		for i := range m.Classes {
			m.Classes[i] = i
		}
	}
	if len(m.Classes) != len(m.Coef) {
		return fmt.Errorf("linear model: %d class ids for %d coefficient rows", len(m.Classes), len(m.Coef))
	}
	width := len(m.Coef[0])
	for _, row := range m.Coef {
		if len(row) != width || width == 0 {
			return errors.New("linear model: ragged coefficient matrix")
		}
	}
	return nil
}

func softmaxAt(scores []float64, idx int) float64 {
	maxScore := scores[idx]
	sum := 0.0
	for _, s := range scores {
		sum += math.Exp(s - maxScore)
	}
	return 1 / sum
}
