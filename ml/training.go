package ml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"

	"stresscheck/sensor"
)

// LabelColumn is the CSV column holding the target class in training data.
const LabelColumn = "Label"

type TrainConfig struct {
	MaxDepth  int
	TestRatio float64
	Seed      int64
}

type TrainResult struct {
	Scaler   *Scaler
	Tree     *DecisionTree
	Train    int
	Test     int
	Accuracy float64
}

// LoadTrainingSet reads a labeled CSV with the three reading columns and a
// Label column holding either a label name or a class id.
func LoadTrainingSet(r io.Reader) ([][]float64, []int, error) {
	table, err := sensor.ReadTable(r)
	if err != nil {
		return nil, nil, err
	}
	if len(table.Rows) == 0 {
		return nil, nil, sensor.ErrNoRows
	}
	labelIdx := table.Column(LabelColumn)
	if labelIdx < 0 {
		return nil, nil, fmt.Errorf("%w: %q", sensor.ErrMissingColumn, LabelColumn)
	}

	features := make([][]float64, 0, len(table.Rows))
	labels := make([]int, 0, len(table.Rows))
	for i, row := range table.Rows {
		reading, err := table.ReadingAt(i)
		if err != nil {
			return nil, nil, err
		}
		if labelIdx >= len(row) {
			return nil, nil, fmt.Errorf("row %d: %w: %q", i+2, sensor.ErrMissingColumn, LabelColumn)
		}
		label, err := ParseStressLabel(row[labelIdx])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		features = append(features, reading.Vector())
		labels = append(labels, int(label))
	}
	return features, labels, nil
}

// TrainDetector fits a scaler on the training split, trains a decision tree
// on the scaled vectors and reports hold-out accuracy.
func TrainDetector(features [][]float64, labels []int, cfg TrainConfig) (*TrainResult, error) {
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	if len(features) < 2 {
		return nil, errors.New("need at least two samples to train")
	}

	trainX, trainY, testX, testY := splitDataset(features, labels, cfg.TestRatio, cfg.Seed)

	scaler, err := FitScaler(trainX, sensor.FeatureNames())
	if err != nil {
		return nil, err
	}
	scaledTrain, err := transformAll(scaler, trainX)
	if err != nil {
		return nil, err
	}

	tree := &DecisionTree{}
	if err := tree.Train(scaledTrain, trainY, cfg.MaxDepth); err != nil {
		return nil, err
	}

	result := &TrainResult{Scaler: scaler, Tree: tree, Train: len(trainX), Test: len(testX)}
	if len(testX) > 0 {
		scaledTest, err := transformAll(scaler, testX)
		if err != nil {
			return nil, err
		}
		correct := 0
		for i, x := range scaledTest {
			got, _, err := tree.Predict(x)
			if err != nil {
				return nil, err
			}
			if got == testY[i] {
				correct++
			}
		}
		result.Accuracy = float64(correct) / float64(len(testX))
	}
	return result, nil
}

func transformAll(scaler *Scaler, rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := scaler.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// splitDataset shuffles deterministically by seed. A ratio outside (0,1)
// falls back to 0.2; at least one sample always stays in the training split.
func splitDataset(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	if split < 1 {
		split = 1
	}
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}
