package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stresscheck/ml"
)

type trainOptions struct {
	data      string
	modelOut  string
	scalerOut string
	maxDepth  int
	testRatio float64
	seed      int64
}

func newTrainCmd(a *app) *cobra.Command {
	var opts trainOptions

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a scaler and decision tree from a labeled CSV",
		Long: `train reads a CSV with the columns "Suhu (°C)", "SpO2 (%)",
"HeartRate (BPM)" and "Label" (a label name or class id 0-3), fits the scaler
and a decision tree, reports hold-out accuracy and writes both artifacts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.modelOut == "" {
				opts.modelOut = a.cfg.ML.ModelPath
			}
			if opts.scalerOut == "" {
				opts.scalerOut = a.cfg.ML.ScalerPath
			}
			return a.train(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "Labeled training CSV")
	cmd.Flags().StringVar(&opts.modelOut, "model-out", "", "Model output path (default ml.model_path)")
	cmd.Flags().StringVar(&opts.scalerOut, "scaler-out", "", "Scaler output path (default ml.scaler_path)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 8, "Maximum tree depth")
	cmd.Flags().Float64Var(&opts.testRatio, "test-ratio", 0.2, "Hold-out share used for accuracy")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "Shuffle seed")
	cmd.MarkFlagRequired("data")
	return cmd
}

func (a *app) train(cmd *cobra.Command, opts trainOptions) error {
	file, err := os.Open(opts.data)
	if err != nil {
		return err
	}
	defer file.Close()

	features, labels, err := ml.LoadTrainingSet(file)
	if err != nil {
		return fmt.Errorf("failed to build training data: %w", err)
	}

	result, err := ml.TrainDetector(features, labels, ml.TrainConfig{
		MaxDepth:  opts.maxDepth,
		TestRatio: opts.testRatio,
		Seed:      opts.seed,
	})
	if err != nil {
		return fmt.Errorf("failed to train model: %w", err)
	}

	for _, path := range []string{opts.modelOut, opts.scalerOut} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := result.Tree.Save(opts.modelOut); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	if err := result.Scaler.Save(opts.scalerOut); err != nil {
		return fmt.Errorf("failed to save scaler: %w", err)
	}

	a.logger.Info("training finished",
		zap.Int("train", result.Train),
		zap.Int("test", result.Test),
		zap.Float64("accuracy", result.Accuracy),
		zap.Int("nodes", len(result.Tree.Nodes())))

	fmt.Fprintf(cmd.OutOrStdout(), "samples train=%d test=%d accuracy=%.2f\n", result.Train, result.Test, result.Accuracy)
	fmt.Fprintf(cmd.OutOrStdout(), "model saved to %s\nscaler saved to %s\n", opts.modelOut, opts.scalerOut)
	return nil
}
