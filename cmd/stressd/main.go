// Command stressd serves the stress detection page and API, runs one-shot
// detections from the terminal and trains new artifacts.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stresscheck/config"
	"stresscheck/logging"
	"stresscheck/ml"
)

// app holds state shared by every subcommand once the root has run.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	flush  func()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "stressd",
		Short: "Stress level detection from body temperature, SpO2 and heart rate",
		Long: `stressd classifies a physiological reading into one of four stress
levels (Anxious, Calm, Relaxed, Tense) using a pre-fitted scaler and classifier.

Readings come either from the live sensor spreadsheet or from manual entry.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yaml", "Path to the YAML config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newDetectCmd(a))
	root.AddCommand(newTrainCmd(a))
	return root
}

func (a *app) init() error {
	path := config.Resolve(a.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.RelativeTo(filepath.Dir(path))
	a.cfg = cfg

	logger, flush, err := logging.New(cfg.Log, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.flush = flush
	zap.ReplaceGlobals(logger)

	logger.Debug("config loaded", zap.String("path", path))
	return nil
}

// close flushes the logger. Cobra skips post-run hooks when RunE fails, so
// run defers this instead.
func (a *app) close() {
	if a.flush != nil {
		a.flush()
		a.flush = nil
	}
}

func (a *app) loadDetector() (*ml.Detector, error) {
	detector, err := ml.LoadArtifacts(a.cfg.ML.ScalerPath, a.cfg.ML.ModelType, a.cfg.ML.ModelPath, a.cfg.ML.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	a.logger.Info("artifacts loaded",
		zap.String("model_type", a.cfg.ML.ModelType),
		zap.String("model", a.cfg.ML.ModelPath),
		zap.String("scaler", a.cfg.ML.ScalerPath))
	return detector, nil
}

// run executes one command line and flushes logs on every exit path.
func run(a *app, args []string, stdout, stderr io.Writer) error {
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

func main() {
	if err := run(&app{}, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
