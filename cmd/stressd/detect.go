package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stresscheck/ml"
	"stresscheck/presentation"
	"stresscheck/sensor"
)

type detectOptions struct {
	live        bool
	asJSON      bool
	temperature float64
	spo2        float64
	heartRate   float64
}

func newDetectCmd(a *app) *cobra.Command {
	var opts detectOptions

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Classify one reading and print the stress level",
		Example: `  stressd detect --live
  stressd detect --temperature 36.5 --spo2 98 --heart-rate 72`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manual := cmd.Flags().Changed("temperature") || cmd.Flags().Changed("spo2") || cmd.Flags().Changed("heart-rate")
			if opts.live == manual {
				return errors.New("use either --live or --temperature, --spo2 and --heart-rate")
			}
			return a.detect(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.live, "live", false, "Fetch the latest reading from the sensor sheet")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the detection as JSON")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "Body temperature in °C (30-45)")
	cmd.Flags().Float64Var(&opts.spo2, "spo2", 0, "Oxygen saturation in % (50-100)")
	cmd.Flags().Float64Var(&opts.heartRate, "heart-rate", 0, "Heart rate in BPM (30-200)")
	cmd.MarkFlagsRequiredTogether("temperature", "spo2", "heart-rate")
	return cmd
}

func (a *app) detect(cmd *cobra.Command, opts detectOptions) error {
	out := cmd.OutOrStdout()
	var renderer presentation.Renderer = presentation.Terminal{}

	detector, err := a.loadDetector()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	view := presentation.View{}
	var reading sensor.Reading
	source := "manual"
	if opts.live {
		source = "live"
		fetcher := sensor.NewFetcher(a.cfg.Sheet.URL, a.cfg.Sheet.Timeout)
		snap, err := fetcher.FetchLatest(ctx)
		if err != nil {
			a.logger.Warn("live fetch failed", zap.Error(err))
			if !opts.asJSON {
				if rerr := renderer.Render(out, presentation.View{Error: "Failed to fetch sensor data: " + err.Error()}); rerr != nil {
					a.logger.Warn("render fetch failure", zap.Error(rerr))
				}
			}
			return fmt.Errorf("fetch sensor data: %w", err)
		}
		reading = snap.Reading
		view.Snapshot = &snap
	} else {
		reading, err = sensor.NewManualReading(opts.temperature, opts.spo2, opts.heartRate)
		if err != nil {
			return err
		}
	}

	d, err := detector.Detect(ctx, reading)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	d.Source = source
	a.logger.Debug("detection",
		zap.String("source", source),
		zap.Stringer("label", d.Label),
		zap.Float64("confidence", d.Confidence))

	if opts.asJSON {
		return writeJSON(cmd, d)
	}
	view.Detection = &d
	return renderer.Render(out, view)
}

func writeJSON(cmd *cobra.Command, d ml.Detection) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
