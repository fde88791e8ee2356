package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FlavioCFOliveira/fraudscope/internal/analysis"
	"github.com/FlavioCFOliveira/fraudscope/internal/metrics"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		metricsOut    string
		models        []string
		resampleFirst bool
		historyDir    string
	)
	cmd := &cobra.Command{
		Use:   "analyze <csv>",
		Short: "Run the full analysis and score every model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cfg.Data.Path = args[0]
			if cmd.Flags().Changed("metrics-out") {
				cfg.Metrics.Out = metricsOut
			}
			if cmd.Flags().Changed("models") {
				cfg.Models = normaliseModels(models)
			}
			if cmd.Flags().Changed("resample-first") {
				cfg.Split.ResampleBeforeSplit = resampleFirst
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if historyDir != "" {
				if err := os.MkdirAll(historyDir, 0o755); err != nil {
					return fmt.Errorf("history dir: %w", err)
				}
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}
			runner := &analysis.Runner{
				Config:     cfg,
				Logger:     logger,
				Out:        cmd.OutOrStdout(),
				Recorder:   metrics.NewRecorder(),
				HistoryDir: historyDir,
			}
			res, err := runner.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			logger.Info("analysis complete", "models", len(res.Models), "train_rows", res.TrainRows, "test_rows", res.TestRows)
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus textfile metrics to this path")
	cmd.Flags().StringSliceVar(&models, "models", nil, "models to fit (random_forest, logistic_regression)")
	cmd.Flags().BoolVar(&resampleFirst, "resample-first", true, "apply SMOTE before the train/test split")
	cmd.Flags().StringVar(&historyDir, "history-dir", "", "directory for per-epoch training history CSVs")
	return cmd
}

func normaliseModels(models []string) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
