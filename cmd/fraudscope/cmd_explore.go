package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FlavioCFOliveira/fraudscope/internal/analysis"
	"github.com/FlavioCFOliveira/fraudscope/internal/metrics"
)

func newExploreCmd(root *rootOptions) *cobra.Command {
	var fullMatrix bool
	cmd := &cobra.Command{
		Use:   "explore <csv>",
		Short: "Print summaries, class counts, histograms and correlations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cfg.Data.Path = args[0]
			if cmd.Flags().Changed("full-matrix") {
				cfg.Explore.FullMatrix = fullMatrix
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
			if err != nil {
				return err
			}
			runner := &analysis.Runner{
				Config:   cfg,
				Logger:   logger,
				Out:      cmd.OutOrStdout(),
				Recorder: metrics.NewRecorder(),
			}
			if _, err := runner.Explore(cmd.Context()); err != nil {
				return fmt.Errorf("explore: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fullMatrix, "full-matrix", false, "print the whole correlation matrix")
	return cmd
}
