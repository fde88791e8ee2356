package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FlavioCFOliveira/fraudscope/internal/synth"
)

func newSynthCmd() *cobra.Command {
	var (
		rows      int
		fraudRate float64
		seed      int64
	)
	cmd := &cobra.Command{
		Use:   "synth <out.csv>",
		Short: "Write a synthetic transactions CSV with the creditcard.csv layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := synth.Generate(rows, fraudRate, seed)
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			if err := synth.WriteCSV(f, d); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", args[0], err)
			}
			counts := d.ClassCounts()
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d transaction records (%d fraud) saved to %s\n", d.Len(), counts[1], args[0])
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 10000, "number of transactions")
	cmd.Flags().Float64Var(&fraudRate, "fraud-rate", 0.0017, "fraction of fraudulent transactions")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	return cmd
}
