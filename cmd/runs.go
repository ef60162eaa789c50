package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	infrareport "github.com/kilianp07/tgcsim/infra/report"
)

var runsDB string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the runs stored by the sqlite sink",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := infrareport.NewSQLiteStore(runsDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		runs, err := store.Runs()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "run\tcreated\trule\tarrivals\tdeparted\tbalked\tsatisfaction %\tgrid kWh")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%.2f\t%.2f\n", r.RunID, r.CreatedAt.Format(time.RFC3339),
				r.Rule, r.Arrivals, r.Departed, r.Balked, r.MeanSatisfaction, r.GridEnergyKWh)
		}
		return tw.Flush()
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsDB, "db", "tgcsim.db", "sqlite database written by the sqlite sink")
	rootCmd.AddCommand(runsCmd)
}
