package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tgcsim/core/dispatch"
	"github.com/kilianp07/tgcsim/core/random"
	"github.com/kilianp07/tgcsim/core/report"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the priority rules, distributions and report sinks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "rule\tkey\torder\tdescription")
		for _, r := range dispatch.Rules() {
			order := "asc"
			if r.Descending {
				order = "desc"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Key, order, r.Description)
		}
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "distributions\t%v\n", random.Names())
		fmt.Fprintf(tw, "attributes\t%v\n", random.Keys)
		fmt.Fprintf(tw, "sinks\t%v\n", report.SinkNames())
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
