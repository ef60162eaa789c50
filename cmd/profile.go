package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tgcsim/core/chargecurve"
)

var profileParams chargecurve.Params

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the CC/CV charging profile of one session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := chargecurve.Compute(profileParams)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "phase\tenergy kWh\thours\tavg kW\ttruncated")
		fmt.Fprintf(tw, "CC\t%.3f\t%.3f\t%.3f\t%t\n", p.CC.EnergyKWh, p.CC.Hours, p.CC.PowerKW, p.CC.Truncated)
		fmt.Fprintf(tw, "CV\t%.3f\t%.3f\t%.3f\t%t\n", p.CV.EnergyKWh, p.CV.Hours, p.CV.PowerKW, p.CV.Truncated)
		fmt.Fprintf(tw, "total\t%.3f\t%.3f\t\t\n", p.EnergyKWh(), p.Hours())
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "target\t%.3f kWh\n", p.TargetKWh)
		fmt.Fprintf(tw, "unmet\t%.3f kWh\n", p.UnmetKWh)
		fmt.Fprintf(tw, "converged\t%t\n", p.Converged)
		return tw.Flush()
	},
}

func init() {
	f := profileCmd.Flags()
	f.Float64Var(&profileParams.StayHours, "stay", 8, "remaining stay, h")
	f.Float64Var(&profileParams.SoC, "soc", 0.2, "state of charge on arrival")
	f.Float64Var(&profileParams.DesiredSoC, "desired", 1, "desired state of charge")
	f.Float64Var(&profileParams.CapacityKWh, "capacity", 50, "battery capacity, kWh")
	f.Float64Var(&profileParams.VehicleMaxKW, "vehicle-kw", 11, "vehicle max input, kW")
	f.Float64Var(&profileParams.StationMaxKW, "station-kw", 22, "station max output, kW")
	f.Float64Var(&profileParams.Decay, "decay", 0.5, "CV decay constant, 1/h")
	f.Float64Var(&profileParams.Breakpoint, "breakpoint", 0.8, "CC/CV breakpoint as a fraction of capacity")
	f.Float64Var(&profileParams.Tolerance, "tolerance", chargecurve.DefaultTolerance, "CV solver tolerance, kWh")
	rootCmd.AddCommand(profileCmd)
}
