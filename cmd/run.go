package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tgcsim/app"
	"github.com/kilianp07/tgcsim/config"
	"github.com/kilianp07/tgcsim/core/report"
	"github.com/kilianp07/tgcsim/infra/logger"
	infrareport "github.com/kilianp07/tgcsim/infra/report"
)

var runFlags struct {
	metricsAddr string
	scenario    string
	trace       string
	output      string
	seed        uint64
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print its summary",
	RunE:  runSimulation,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.metricsAddr, "metrics-addr", "", "serve /metrics on this address and keep serving after the run")
	f.StringVar(&runFlags.scenario, "scenario", "", "YAML arrival list replacing the random arrivals")
	f.StringVar(&runFlags.trace, "trace", "", "write simulation events as JSON lines to this file, - for stdout")
	f.StringVarP(&runFlags.output, "output", "o", "table", "summary format: table or json")
	f.Uint64Var(&runFlags.seed, "seed", 0, "override the configured seed")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runFlags.scenario != "" {
		cfg.Simulation.Scenario = runFlags.scenario
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = runFlags.seed
	}
	logg, err := logger.NewWithConfig("cli", cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var opts []app.Option
	opts = append(opts, app.WithLogOutput(cmd.ErrOrStderr()))
	if runFlags.trace != "" {
		w, closeTrace, err := openTrace(runFlags.trace, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeTrace()
		opts = append(opts, app.WithTrace(w))
	}

	serveErr := make(chan error, 1)
	if runFlags.metricsAddr != "" {
		go func() { serveErr <- infrareport.StartPromServer(ctx, runFlags.metricsAddr, logg) }()
	}

	svc, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("close sinks: %v", err)
		}
	}()
	sum, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if err := printSummary(cmd.OutOrStdout(), sum, runFlags.output); err != nil {
		return err
	}

	if runFlags.metricsAddr == "" {
		return nil
	}
	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		return <-serveErr
	}
}

func openTrace(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("trace: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func printSummary(w io.Writer, s report.Summary, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		out := s
		out.Series = nil
		return enc.Encode(out)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "rule\t%s (%s)\n", s.Rule, s.Allocator)
	fmt.Fprintf(tw, "horizon\t%.2f h\n", s.HorizonHours)
	fmt.Fprintf(tw, "vehicles\t%d arrived, %d departed, %d in progress, %d balked, %d reneged\n",
		s.Arrivals, s.Departed, s.InProgress, s.Balked, s.Reneged)
	fmt.Fprintf(tw, "satisfaction\t%.2f %%\n", s.MeanSatisfaction)
	fmt.Fprintf(tw, "queue\tmean %.3f, max %d\n", s.QueueMeanLength, s.QueueMaxLength)
	fmt.Fprintf(tw, "grid\t%.2f kWh over %.2f h, ceiling %.2f kW, utilization %.2f %%, missed %.2f kWh, unmet %.2f kWh, cost %.2f EUR\n",
		s.Grid.EnergyKWh, s.Grid.ActiveHours, s.Grid.CeilingKW, s.Grid.Utilization, s.Grid.MissedKWh, s.Grid.UnmetKWh, s.Grid.CostEUR)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "station\tconnected\trated kW\tenergy kWh\tactive h\tutilization %\tsessions\tmean session h")
	for _, st := range s.Stations {
		fmt.Fprintf(tw, "%s\t%t\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%.2f\n",
			st.ID, st.Connected, st.RatedKW, st.EnergyKWh, st.ActiveHours, st.Utilization, st.Sessions, st.MeanSessionHours)
	}
	return tw.Flush()
}
