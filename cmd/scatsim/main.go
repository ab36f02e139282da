package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/scatsim/internal/config"
	"github.com/san-kum/scatsim/internal/experiment"
	"github.com/san-kum/scatsim/internal/optim"
	"github.com/san-kum/scatsim/internal/potential"
	"github.com/san-kum/scatsim/internal/storage"
	"github.com/san-kum/scatsim/internal/viz"
	"github.com/san-kum/scatsim/internal/watch"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	label      string
	outFile    string
	workers    int
	eStar      float64
	noSave     bool
	scanParams []string
	scanMetric string
	showStyle  string
	watchRun   bool

	logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scatsim",
		Short:         "semiclassical scattering lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".scatsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "sweep phase shifts and analyze resonances",
		Args:  cobra.NoArgs,
		RunE:  runAnalysis,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or json)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&label, "label", "run", "run label")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "also write results JSON to this path")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	runCmd.Flags().Float64Var(&eStar, "estar", 0, "reference energy for the cross section")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVarP(&watchRun, "watch", "w", false, "re-run whenever the config file changes")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "scan potential parameters and rank by a metric",
		Args:  cobra.NoArgs,
		RunE:  runScan,
	}
	scanCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or json)")
	scanCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	scanCmd.Flags().Float64Var(&eStar, "estar", 0, "reference energy for the cross section")
	scanCmd.Flags().StringArrayVar(&scanParams, "param", nil, "term.name=v1,v2,... (repeatable)")
	scanCmd.Flags().StringVar(&scanMetric, "metric", "sigma_total", "metric to maximize")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run summary",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&showStyle, "style", "", "glamour style (dark, light, notty; empty = auto)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot phase shifts, delays and the cross section",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse a run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run results to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := storage.New(dataDir).LoadResult(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSONStdout(res)
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id] [phases|dsdo]",
		Short: "export phase table or cross section to CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	potentialsCmd := &cobra.Command{
		Use:   "potentials",
		Short: "list potential types and their parameters",
		Run: func(cmd *cobra.Command, args []string) {
			reg := potential.NewRegistry()
			for _, name := range reg.List() {
				params, _ := reg.Params(name)
				fmt.Printf("  %-14s %s\n", name, strings.Join(params, ", "))
			}
		},
	}

	rootCmd.AddCommand(runCmd, scanCmd, listCmd, showCmd, plotCmd, viewCmd, exportJSONCmd, exportCSVCmd, presetsCmd, potentialsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		cfg = config.GetPreset("demo")
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("estar") {
		e := eStar
		cfg.EStar = &e
	}
	return cfg, nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !watchRun {
		return analyze(ctx, cmd)
	}
	if configFile == "" {
		return fmt.Errorf("--watch needs --config")
	}

	if err := analyze(ctx, cmd); err != nil {
		logger.Error("run failed", zap.Error(err))
	}
	logger.Info("watching config", zap.String("path", configFile))
	return watch.New(configFile, watch.DefaultDebounce).Run(ctx, func(ctx context.Context) error {
		fmt.Println()
		if err := analyze(ctx, cmd); err != nil {
			logger.Error("run failed", zap.Error(err))
		}
		return nil
	})
}

func analyze(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	energies := cfg.EnergyValues()
	logger.Debug("starting sweep",
		zap.Ints("ells", cfg.Ells),
		zap.Int("energies", len(energies)),
		zap.Int("steps", cfg.Integration.Steps),
		zap.Int("workers", cfg.Workers),
	)

	res, err := experiment.Run(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("run complete",
		zap.String("potential", res.Potential),
		zap.Int("candidates", res.CandidateCount()),
		zap.Float64("sigma_total", res.SigmaTotal),
	)

	printSummary(res)

	if outFile != "" {
		if err := storage.ExportJSON(outFile, res); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", outFile)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(label, cfg, res)
	if err != nil {
		return err
	}
	logger.Debug("stored run", zap.String("id", runID), zap.String("dir", dataDir))
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func printSummary(res *experiment.Result) {
	fmt.Printf("potential: %s\n", res.Potential)
	for _, ell := range res.Phases.Ells() {
		cands := res.Candidates[ell]
		if len(cands) == 0 {
			fmt.Printf("l=%d: no resonance candidates\n", ell)
			continue
		}
		parts := make([]string, len(cands))
		for i, c := range cands {
			parts[i] = fmt.Sprintf("E=%.4g (score %.3g)", c.Energy, c.Score)
		}
		fmt.Printf("l=%d: %s\n", ell, strings.Join(parts, ", "))
	}
	fmt.Printf("E*=%.4g k*=%.4g sigma_tot=%.6g\n", res.EStar, res.KStar, res.SigmaTotal)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPOTENTIAL\tWHEN\tELLS\tENERGIES\tE*\tCANDIDATES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d [%.3g, %.3g]\t%.4g\t%d\n",
			run.ID,
			run.Potential,
			humanize.Time(run.Timestamp),
			run.Ells,
			run.EnergyCount, run.EnergyMin, run.EnergyMax,
			run.EStar,
			run.Candidates,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s (%s)", meta.ID, humanize.Time(meta.Timestamp))
	out, err := viz.RenderSummary(title, res, showStyle, 80)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	res, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("potential: %s\n\n", res.Potential)
	for _, ell := range res.Phases.Ells() {
		fmt.Println(viz.Plot(res.Phases[ell].Deltas(), fmt.Sprintf("delta_%d(E)", ell), 80, 10))
		fmt.Println()
		fmt.Println(viz.Plot(res.Delays[ell].Taus(), fmt.Sprintf("tau_%d(E)", ell), 80, 8))
		fmt.Println()
	}

	dsdo := make([]float64, len(res.CrossSection))
	for i, s := range res.CrossSection {
		dsdo[i] = s.Value
	}
	fmt.Println(viz.Plot(dsdo, fmt.Sprintf("dsigma/dOmega(theta) at E*=%.4g", res.EStar), 80, 10))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	res, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}
	return viz.Run(args[0], res)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	res, err := storage.New(dataDir).LoadResult(args[0])
	if err != nil {
		return err
	}

	table := "phases"
	if len(args) > 1 {
		table = args[1]
	}
	switch table {
	case "phases":
		return storage.WritePhaseCSV(os.Stdout, res)
	case "dsdo":
		return storage.WriteCrossSectionCSV(os.Stdout, res)
	}
	return fmt.Errorf("unknown table %q (phases, dsdo)", table)
}

func parseScanParam(s string) (optim.Param, []float64, error) {
	key, list, ok := strings.Cut(s, "=")
	if !ok {
		return optim.Param{}, nil, fmt.Errorf("scan param %q: want term.name=v1,v2", s)
	}
	p, err := optim.ParseParam(key)
	if err != nil {
		return optim.Param{}, nil, err
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return optim.Param{}, nil, fmt.Errorf("scan param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return p, values, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	metric, ok := optim.Metrics[scanMetric]
	if !ok {
		return fmt.Errorf("unknown metric: %s (available: %v)", scanMetric, optim.MetricNames())
	}
	if len(scanParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	var params []optim.Param
	var ranges [][]float64
	for _, s := range scanParams {
		p, values, err := parseScanParam(s)
		if err != nil {
			return err
		}
		params = append(params, p)
		ranges = append(ranges, values)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug("starting scan", zap.Strings("params", scanParams), zap.String("metric", scanMetric))
	best, points, err := optim.NewGridSearch(params, ranges).Search(ctx, cfg, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, p := range params {
		fmt.Fprintf(w, "%s\t", p)
	}
	fmt.Fprintln(w, strings.ToUpper(scanMetric))
	for _, pt := range points {
		for _, p := range params {
			fmt.Fprintf(w, "%g\t", pt.Values[p.String()])
		}
		fmt.Fprintf(w, "%.6g\n", pt.Metric)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s=%.6g at %v\n", scanMetric, best.Metric, best.Values)
	return nil
}
