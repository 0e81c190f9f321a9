package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/geodesim/internal/analysis"
	"github.com/san-kum/geodesim/internal/automation"
	"github.com/san-kum/geodesim/internal/config"
	"github.com/san-kum/geodesim/internal/experiment"
	"github.com/san-kum/geodesim/internal/export"
	"github.com/san-kum/geodesim/internal/logging"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/spacetime"
	"github.com/san-kum/geodesim/internal/storage"
	"github.com/san-kum/geodesim/internal/telemetry"
	"github.com/san-kum/geodesim/internal/viz"
)

var (
	dataDir        string
	storeKind      string
	logLevel       string
	logFormat      string
	metricsAddr    string
	configFile     string
	integrator     string
	step           float64
	minStep        float64
	maxStep        float64
	maxErr         float64
	target         float64
	duration       float64
	orbit          bool
	spin           float64
	olderThan      time.Duration
	radii          []float64
	ensembleTarget float64
	parallel       int
	noSave         bool

	sweepMin    float64
	sweepMax    float64
	sweepPoints int

	perturbation float64
	trials       int
	seed         int64

	lyapDuration     float64
	lyapStep         float64
	lyapPerturbation float64
	spectrum         bool
)

var (
	settings *config.Config
	logger   *slog.Logger
	recorder *telemetry.Recorder
	registry = experiment.NewRegistry()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := &cobra.Command{
		Use:               "geodesim",
		Short:             "worldline propagation in curved spacetime",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := viz.PickPreset()
			if err != nil || id == "" {
				return err
			}
			return live(cmd, []string{id})
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory for run storage")
	pf.StringVar(&storeKind, "store", "dir", "storage backend (dir, sqlite)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "propagate a worldline and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	shapiroCmd := &cobra.Command{
		Use:   "shapiro",
		Short: "radar echo delay between Earth and Venus grazing the Sun",
		Args:  cobra.NoArgs,
		RunE:  runShapiro,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot radius against affine parameter in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	plotPNGCmd := &cobra.Command{
		Use:   "plot-png [run_id] [file]",
		Short: "render a run to a PNG file",
		Args:  cobra.ExactArgs(2),
		RunE:  plotPNG,
	}
	plotPNGCmd.Flags().BoolVar(&orbit, "orbit", false, "plot the equatorial projection instead of the radius")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tCHART\tBODY\tSTOP")
			for _, id := range config.All() {
				cfg := config.Lookup(id)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, cfg.Chart, cfg.Body, stopCondition(cfg))
			}
			return w.Flush()
		},
	}

	chartsCmd := &cobra.Command{
		Use:   "charts",
		Short: "list charts and conversions with their metric residuals",
		RunE:  listCharts,
	}
	chartsCmd.Flags().Float64Var(&spin, "spin", 0.5, "spin used for the kerr charts")

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [integrators...]",
		Short: "run one preset with several integrators",
		Args:  cobra.ArbitraryArgs,
		RunE:  compareIntegrators,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  live,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "outgoing radial photons from several starting radii",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().Float64SliceVar(&radii, "radii", []float64{2.5, 3, 5, 10, 20}, "starting radii in units of M")
	ensembleCmd.Flags().Float64Var(&ensembleTarget, "target", 100, "stop radius")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 for unlimited)")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "delete stored runs older than a cutoff (sqlite store)",
		Args:  cobra.NoArgs,
		RunE:  pruneRuns,
	}
	pruneCmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of runs to delete")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of preset runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset] [param]",
		Short: "run a preset across a range of one parameter",
		Args:  cobra.ExactArgs(2),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 for GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "rerun a preset with jittered initial velocities",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.01, "maximum velocity jitter")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 for time-based)")
	monteCarloCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 for GOMAXPROCS)")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [preset]",
		Short: "estimate the Lyapunov exponent of a geodesic",
		Args:  cobra.ExactArgs(1),
		RunE:  runLyapunov,
	}
	lyapunovCmd.Flags().Float64Var(&lyapDuration, "duration", 20, "affine parameter span")
	lyapunovCmd.Flags().Float64Var(&lyapStep, "step", 0.01, "fixed step")
	lyapunovCmd.Flags().Float64Var(&lyapPerturbation, "perturbation", 1e-8, "initial separation")
	lyapunovCmd.Flags().BoolVar(&spectrum, "spectrum", false, "perturb every state slot")

	rootCmd.AddCommand(runCmd, shapiroCmd, listCmd, plotCmd, plotPNGCmd, exportCSVCmd, exportJSONCmd,
		presetsCmd, chartsCmd, compareCmd, liveCmd, ensembleCmd, pruneCmd,
		scenarioCmd, sweepCmd, monteCarloCmd, lyapunovCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML config file")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (dopri5, rk4, euler)")
	f.Float64Var(&step, "step", config.DefaultStep, "initial step")
	f.Float64Var(&minStep, "min-step", config.DefaultMinStep, "smallest adaptive step")
	f.Float64Var(&maxStep, "max-step", config.DefaultMaxStep, "largest adaptive step")
	f.Float64Var(&maxErr, "max-err", config.DefaultMaxErr, "error tolerance per step")
	f.Float64Var(&target, "target", 0, "stop when this radius is crossed")
	f.Float64Var(&duration, "duration", 0, "stop after this much affine parameter")
}

// setup resolves process-wide settings: defaults, then environment, then
// flags. Config files and presets only describe the run itself.
func setup(cmd *cobra.Command, args []string) error {
	settings = config.DefaultConfig()
	if err := settings.ApplyEnv(); err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("data") {
		settings.Storage.DataDir = dataDir
	}
	if f.Changed("store") {
		settings.Storage.Kind = storeKind
	}
	if f.Changed("log-level") {
		settings.Log.Level = logLevel
	}
	if f.Changed("log-format") {
		settings.Log.Format = logFormat
	}

	var err error
	logger, err = logging.New(settings.Log)
	if err != nil {
		return err
	}

	recorder = telemetry.New()
	if metricsAddr != "" {
		go func() {
			if err := recorder.Serve(cmd.Context(), metricsAddr); err != nil {
				logger.Error("metrics server stopped", "addr", metricsAddr, "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", metricsAddr)
	}
	return nil
}

func env() experiment.Env {
	return experiment.Env{Logger: logger, Listener: recorder, Steps: recorder}
}

func openStore() (storage.Backend, error) {
	return storage.Open(settings.Storage.Kind, settings.Storage.DataDir)
}

// resolveConfig picks the preset (or defaults), overlays --config and then
// any explicitly set flag.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := ""
	if len(args) > 0 {
		cfg = config.Lookup(args[0])
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.All())
		}
		name = args[0]
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	f := cmd.Flags()
	if f.Changed("integrator") {
		cfg.Integrator.Kind = integrator
	}
	if f.Changed("step") {
		cfg.Integrator.DefaultStep = step
	}
	if f.Changed("min-step") {
		cfg.Integrator.MinStep = minStep
	}
	if f.Changed("max-step") {
		cfg.Integrator.MaxStep = maxStep
	}
	if f.Changed("max-err") {
		cfg.Integrator.MaxErr = maxErr
	}
	if f.Changed("target") {
		cfg.Run.TargetRadius = target
	}
	if f.Changed("duration") {
		cfg.Run.Duration = duration
	}
	cfg.Storage = settings.Storage
	cfg.Log = settings.Log

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("propagating %s in %s...\n", cfg.Body, cfg.Chart)
	start := time.Now()

	tr, err := experiment.Execute(cmd.Context(), cfg, registry, env())
	if tr == nil {
		return err
	}
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		runID, err := st.Save(storage.NewMetadata(name, cfg, tr), storage.NewSamples(tr))
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	printTrajectory(tr)
	return err
}

func printTrajectory(tr *experiment.Trajectory) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "stop:\t%s\n", tr.Stop)
	fmt.Fprintf(w, "lambda:\t%.6g\n", tr.Lambda)
	fmt.Fprintf(w, "iterations:\t%d\n", tr.Iterations)
	fmt.Fprintf(w, "evaluations:\t%d\n", tr.Stats.Evaluations)
	fmt.Fprintf(w, "over tolerance:\t%d\n", tr.Stats.OverTolerance)
	fmt.Fprintf(w, "chart switches:\t%d\n", tr.Switches)
	fmt.Fprintf(w, "samples:\t%d\n", len(tr.States))
	if tr.Reached {
		fmt.Fprintf(w, "crossing:\t%v (%s)\n", []float64(tr.Crossing), tr.CrossingChart)
	}
	w.Flush()

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(tr.Metrics))
	for name := range tr.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, tr.Metrics[name])
	}
}

func runShapiro(cmd *cobra.Command, args []string) error {
	res, err := experiment.Shapiro(cmd.Context(), registry, env())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "t earth:\t%.10f s\n", res.T1)
	fmt.Fprintf(w, "t venus:\t%.10f s\n", res.T2)
	fmt.Fprintf(w, "round trip:\t%.10f s\n", res.Dt)
	fmt.Fprintf(w, "flat round trip:\t%.10f s\n", res.Flat)
	fmt.Fprintf(w, "delay:\t%.6f us\n", res.Delay*1e6)
	fmt.Fprintf(w, "expected:\t%.6f us\n", res.Expected*1e6)
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tCHART\tBODY\tTIME\tLAMBDA\tSTOP\tINTEG")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.4g\t%s\t%s\n",
			run.ID,
			run.Preset,
			run.Chart,
			run.Body,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Lambda,
			run.Stop,
			run.Integrator,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Samples, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("chart: %s\n", meta.Chart)
	fmt.Printf("samples: %d\n\n", len(samples.States))

	graph := asciigraph.Plot(samples.Radii(),
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("r vs affine parameter"),
	)
	fmt.Println(graph)
	return nil
}

func plotPNG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	if orbit {
		err = export.OrbitPNG(f, meta.ID, samples)
	} else {
		err = export.RadiusPNG(f, meta.ID, samples)
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, meta, samples)
}

func stopCondition(cfg *config.Config) string {
	var parts []string
	if cfg.Run.TargetRadius > 0 {
		parts = append(parts, fmt.Sprintf("r=%g", cfg.Run.TargetRadius))
	}
	if cfg.Run.Duration > 0 {
		parts = append(parts, fmt.Sprintf("lambda=%g", cfg.Run.Duration))
	}
	return strings.Join(parts, ", ")
}

func listCharts(cmd *cobra.Command, args []string) error {
	atlas := registry.Atlas(spacetime.Params{Mass: 1, AngMomentum: spin})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHART\tPOINT\t|g g^-1 - 1|")
	for _, name := range atlas.Charts() {
		c, err := atlas.Chart(name)
		if err != nil {
			return err
		}
		x := manifold.Coords{0, 6, 1.1, 0.7}
		if strings.Contains(name, "-pole") {
			x = manifold.Coords{0, 6, 0.2, -0.3}
		}
		fmt.Fprintf(w, "%s\t%v\t%.2e\n", name, x[:], manifold.MetricResidual(c, x))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nconversions:")
	for _, conv := range atlas.Conversions() {
		fmt.Printf("  %s -> %s\n", conv.From().Name(), conv.To().Name())
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	id := "radial/outgoing"
	kinds := registry.ListIntegrators()
	if len(args) > 0 {
		id = args[0]
	}
	if len(args) > 1 {
		kinds = args[1:]
	}

	cfg, _, err := resolveConfig(cmd, []string{id})
	if err != nil {
		return err
	}
	fmt.Printf("comparing %v on %s\n\n", kinds, id)

	results, err := experiment.Compare(cmd.Context(), cfg, kinds, registry, env())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tSTOP\tITER\tEVALS\tLAMBDA\tNORM DRIFT\tENERGY DRIFT")
	for _, kind := range kinds {
		tr := results[kind]
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6g\t%.3e\t%.3e\n",
			kind, tr.Stop, tr.Iterations, tr.Stats.Evaluations, tr.Lambda,
			tr.Metrics["norm_drift"], tr.Metrics["energy_drift"])
	}
	return w.Flush()
}

func live(cmd *cobra.Command, args []string) error {
	id := "orbit/polar"
	if len(args) > 0 {
		id = args[0]
	}
	cfg, _, err := resolveConfig(cmd, []string{id})
	if err != nil {
		return err
	}
	e := env()
	e.Logger = logging.Discard()
	return viz.Live(cmd.Context(), id, cfg, registry, e)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfgs := make([]*config.Config, len(radii))
	for i, r0 := range radii {
		cfgs[i] = config.RadialPhoton(1, r0, ensembleTarget)
		if err := cfgs[i].Validate(); err != nil {
			return fmt.Errorf("r0=%g: %w", r0, err)
		}
	}

	trs, err := experiment.Ensemble(cmd.Context(), cfgs, registry, env(), parallel)
	if err != nil {
		return err
	}

	p := spacetime.Params{Mass: 1}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "R0\tSTOP\tLAMBDA\tT AT TARGET\tEVALS")
	for i, tr := range trs {
		t := "-"
		if tr.Reached {
			t = fmt.Sprintf("%.6f", p.StaticTime(tr.Crossing[0], tr.Crossing[1]))
		}
		fmt.Fprintf(w, "%g\t%s\t%.6g\t%s\t%d\n", radii[i], tr.Stop, tr.Lambda, t, tr.Stats.Evaluations)
	}
	return w.Flush()
}

func pruneRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sq, ok := st.(*storage.SQLiteStore)
	if !ok {
		return fmt.Errorf("prune needs the sqlite store (--store sqlite)")
	}
	n, err := sq.Prune(time.Now().Add(-olderThan))
	if err != nil {
		return err
	}
	fmt.Printf("pruned %d runs\n", n)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := automation.RunScenario(cmd.Context(), sc, registry, env(), st)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tSTOP\tLAMBDA\tRUN")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.6g\t%s\n", i+1, sc.Steps[i].Preset, res.Trajectory.Stop, res.Trajectory.Lambda, res.RunID)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep := &automation.Sweep{
		Preset:   args[0],
		Param:    args[1],
		Min:      sweepMin,
		Max:      sweepMax,
		Points:   sweepPoints,
		Parallel: parallel,
	}
	points, err := automation.RunSweep(cmd.Context(), sweep, registry, env())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTOP\tLAMBDA\tEVALS\tNORM DRIFT\n", strings.ToUpper(args[1]))
	for _, p := range points {
		tr := p.Trajectory
		fmt.Fprintf(w, "%g\t%s\t%.6g\t%d\t%.3e\n", p.Value, tr.Stop, tr.Lambda, tr.Stats.Evaluations, tr.Metrics["norm_drift"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if best, ok := automation.Best(points, "norm_drift"); ok {
		fmt.Printf("\nsmallest norm drift at %s=%g\n", args[1], best.Value)
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	mc := &automation.MonteCarlo{
		Preset:       args[0],
		Perturbation: perturbation,
		Trials:       trials,
		Seed:         seed,
		Parallel:     parallel,
	}
	results, err := automation.RunMonteCarlo(cmd.Context(), mc, registry, env())
	if err != nil {
		return err
	}

	tally := automation.Tally(results)
	outcomes := make([]string, 0, len(tally))
	for o := range tally {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	fmt.Printf("%d trials of %s\n", len(results), args[0])
	for _, o := range outcomes {
		fmt.Printf("  %s: %d\n", o, tally[o])
	}
	return nil
}

func runLyapunov(cmd *cobra.Command, args []string) error {
	cfg := config.Lookup(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.All())
	}
	if cfg.Body != "particle" {
		return fmt.Errorf("lyapunov needs a particle preset, %s is %s", args[0], cfg.Body)
	}
	p, err := experiment.BuildParticle(cfg, registry)
	if err != nil {
		return err
	}

	opts := analysis.DefaultOptions()
	opts.Duration, opts.Step, opts.Perturbation = lyapDuration, lyapStep, lyapPerturbation

	if spectrum {
		exps, err := analysis.LyapunovSpectrum(cmd.Context(), p, opts)
		if err != nil {
			return err
		}
		for i, l := range exps {
			fmt.Printf("  slot %d: %.6f\n", i, l)
		}
		return nil
	}

	l, err := analysis.LyapunovExponent(cmd.Context(), p, opts)
	if err != nil {
		return err
	}
	fmt.Printf("lyapunov exponent: %.6f per unit affine parameter\n", l)
	return nil
}
