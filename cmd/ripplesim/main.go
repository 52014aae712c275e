package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ripplesim/internal/analysis"
	"github.com/san-kum/ripplesim/internal/automation"
	"github.com/san-kum/ripplesim/internal/config"
	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/effect"
	"github.com/san-kum/ripplesim/internal/export"
	"github.com/san-kum/ripplesim/internal/metrics"
	"github.com/san-kum/ripplesim/internal/sim"
	"github.com/san-kum/ripplesim/internal/storage"
	"github.com/san-kum/ripplesim/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool

	configFile string
	preset     string
	frames     int
	seed       int64
	dt         float64
	workers    int

	runName  string
	frameLog string
	poke     bool

	outPath string
	svgPath string

	numRuns   int
	sweepArg  string
	sweepMin  float64
	sweepMax  float64
	sweepStep int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ripplesim",
		Short:         "interactive water ripple and particle swarm effects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel, logJSON)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(launcher(effect.NewRegistry()))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ripplesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run [effect]",
		Short: "run an effect headless and save the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runEffect,
	}
	configFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the effect)")
	runCmd.Flags().StringVar(&frameLog, "frame-log", "", "stream frames to this CSV file")
	runCmd.Flags().BoolVar(&poke, "poke", true, "disturb the centre on the first frame")

	liveCmd := &cobra.Command{
		Use:   "live [effect]",
		Short: "run an effect in the terminal, driven by the mouse",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	configFlags(liveCmd)

	renderCmd := &cobra.Command{
		Use:   "render [effect]",
		Short: "run an effect headless and write the last frame as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderEffect,
	}
	configFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output PNG (defaults to <effect>.png)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the plot as SVG")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "energy spectrum and ring-down of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and frames as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).Export(args[0], os.Stdout)
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [effect]",
		Short: "list available presets for an effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for effect: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [effect]",
		Short: "run an ensemble of seeds in parallel and report throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchEffect,
	}
	configFlags(benchCmd)
	benchCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [effect]",
		Short: "sweep one parameter and compare energy",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	configFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepArg, "param", "", "parameter to sweep ("+strings.Join(sweepParams(), ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepStep, "steps", 5, "number of values")
	_ = sweepCmd.MarkFlagRequired("param")

	rootCmd.AddCommand(runCmd, liveCmd, renderCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd, benchCmd, scenarioCmd, sweepCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "err", err)
		stop()
		os.Exit(1)
	}
}

func configFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&frames, "frames", 600, "frames to run")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&dt, "dt", 1, "timestep")
	cmd.Flags().IntVar(&workers, "workers", 0, "row workers (0 = serial, -1 = one per CPU)")
}

func newLogger(level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command, effectName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(effectName, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(effectName))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.Effect = effectName

	flags := cmd.Flags()
	if flags.Changed("frames") || configFile == "" {
		cfg.Frames = frames
	}
	if flags.Changed("seed") || configFile == "" {
		cfg.Seed = seed
	}
	if flags.Changed("dt") || configFile == "" {
		cfg.Dt = dt
	}
	if flags.Changed("workers") || configFile == "" {
		cfg.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSimulator builds the effect and a simulator with the config's own
// sources and the default metrics attached.
func newSimulator(registry *effect.Registry, cfg *config.Config) (*sim.Simulator, effect.Effect, error) {
	eff, err := registry.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	s := sim.New(eff, sim.WithLogger(slog.Default().With("effect", cfg.Effect)))
	for _, src := range automation.Sources(cfg, eff) {
		s.AddSource(src)
	}
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	return s, eff, nil
}

func centrePoke(e effect.Effect) dynamo.Disturbance {
	return dynamo.Moving(e.Width()/2, e.Height()/2, 5, 2)
}

func runEffect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, eff, err := newSimulator(effect.NewRegistry(), cfg)
	if err != nil {
		return err
	}
	if poke {
		s.Mailbox().Post(centrePoke(eff))
	}
	var fl *storage.FrameLog
	if frameLog != "" {
		if fl, err = storage.NewFrameLog(frameLog); err != nil {
			return err
		}
	}

	fmt.Printf("running %s effect...\n", cfg.Effect)
	start := time.Now()

	result, err := runFrames(cmd.Context(), s, cfg, fl)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	name := runName
	if name == "" {
		name = cfg.Effect
	}
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", len(result.Frames))
	fmt.Printf("disturbances: %d injected, %d rejected\n", result.Injected, result.Rejected)
	fmt.Println("\nmetrics:")
	for _, k := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", k, result.Metrics[k])
	}
	return nil
}

// runFrames runs s for cfg.Frames frames, streaming each frame into fl when
// it is not nil. A frame log that failed to write fails the run.
func runFrames(ctx context.Context, s *sim.Simulator, cfg *config.Config, fl *storage.FrameLog) (result *sim.Result, err error) {
	if fl != nil {
		s.AddObserver(fl)
		defer func() {
			if cerr := fl.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("frame log: %w", cerr)
			}
		}()
	}
	return s.Run(ctx, sim.Config{Frames: cfg.Frames, Dt: cfg.Dt})
}

// launcher builds live views for the picker and the live command.
func launcher(registry *effect.Registry) viz.Launcher {
	return func(cfg *config.Config) (viz.Model, error) {
		s, eff, err := newSimulator(registry, cfg)
		if err != nil {
			return viz.Model{}, err
		}
		snap := func() (string, error) {
			path := fmt.Sprintf("%s-%s.png", eff.Name(), time.Now().Format("20060102-150405"))
			return path, snapshot(eff, path)
		}
		return viz.NewModel(s, eff, cfg.Dt, viz.WithSnapshot(snap), viz.WithGIFPath(eff.Name()+".gif")), nil
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	m, err := launcher(effect.NewRegistry())(cfg)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

// snapshot writes the current look of e to path.
func snapshot(e effect.Effect, path string) error {
	switch e := e.(type) {
	case *effect.Ripple:
		return export.SavePNG(path, e.Frame())
	case *effect.Swarm:
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		trails, err := export.Trails(e.Segments(rng), int(e.Width()), int(e.Height()))
		if err != nil {
			return err
		}
		return export.SavePNG(path, export.Composite(trails, color.Black))
	}
	return fmt.Errorf("%w: %s", dynamo.ErrUnknownEffect, e.Name())
}

func renderEffect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	s, eff, err := newSimulator(effect.NewRegistry(), cfg)
	if err != nil {
		return err
	}
	s.Mailbox().Post(centrePoke(eff))
	if _, err := s.Run(cmd.Context(), sim.Config{Frames: cfg.Frames, Dt: cfg.Dt}); err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = cfg.Effect + ".png"
	}
	if err := snapshot(eff, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s after %d frames\n", path, cfg.Frames)
	return nil
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
	fmt.Fprintln(w, "ID\tEFFECT\tTIME\tFRAMES\tSEED\tINJECTED\tREJECTED\tFINAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.2f\n",
			run.ID,
			run.Effect,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Seed,
			run.Injected,
			run.Rejected,
			run.Final,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no data to plot")
	}
	energy := storage.Energies(records)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("effect: %s\n\n", meta.Effect)

	graph := asciigraph.Plot(energy,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("energy per frame"),
	)
	fmt.Println(graph)

	sum := metrics.Summarize(energy)
	fmt.Printf("\nmean %.2f  peak %.2f (frame %d)  final %.2f\n", sum.Mean, sum.Peak, sum.PeakFrame, sum.Final)

	if svgPath == "" {
		return nil
	}
	f, err := os.Create(svgPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.CanvasSVG(f, energyCanvas(energy, 80, 20), 4, "#0077bb", "#a2ddf8"); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgPath)
	return nil
}

// energyCanvas draws series as a polyline on a braille canvas of cols x rows
// characters.
func energyCanvas(series []float64, cols, rows int) *viz.Canvas {
	c := viz.NewCanvas(cols, rows)
	w, h := c.SubSize()
	sum := metrics.Summarize(series)
	peak := sum.Peak
	if peak <= 0 {
		peak = 1
	}
	px, py := 0, h-1
	for i, v := range series {
		x := i * (w - 1) / max(len(series)-1, 1)
		y := h - 1 - int(v/peak*float64(h-1))
		if i > 0 {
			c.DrawLine(px, py, x, y)
		}
		px, py = x, y
	}
	return c
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	records, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	energy := storage.Energies(records)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("effect: %s\n\n", meta.Effect)

	ps := analysis.PowerSpectrum(energy)
	if len(ps) < 2 {
		return fmt.Errorf("no data")
	}
	graph := asciigraph.Plot(ps[:max(len(ps)/4, 2)],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (energy)"),
	)
	fmt.Println(graph)
	fmt.Println()

	if peak, err := analysis.Dominant(energy); err == nil {
		fmt.Printf("dominant frequency: %.4f cycles/frame\n", peak.Frequency)
		fmt.Printf("period: %.1f frames\n", peak.Period)
	}

	last := 0
	for i, r := range records {
		if r.Injected > 0 {
			last = i
		}
	}
	decay, err := analysis.RingDown(energy, last+1)
	if err != nil {
		fmt.Printf("ring-down: %v\n", err)
		return nil
	}
	fmt.Printf("ring-down from frame %d: x%.4f per frame, half life %.1f frames\n", last+1, decay.Factor, decay.HalfLife)
	return nil
}

func benchEffect(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	registry := effect.NewRegistry()

	ens := sim.NewEnsemble(func(seed int64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Seed = seed
		s, eff, err := newSimulator(registry, c)
		if err != nil {
			return nil, err
		}
		s.Mailbox().Post(centrePoke(eff))
		return s, nil
	}, numRuns, cfg.Seed)

	fmt.Printf("benchmarking %s, %d runs of %d frames\n\n", cfg.Effect, numRuns, cfg.Frames)
	start := time.Now()
	results, err := ens.Run(cmd.Context(), sim.Config{Frames: cfg.Frames, Dt: cfg.Dt})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tINJECTED\tMEAN\tFINAL\tSETTLE")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.2f\t%.2f\t%.0f\n", cfg.Seed+int64(i), r.Injected, r.Metrics["energy"], r.Final, r.Metrics["settle_frames"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	total := numRuns * cfg.Frames
	fmt.Printf("\n%d frames in %v (%.0f frames/sec)\n", total, elapsed, float64(total)/elapsed.Seconds())
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}

	results, err := automation.RunScenario(cmd.Context(), sc, effect.NewRegistry(), slog.Default())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	for i, r := range results {
		fmt.Printf("\nstep %d: %s/%s, %d frames, final energy %.2f\n", i+1, r.Config.Effect, r.Step.Preset, len(r.Result.Frames), r.Result.Final)
		if r.Step.SaveAs == "" {
			continue
		}
		runID, err := st.Save(r.Step.SaveAs, r.Config, r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("  saved as %s\n", runID)
	}
	return nil
}

func sweepParams() []string {
	return sortedKeys(automation.Setters)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepArg,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepStep,
	}, effect.NewRegistry(), slog.Default())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, column, _ := strings.Cut(sweepArg, ".")
	fmt.Fprintf(w, "%s\tPEAK\tFINAL\tSETTLE\n", strings.ToUpper(column))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.2f\t%.2f\t%.0f\n", r.ParamValue, r.Peak, r.Final, r.SettleFrames)
	}
	return w.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
