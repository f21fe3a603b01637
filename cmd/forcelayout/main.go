package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/optim"
	"github.com/san-kum/forcelayout/internal/physics"
	"github.com/san-kum/forcelayout/internal/viz"
)

var (
	verbose bool
	// Config sources
	configFile string
	preset     string
	// Graph source
	input     string
	generator string
	nodes     int
	fanout    int
	prob      float64
	// Overrides for the physics settings
	seed     uint64
	maxSteps int
	dims     int
	theta    float64
	gravity  float64
	// Output
	plot    bool
	outFile string
	svgFile string
	labels  bool
	// Ensemble
	runs     int
	parallel int
	// Live view
	perFrame  int
	themeName string
	// Tuning
	tuneParams []string
	tuneSeeds  int
	// Axis listing
	template  string
	separator string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.00",
})

func main() {
	rootCmd := &cobra.Command{
		Use:   "forcelayout",
		Short: "force-directed graph layout in any number of dimensions",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		RunE: runInteractive,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addLayoutFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "lay out a graph until it is stable",
		Args:  cobra.NoArgs,
		RunE:  runLayout,
	}
	addLayoutFlags(runCmd)
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot movement per step")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "write positions as JSON")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "draw the final layout as SVG")
	runCmd.Flags().BoolVar(&labels, "labels", false, "label nodes in the SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "lay out a graph with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLayoutFlags(liveCmd)
	liveCmd.Flags().IntVar(&perFrame, "steps-per-frame", 1, "simulation steps per frame")
	liveCmd.Flags().StringVar(&themeName, "theme", viz.Themes[0].Name, "color theme")

	interactiveCmd := &cobra.Command{
		Use:   "interactive",
		Short: "pick a generated graph and watch its layout",
		Args:  cobra.NoArgs,
		RunE:  runInteractive,
	}
	addLayoutFlags(interactiveCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "lay out one graph with several seeds concurrently",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addLayoutFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of layouts")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent layouts (0 = unlimited)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search physics settings for the fastest stable layout",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addLayoutFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "setting and candidate values, e.g. gravity=-4,-12,-20 (repeatable)")
	tuneCmd.Flags().IntVar(&tuneSeeds, "seeds", 3, "layouts per combination")
	tuneCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent layouts (0 = unlimited)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	generatorsCmd := &cobra.Command{
		Use:   "generators",
		Short: "list graph generators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range graphio.NewRegistry().List() {
				fmt.Println(name)
			}
		},
	}

	axesCmd := &cobra.Command{
		Use:   "axes [dimensions]",
		Short: "print axis names for a dimension count",
		Args:  cobra.ExactArgs(1),
		RunE:  printAxes,
	}
	axesCmd.Flags().StringVar(&template, "template", "{var}", "per-axis template; {var} is the axis name, {i} its index")
	axesCmd.Flags().StringVar(&separator, "sep", " ", "separator")

	rootCmd.AddCommand(runCmd, liveCmd, interactiveCmd, ensembleCmd, tuneCmd, presetsCmd, generatorsCmd, axesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLayoutFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "config file path (yaml or toml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVarP(&input, "input", "i", "", "graph file (.json, .dot, .gv)")
	f.StringVarP(&generator, "generator", "g", config.DefaultGenerator, "graph generator")
	f.IntVarP(&nodes, "nodes", "n", config.DefaultNodes, "generated node count")
	f.IntVar(&fanout, "fanout", 0, "generator fanout or degree")
	f.Float64Var(&prob, "p", 0, "generator probability")
	f.Uint64Var(&seed, "seed", physics.DefaultSeed, "random seed")
	f.IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "step limit (0 = until stable)")
	f.IntVarP(&dims, "dims", "d", physics.DefaultDimensions, "number of axes")
	f.Float64Var(&theta, "theta", physics.DefaultTheta, "Barnes-Hut opening criterion")
	f.Float64Var(&gravity, "gravity", physics.DefaultGravity, "n-body constant (negative repels)")
}

// resolveConfig merges the preset, the config file and explicitly set flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("dims") {
		cfg.Physics.Dimensions = dims
	}
	if flags.Changed("theta") {
		cfg.Physics.Theta = theta
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("input") {
		cfg.Input = input
	}
	if flags.Changed("generator") {
		cfg.Generator.Name = generator
		cfg.Input = ""
	}
	if flags.Changed("nodes") {
		cfg.Generator.N = nodes
	}
	if flags.Changed("fanout") {
		cfg.Generator.Fanout = fanout
	}
	if flags.Changed("p") {
		cfg.Generator.P = prob
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadGraph reads cfg.Input when set and otherwise runs the configured
// generator. The returned title names the graph for display.
func loadGraph(ctx context.Context, cfg *config.Config) (*graph.Graph, string, error) {
	if cfg.Input != "" {
		g, err := graphio.ReadFile(ctx, cfg.Input)
		if err != nil {
			return nil, "", err
		}
		return g, filepath.Base(cfg.Input), nil
	}
	g, err := graphio.NewRegistry().Generate(cfg.Generator.Name, graphio.Params{
		N:      cfg.Generator.N,
		Fanout: cfg.Generator.Fanout,
		P:      cfg.Generator.P,
		Seed:   cfg.Seed,
	})
	if err != nil {
		return nil, "", err
	}
	return g, fmt.Sprintf("%s (%d)", cfg.Generator.Name, cfg.Generator.N), nil
}

func layoutOptions(cfg *config.Config, l *log.Logger) []layout.Option {
	opts := []layout.Option{
		layout.WithSettings(cfg.Physics),
		layout.WithRandom(physics.NewRandom(cfg.Seed)),
	}
	if l != nil {
		opts = append(opts, layout.WithLogger(l))
	}
	return opts
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	g, title, err := loadGraph(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	l, err := layout.New(g, layoutOptions(cfg, logger)...)
	if err != nil {
		return err
	}
	defer l.Dispose()

	bodies := func() []*physics.Body {
		out := make([]*physics.Body, 0, l.BodyCount())
		l.ForEachBody(func(_ string, b *physics.Body) { out = append(out, b) })
		return out
	}
	movement := metrics.NewMovement(0)
	energy := metrics.NewEnergy(bodies)
	effort := metrics.NewForceEffort(l.ForceVectorLength)
	streak := metrics.NewStability(layout.StableThreshold, l.BodyCount)
	all := []metrics.Metric{movement, energy, effort, streak}

	steps := 0
	l.Subscribe(func(e layout.Event) {
		if e.Type == layout.EventStep {
			for _, m := range all {
				m.OnStep(steps, e.Move)
			}
		}
	})

	logger.Info("laying out", "graph", title, "nodes", g.NodeCount(), "links", g.LinkCount(),
		"dims", cfg.Physics.Dimensions)
	start := time.Now()
	stable := false
	for !stable && (cfg.MaxSteps == 0 || steps < cfg.MaxSteps) {
		stable = l.Step()
		steps++
	}
	elapsed := time.Since(start)
	if !stable {
		logger.Warn("step limit reached before the layout was stable", "steps", steps)
	}

	box := l.GraphRect()
	mean, std := movement.Summary()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", steps)
	fmt.Printf("stable: %v\n", stable)
	fmt.Printf("bounds: %v .. %v\n", box.Min, box.Max)
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range all {
		fmt.Fprintf(w, "  %s\t%.6f\n", m.Name(), m.Value())
	}
	fmt.Fprintf(w, "  peak_energy\t%.6f\n", energy.Peak())
	fmt.Fprintf(w, "  movement_mean\t%.6f\n", mean)
	fmt.Fprintf(w, "  movement_std\t%.6f\n", std)
	if err := w.Flush(); err != nil {
		return err
	}

	if plot && len(movement.History()) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(movement.History(),
			asciigraph.Height(12),
			asciigraph.Width(72),
			asciigraph.Caption("movement per step")))
	}

	if outFile != "" {
		if err := writePositions(outFile, l, g); err != nil {
			return err
		}
		logger.Info("wrote positions", "path", outFile)
	}
	if svgFile != "" {
		if err := writeSVG(svgFile, l); err != nil {
			return err
		}
		logger.Info("wrote svg", "path", svgFile)
	}
	return nil
}

func writeSVG(path string, l *layout.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	opts := viz.DefaultSVGOptions()
	opts.Labels = labels
	werr := viz.WriteSVG(f, l, opts)
	if err := f.Close(); err != nil && werr == nil {
		werr = err
	}
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	return nil
}

func writePositions(path string, l *layout.Layout, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := graphio.WriteJSON(f, g, func(id string) []float64 {
		pos, err := l.NodePosition(id)
		if err != nil {
			return nil
		}
		return pos
	})
	if err := f.Close(); err != nil && werr == nil {
		werr = err
	}
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	g, title, err := loadGraph(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	// The live view owns the terminal, so the layout stays silent.
	l, err := layout.New(g, layoutOptions(cfg, nil)...)
	if err != nil {
		return err
	}
	defer l.Dispose()

	m := viz.NewModel(l, title,
		viz.WithStepsPerFrame(perFrame),
		viz.WithMaxSteps(cfg.MaxSteps),
		viz.WithTheme(themeName))
	return viz.Run(m)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	reg := graphio.NewRegistry()
	build := func(name string, n int) (*layout.Layout, error) {
		g, err := reg.Generate(name, graphio.Params{
			N:      n,
			Fanout: cfg.Generator.Fanout,
			P:      cfg.Generator.P,
			Seed:   cfg.Seed,
		})
		if err != nil {
			return nil, err
		}
		return layout.New(g, layoutOptions(cfg, nil)...)
	}
	p := viz.NewPicker(reg.List(), cfg.Generator.N, build, viz.WithMaxSteps(cfg.MaxSteps))
	return viz.RunInteractive(p)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.MaxSteps <= 0 {
		return errors.New("ensemble needs max_steps > 0")
	}
	if runs < 1 {
		return fmt.Errorf("invalid run count: %d", runs)
	}
	g, title, err := loadGraph(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	e := layout.NewEnsemble(g, runs, cfg.Seed, cfg.MaxSteps,
		layout.WithSettings(cfg.Physics), layout.WithLogger(logger))
	e.Limit = parallel

	logger.Info("running ensemble", "graph", title, "runs", runs, "first_seed", cfg.Seed)
	start := time.Now()
	results, err := e.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tSTABLE\tMOVE\tSIZE")
	var steps []float64
	stableRuns := 0
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%v\t%.5f\t%s\n", r.Seed, r.Steps, r.Stable, r.Move, boxSize(r.Rect))
		if r.Stable {
			stableRuns++
			steps = append(steps, float64(r.Steps))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d/%d stable in %v\n", stableRuns, len(results), elapsed)
	if len(steps) > 0 {
		mean, std := stat.MeanStdDev(steps, nil)
		fmt.Printf("steps to stability: mean %.1f, std %.1f\n", mean, std)
	}
	return nil
}

// parseParam splits "name=v1,v2,..." into the setting name and its values.
func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid --param %q: want name=v1,v2", s)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid --param %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// ensembleScore is the mean steps to stability over results. An unstable
// run counts as twice the step limit.
func ensembleScore(results []layout.RunResult, maxSteps int) float64 {
	steps := make([]float64, len(results))
	for i, r := range results {
		steps[i] = float64(r.Steps)
		if !r.Stable {
			steps[i] = float64(2 * maxSteps)
		}
	}
	return stat.Mean(steps, nil)
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.MaxSteps <= 0 {
		return errors.New("tune needs max_steps > 0")
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("no --param given (settings: %v)", config.PhysicsKeys())
	}
	var names []string
	var ranges [][]float64
	for _, p := range tuneParams {
		name, values, err := parseParam(p)
		if err != nil {
			return err
		}
		if err := config.SetPhysics(&physics.Settings{}, name, 0); err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	g, title, err := loadGraph(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("tuning", "graph", title, "combinations", search.Size(), "seeds", tuneSeeds)
	best, trials, err := search.Search(ctx, func(ctx context.Context, params map[string]float64) (float64, error) {
		s := cfg.Physics
		for name, v := range params {
			if err := config.SetPhysics(&s, name, v); err != nil {
				return 0, err
			}
		}
		if err := s.Validate(); err != nil {
			return 0, err
		}
		e := layout.NewEnsemble(g, tuneSeeds, cfg.Seed, cfg.MaxSteps, layout.WithSettings(s))
		e.Limit = parallel
		results, err := e.Run(ctx)
		if err != nil {
			return 0, err
		}
		score := ensembleScore(results, cfg.MaxSteps)
		logger.Debug("trial", "params", params, "score", score)
		return score, nil
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tSCORE")
	for _, t := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", t.Params[name])
		}
		fmt.Fprintf(w, "%.1f\n", t.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %v (mean steps %.1f)\n", best.Params, best.Score)
	return nil
}

// boxSize formats the extent of box along each axis.
func boxSize(box physics.Box) string {
	s := ""
	for i := range box.Min {
		if i > 0 {
			s += "x"
		}
		s += strconv.FormatFloat(box.Max[i]-box.Min[i], 'f', 1, 64)
	}
	return s
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDIMS\tTHETA\tGRAVITY\tSPRING\tDRAG\tGENERATOR")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.1f\t%.2f\t%.2f\t%s/%d\n",
			name,
			c.Physics.Dimensions,
			c.Physics.Theta,
			c.Physics.Gravity,
			c.Physics.SpringCoefficient,
			c.Physics.DragCoefficient,
			c.Generator.Name,
			c.Generator.N,
		)
	}
	return w.Flush()
}

func printAxes(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid dimension count %q: %w", args[0], err)
	}
	s, err := physics.JoinAxes(n, template, separator)
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}
