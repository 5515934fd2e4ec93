package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flatgen/internal/config"
	"github.com/san-kum/flatgen/internal/flat"
	"github.com/san-kum/flatgen/internal/integrators"
	"github.com/san-kum/flatgen/internal/metrics"
	"github.com/san-kum/flatgen/internal/models"
	"github.com/san-kum/flatgen/internal/sim"
	"github.com/san-kum/flatgen/internal/tui"
	"github.com/san-kum/flatgen/internal/viz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

var (
	configFile string
	preset     string
	horizon    float64
	gridPoints int
	basisType  string
	basisSize  int
	samples    int
	verify     bool
	verbose    bool
	csvPath    string
	jsonPath   string
	noPlot     bool
	// Live view frame rate is fixed by the playback model; only the
	// sampling density is tunable here.
	liveSamples int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flatgen",
		Short: "trajectory generation for differentially flat systems",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetLevel(logrus.WarnLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve a point-to-point trajectory",
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "named preset scenario")
	solveCmd.Flags().Float64Var(&horizon, "horizon", 0, "override horizon (s)")
	solveCmd.Flags().IntVar(&gridPoints, "grid", 0, "override grid points")
	solveCmd.Flags().StringVar(&basisType, "basis", "", "override basis type (poly, bezier)")
	solveCmd.Flags().IntVar(&basisSize, "basis-size", 0, "override basis size (0 = minimal)")
	solveCmd.Flags().IntVar(&samples, "samples", 200, "sample count for plots and export")
	solveCmd.Flags().BoolVar(&verify, "verify", false, "integrate the dynamics and report deviation")
	solveCmd.Flags().StringVar(&csvPath, "csv", "", "export sampled trajectory to CSV")
	solveCmd.Flags().StringVar(&jsonPath, "json", "", "export sampled trajectory to JSON")
	solveCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip terminal plots")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "solve and replay the trajectory in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "lane_change", "named preset scenario")
	liveCmd.Flags().IntVar(&liveSamples, "samples", 300, "playback sample count")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list preset scenarios",
		RunE:  listScenarios,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, liveCmd, scenariosCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadScenario resolves the preset and config file flags into a single
// validated configuration. CLI flags override file values.
func loadScenario(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (run 'flatgen scenarios')", preset)
		}
		c := *p
		cfg = &c
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	if cmd.Flags().Changed("grid") {
		cfg.GridPoints = gridPoints
	}
	if cmd.Flags().Changed("basis") {
		cfg.Basis.Type = basisType
	}
	if cmd.Flags().Changed("basis-size") {
		cfg.Basis.Size = basisSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// solveScenario builds the system and solve options from a configuration
// and runs the point-to-point solver.
func solveScenario(cfg *config.Config) (*flat.FlatSystem, *flat.Trajectory, error) {
	sys, ok := models.ByName(cfg.System)
	if !ok {
		return nil, nil, fmt.Errorf("unknown system: %s", cfg.System)
	}

	family, err := cfg.Family()
	if err != nil {
		return nil, nil, err
	}

	opts := flat.SolveOptions{
		Basis:  family,
		Params: cfg.Params,
	}

	if cfg.Cost != nil {
		q, err := diagonal(cfg.Cost.StateWeights, sys.NumStates(), "state_weights")
		if err != nil {
			return nil, nil, err
		}
		r, err := diagonal(cfg.Cost.InputWeights, sys.NumInputs(), "input_weights")
		if err != nil {
			return nil, nil, err
		}
		opts.Cost = flat.QuadraticCost(q, r, cfg.Final.State, cfg.Final.Input)
	}

	for _, b := range cfg.Bounds {
		if len(b.Row) != sys.NumStates()+sys.NumInputs() {
			return nil, nil, fmt.Errorf("bound row has %d entries, want %d states + %d inputs",
				len(b.Row), sys.NumStates(), sys.NumInputs())
		}
		a := mat.NewDense(1, len(b.Row), append([]float64(nil), b.Row...))
		opts.Constraints = append(opts.Constraints, flat.LinearConstraint{
			A:  a,
			Lb: []float64{b.Lower},
			Ub: []float64{b.Upper},
		})
	}

	logrus.WithFields(logrus.Fields{
		"system":  cfg.System,
		"horizon": cfg.Horizon,
		"grid":    cfg.GridPoints,
		"basis":   cfg.Basis.Type,
		"size":    cfg.Basis.Size,
		"cost":    cfg.Cost != nil,
		"bounds":  len(cfg.Bounds),
	}).Debug("solving scenario")

	traj, err := flat.PointToPoint(sys, cfg.TimeGrid(),
		cfg.Initial.State, cfg.Initial.Input,
		cfg.Final.State, cfg.Final.Input, opts)
	if err != nil {
		return nil, nil, err
	}
	return sys, traj, nil
}

func diagonal(weights []float64, dim int, name string) (*mat.Dense, error) {
	if len(weights) != dim {
		return nil, fmt.Errorf("%s has %d entries, want %d", name, len(weights), dim)
	}
	m := mat.NewDense(dim, dim, nil)
	for i, w := range weights {
		m.Set(i, i, w)
	}
	return m, nil
}

func sampleTimes(traj *flat.Trajectory, n int) []float64 {
	ts := make([]float64, n)
	t0, tf := traj.Start(), traj.End()
	for i := range ts {
		ts[i] = t0 + (tf-t0)*float64(i)/float64(n-1)
	}
	return ts
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	sys, traj, err := solveScenario(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	if samples < 2 {
		samples = 2
	}
	ts := sampleTimes(traj, samples)
	states, inputs, err := traj.Eval(ts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("system: %s\n", cfg.System)
	fmt.Printf("horizon: %.2fs, sampled %d points in %v\n\n", cfg.Horizon, samples, elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tINITIAL\tFINAL")
	for i, name := range sys.StateNames() {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", name, states[0][i], states[len(states)-1][i])
	}
	for i, name := range sys.InputNames() {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", name, inputs[0][i], inputs[len(inputs)-1][i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmetrics:")
	fmt.Printf("  control effort: %.6f\n", metrics.ControlEffort(inputs))
	fmt.Printf("  path length:    %.6f\n", metrics.PathLength(states))

	if verify {
		dev, err := verifyTrajectory(cmd.Context(), sys, cfg, ts, states, inputs)
		if err != nil {
			return err
		}
		fmt.Printf("  max deviation:  %.6f (integrated vs planned)\n", dev)
	}

	if !noPlot {
		plotSeries(sys, ts, states, inputs)
	}

	if csvPath != "" {
		if err := exportCSV(csvPath, sys, ts, states, inputs); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", csvPath)
	}
	if jsonPath != "" {
		if err := exportJSON(jsonPath, cfg, ts, states, inputs); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonPath)
	}

	return nil
}

// verifyTrajectory integrates the system dynamics under the planned input
// and measures how far the integrated states drift from the planned ones.
func verifyTrajectory(ctx context.Context, sys *flat.FlatSystem, cfg *config.Config, ts []float64, states, inputs [][]float64) (float64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	dyn, err := sys.Dynamics(cfg.Params)
	if err != nil {
		return 0, err
	}
	controls := make([]sim.Control, len(inputs))
	for i, u := range inputs {
		controls[i] = sim.Control(u)
	}
	resp, err := sim.ForcedResponse(ctx, dyn, integrators.NewRK4(), ts, controls, sim.State(states[0]), sim.Config{})
	if err != nil {
		return 0, err
	}
	integrated := make([][]float64, len(resp.States))
	for i, s := range resp.States {
		integrated[i] = s
	}
	return metrics.MaxDeviation(states, integrated), nil
}

func plotSeries(sys *flat.FlatSystem, ts []float64, states, inputs [][]float64) {
	names := sys.StateNames()
	for i, name := range names {
		data := column(states, i)
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs time", name)),
		))
	}
	for i, name := range sys.InputNames() {
		data := column(inputs, i)
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs time", name)),
		))
	}

	// Planar systems also get an xy path drawn to scale.
	if len(names) >= 2 {
		fmt.Println()
		fmt.Println(pathPlot(states))
	}
}

// pathPlot renders the first two state dimensions as a braille path.
func pathPlot(states [][]float64) string {
	xmin, xmax := bounds(states, 0)
	ymin, ymax := bounds(states, 1)
	c := viz.NewCanvas(70, 16, xmin, xmax, ymin, ymax)
	c.Polyline(column(states, 0), column(states, 1))
	return fmt.Sprintf("path (x: %.2f..%.2f, y: %.2f..%.2f)\n%s", xmin, xmax, ymin, ymax, c.String())
}

func bounds(rows [][]float64, i int) (lo, hi float64) {
	lo, hi = rows[0][i], rows[0][i]
	for _, r := range rows {
		if r[i] < lo {
			lo = r[i]
		}
		if r[i] > hi {
			hi = r[i]
		}
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

func column(rows [][]float64, i int) []float64 {
	out := make([]float64, len(rows))
	for k, r := range rows {
		out[k] = r[i]
	}
	return out
}

func exportCSV(path string, sys *flat.FlatSystem, ts []float64, states, inputs [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"t"}, sys.StateNames()...)
	header = append(header, sys.InputNames()...)
	if err := w.Write(header); err != nil {
		return err
	}
	for k, t := range ts {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, v := range states[k] {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range inputs[k] {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportJSON(path string, cfg *config.Config, ts []float64, states, inputs [][]float64) error {
	out := struct {
		System  string      `json:"system"`
		Horizon float64     `json:"horizon"`
		Times   []float64   `json:"times"`
		States  [][]float64 `json:"states"`
		Inputs  [][]float64 `json:"inputs"`
	}{cfg.System, cfg.Horizon, ts, states, inputs}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	sys, traj, err := solveScenario(cfg)
	if err != nil {
		return err
	}

	if liveSamples < 2 {
		liveSamples = 2
	}
	ts := sampleTimes(traj, liveSamples)
	states, inputs, err := traj.Eval(ts)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s, %.1fs horizon", cfg.System, cfg.Horizon)
	model := tui.NewPlayback(title, ts, states, inputs, sys.StateNames(), sys.InputNames())
	p := tea.NewProgram(model)
	_, err = p.Run()
	return err
}

func listScenarios(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYSTEM\tHORIZON\tGRID\tCOST\tBOUNDS")
	for _, name := range presetNames() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%d\t%v\t%d\n",
			name, p.System, p.Horizon, p.GridPoints, p.Cost != nil, len(p.Bounds))
	}
	return w.Flush()
}

func presetNames() []string {
	names := make([]string, 0, len(config.Presets))
	for name := range config.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
