package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/liesim/internal/analysis"
	"github.com/san-kum/liesim/internal/automation"
	"github.com/san-kum/liesim/internal/config"
	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/manifold"
	"github.com/san-kum/liesim/internal/sim"
	"github.com/san-kum/liesim/internal/storage"
	"github.com/san-kum/liesim/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	method       string
	manifoldID   string
	h            float64
	tStart       float64
	tEnd         float64
	initialValue []float64
	params       map[string]string
	configFile   string
	preset       string
	noSave       bool
	hs           []float64
	component    int
	outFile      string
	xAxis        int
	yAxis        int
	crossIndex   int
	crossLevel   float64
	svgFile      string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int

	logger = kitlog.NewNopLogger()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "liesim",
		Short:         "Lie-group integrators on homogeneous manifolds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(os.Stderr, viper.GetString("log_level"))
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(config.DefaultH)
		},
	}

	rootCmd.PersistentFlags().String("data", ".liesim", "data directory (env LIESIM_DATA)")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn, error or none (env LIESIM_LOG_LEVEL)")
	viper.SetEnvPrefix("liesim")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	solveCmd := &cobra.Command{
		Use:   "solve [problem]",
		Short: "integrate a problem and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  solveProblem,
	}
	addRunFlags(solveCmd)
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "print the summary without storing the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot state components of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&component, "component", -1, "state component to plot (-1 plots the first six)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and states to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	manifoldsCmd := &cobra.Command{
		Use:   "manifolds",
		Short: "list supported manifolds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, info := range manifold.Infos() {
				rows = append(rows, []string{info.ID, info.Description})
			}
			fmt.Print(viz.Table([]string{"ID", "DESCRIPTION"}, rows))
			return nil
		},
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list supported RKMK methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, info := range integrators.Infos() {
				rows = append(rows, []string{info.ID, info.Name, strconv.Itoa(info.Stages), strconv.Itoa(info.Order)})
			}
			fmt.Print(viz.Table([]string{"ID", "NAME", "STAGES", "ORDER"}, rows))
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list presets for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for problem: %s\n", args[0])
				return nil
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				p := config.GetPreset(args[0], name)
				rows = append(rows, []string{name, p.Method, viz.FormatValue(p.H), viz.FormatValue(p.TEnd), formatParams(p.Params)})
			}
			fmt.Print(viz.Table([]string{"PRESET", "METHOD", "H", "T_END", "PARAMS"}, rows))
			return nil
		},
	}

	convergeCmd := &cobra.Command{
		Use:   "converge [problem]",
		Short: "measure the observed order of a method",
		Args:  cobra.MaximumNArgs(1),
		RunE:  convergeProblem,
	}
	addRunFlags(convergeCmd)
	convergeCmd.Flags().Float64SliceVar(&hs, "hs", []float64{0.04, 0.02, 0.01, 0.005}, "step sizes to compare")

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "integrate a problem with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run and store every step of a scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [problem] [param]",
		Short: "solve a problem over a range of one parameter",
		Args:  cobra.ExactArgs(2),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first parameter value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2, "last parameter value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 4, "number of values")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of two state components",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().StringVar(&svgFile, "svg", "", "write an SVG file instead of printing")

	poincareCmd := &cobra.Command{
		Use:   "poincare [run_id]",
		Short: "Poincare section of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  poincarePlot,
	}
	poincareCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	poincareCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	poincareCmd.Flags().IntVar(&crossIndex, "cross", 2, "state index whose upward crossing is recorded")
	poincareCmd.Flags().Float64Var(&crossLevel, "level", 0, "crossing level")
	poincareCmd.Flags().StringVar(&svgFile, "svg", "", "write an SVG file instead of printing")

	rootCmd.AddCommand(solveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, manifoldsCmd, methodsCmd, presetsCmd,
		convergeCmd, liveCmd, batchCmd, sweepCmd, phaseCmd, poincareCmd)

	if err := rootCmd.Execute(); err != nil {
		level.Error(logger).Log("err", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "RKMK method (E1, E2, SSPRKMK3, RKMK4)")
	cmd.Flags().StringVar(&manifoldID, "manifold", "", "manifold override (hmnsphere, heavytop, sphericalpendulum)")
	cmd.Flags().Float64Var(&h, "h", config.DefaultH, "step size")
	cmd.Flags().Float64Var(&tStart, "t-start", config.DefaultTStart, "start time")
	cmd.Flags().Float64Var(&tEnd, "t-end", config.DefaultTEnd, "end time")
	cmd.Flags().Float64SliceVar(&initialValue, "y0", nil, "initial value (default: the problem's)")
	cmd.Flags().StringToStringVar(&params, "param", nil, "problem parameter, name=value")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger(w io.Writer, lvl string) (kitlog.Logger, error) {
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info", "":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	case "none":
		opt = level.AllowNone()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
	l := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC, "app", "liesim")
	return level.NewFilter(l, opt), nil
}

// buildConfig layers defaults, preset, config file and changed flags, in
// that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Problem = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Problem, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Problem))
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 && c.Problem != args[0] {
			return nil, fmt.Errorf("config %s is for problem %q, not %q", configFile, c.Problem, args[0])
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("method") || (preset == "" && configFile == "") {
		cfg.Method = method
	}
	if flags.Changed("manifold") {
		cfg.Manifold = manifoldID
	}
	if flags.Changed("h") {
		cfg.H = h
	}
	if flags.Changed("t-start") {
		cfg.TStart = tStart
	}
	if flags.Changed("t-end") {
		cfg.TEnd = tEnd
	}
	if flags.Changed("y0") {
		cfg.InitialValue = initialValue
	}
	for name, raw := range params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = v
	}
	return cfg, nil
}

func solveProblem(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("solving %s with %s...\n", cfg.Problem, cfg.Method)
	start := time.Now()
	exec, err := automation.Execute(ctx, cfg, logger)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	result := exec.Result

	fmt.Printf("completed in %v on %s\n", elapsed, exec.Run.Manifold)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("final state: %v\n", []float64(result.Flow.Final()))

	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		runID, err := st.Save(exec.Metadata(), result.Flow)
		if err != nil {
			return err
		}
		level.Info(logger).Log("msg", "run stored", "id", runID)
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Println("\nmetrics:")
	rows := make([][]string, 0, len(result.Metrics))
	for _, name := range sortedKeys(result.Metrics) {
		rows = append(rows, []string{name, viz.FormatValue(result.Metrics[name])})
	}
	fmt.Print(viz.Table([]string{"METRIC", "VALUE"}, rows))
	return nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(viper.GetString("data"))
	return st, st.Init()
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &automation.Runner{Store: st, Logger: logger}
	results, runErr := r.RunScenario(ctx, sc)

	fmt.Printf("scenario %s: %d/%d steps\n", sc.Name, len(results), len(sc.Steps))
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		run := res.Execution.Run
		rows = append(rows, []string{
			res.Name, run.Problem.Name(), run.Method.String(), strconv.Itoa(res.Execution.Result.Steps),
			viz.FormatValue(res.Execution.Result.Metrics["norm_drift"]), res.RunID,
		})
	}
	fmt.Print(viz.Table([]string{"STEP", "PROBLEM", "METHOD", "STEPS", "NORM DRIFT", "RUN ID"}, rows))
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &automation.Runner{Logger: logger}
	results, err := r.RunSweep(ctx, &automation.ParameterSweep{
		Base: cfg, Param: args[1], Min: sweepMin, Max: sweepMax, Steps: sweepSteps,
	})
	if err != nil {
		return err
	}

	rows := make([][]string, len(results))
	for i, res := range results {
		rows[i] = []string{
			viz.FormatValue(res.Value),
			viz.FormatValue(res.MinEnergy), viz.FormatValue(res.MaxEnergy),
			viz.FormatValue(res.Metrics["norm_drift"]),
			fmt.Sprintf("%.4g", []float64(res.Final)),
		}
	}
	fmt.Print(viz.Table([]string{strings.ToUpper(args[1]), "MIN ENERGY", "MAX ENERGY", "NORM DRIFT", "FINAL"}, rows))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Problem,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("[%g, %g]", run.TStart, run.TEnd),
			viz.FormatValue(run.H),
			strconv.Itoa(run.Steps),
		})
	}
	fmt.Print(viz.Table([]string{"ID", "PROBLEM", "METHOD", "TIME", "INTERVAL", "H", "STEPS"}, rows))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(viper.GetString("data"))
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	flow, err := st.LoadFlow(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s on %s (%s)\n", meta.Problem, meta.Manifold, meta.Method)
	fmt.Printf("samples: %d\n\n", flow.Len())

	indices := make([]int, 0)
	if component >= 0 {
		if component >= flow.Dim() {
			return fmt.Errorf("component %d of a %d-dimensional state: %w", component, flow.Dim(), dynamo.ErrDimensionMismatch)
		}
		indices = append(indices, component)
	} else {
		for i := 0; i < flow.Dim() && i < 6; i++ {
			indices = append(indices, i)
		}
	}

	for _, i := range indices {
		fmt.Println(viz.Plot(componentCaption(meta.Manifold, i), 10, 80, flow.Component(i)))
		fmt.Println()
	}

	if m, err := manifoldOf(meta.Manifold, flow.Col(0)); err == nil {
		inv0 := m.Invariant(flow.Col(0))
		drift := make([]float64, flow.Len())
		for j := range drift {
			for k, v := range m.Invariant(flow.Col(j)) {
				drift[j] = math.Max(drift[j], math.Abs(v-inv0[k]))
			}
		}
		fmt.Println("invariant drift " + viz.SparklineChart(drift, 60))
	}
	return nil
}

func manifoldOf(id string, y0 dynamo.State) (*manifold.Homogeneous, error) {
	k, err := manifold.ParseKind(id)
	if err != nil {
		return nil, err
	}
	return manifold.New(k, y0)
}

func componentCaption(manifoldID string, i int) string {
	switch manifoldID {
	case manifold.HeavyTop.String():
		return [...]string{"mu_x", "mu_y", "mu_z", "beta_x", "beta_y", "beta_z"}[i]
	case manifold.SphericalPendulum.String():
		names := [...]string{"q_x", "q_y", "q_z", "omega_x", "omega_y", "omega_z"}
		return fmt.Sprintf("pendulum %d %s", i/6, names[i%6])
	}
	return fmt.Sprintf("y%d vs time", i)
}

func openOutput() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	flow, err := st.LoadFlow(args[0])
	if err != nil {
		return err
	}
	w, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.ExportCSV(w, flow); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	flow, err := st.LoadFlow(args[0])
	if err != nil {
		return err
	}
	w, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, flow); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func convergeProblem(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	run, err := cfg.Resolve()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	level.Info(logger).Log("msg", "convergence study", "problem", run.Problem.Name(), "method", run.Method, "hs", fmt.Sprint(hs))
	res, err := sim.Convergence(ctx, run.Problem.Field, run.Y0, run.TStart, run.TEnd, run.Manifold, run.Method, hs, nil)
	if err != nil {
		return err
	}

	rows := make([][]string, len(res.H))
	for i := range res.H {
		order := "-"
		if i > 0 {
			order = fmt.Sprintf("%.3f", res.Orders[i-1])
		}
		rows[i] = []string{viz.FormatValue(res.H[i]), viz.FormatValue(res.Errors[i]), order}
	}
	fmt.Printf("%s on %s, t in [%g, %g]\n", run.Method, run.Manifold, run.TStart, run.TEnd)
	fmt.Print(viz.Table([]string{"H", "ERROR", "ORDER"}, rows))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	run, err := cfg.Resolve()
	if err != nil {
		return err
	}
	if run.Manifold != run.Problem.Manifold() {
		return fmt.Errorf("live view draws %s only on %s: %w", run.Problem.Name(), run.Problem.Manifold(), dynamo.ErrUnsupportedOperation)
	}
	return viz.RunLive(run.Problem, run.Method, run.Y0, run.H)
}

func phasePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	flow, err := st.LoadFlow(args[0])
	if err != nil {
		return err
	}
	p, err := analysis.NewPortrait(flow, xAxis, yAxis)
	if err != nil {
		return err
	}
	return showPortrait(p, fmt.Sprintf("phase portrait y%d vs y%d", yAxis, xAxis))
}

func poincarePlot(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	flow, err := st.LoadFlow(args[0])
	if err != nil {
		return err
	}
	p, err := analysis.NewPoincareSection(flow, crossIndex, crossLevel, xAxis, yAxis)
	if err != nil {
		return err
	}
	return showPortrait(p, fmt.Sprintf("poincare section y%d = %g: %d crossings", crossIndex, crossLevel, len(p.Points)))
}

func showPortrait(p *analysis.Portrait, title string) error {
	if svgFile != "" {
		f, err := os.Create(svgFile)
		if err != nil {
			return err
		}
		if err := p.WriteSVG(f, 800, 600, "#00ff88"); err != nil {
			f.Close()
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
		return f.Close()
	}
	fmt.Println(viz.TitleStyle.Render(title))
	fmt.Print(p.ASCII(72, 24))
	return nil
}
