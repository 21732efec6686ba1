package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/san-kum/wobbles/internal/analysis"
	"github.com/san-kum/wobbles/internal/automation"
	"github.com/san-kum/wobbles/internal/catalog"
	"github.com/san-kum/wobbles/internal/config"
	"github.com/san-kum/wobbles/internal/df"
	"github.com/san-kum/wobbles/internal/disk"
	"github.com/san-kum/wobbles/internal/experiment"
	"github.com/san-kum/wobbles/internal/export"
	"github.com/san-kum/wobbles/internal/phasespace"
	"github.com/san-kum/wobbles/internal/storage"
	"github.com/san-kum/wobbles/internal/sweep"
	"github.com/san-kum/wobbles/internal/viz"
	"github.com/spf13/cobra"
)

const catalogFile = "samples.db"

var (
	dataDir string
	verbose bool
	// Model selection
	configFile string
	preset     string
	runName    string
	fieldsFile string
	// Mixture
	rho    float64
	norms  []float64
	sigmas []float64
	// Synthetic disk
	nu        float64
	zShift    float64
	vShift    float64
	breathing float64
	noise     float64
	seed      int64
	nz        int
	nv        int
	// Output
	record  bool
	outFile string
	profile string
	label   string
	// Sweep
	axes       []string
	bestMetric string
	// Forward model
	priors       []string
	realizations int
	mcSeed       int64
	reseedNoise  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "wobbles",
		Short:        "vertical distribution functions of disk stars",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".wobbles", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "build a distribution function and save its profiles",
		Args:  cobra.NoArgs,
		RunE:  runModel,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&record, "record", false, "also append the realization to the sample catalog")
	runCmd.Flags().StringVar(&label, "label", "", "catalog label (default: run name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run profiles",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run profiles to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run profiles to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export one profile as an SVG plot",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>_<profile>.svg)")
	exportSVGCmd.Flags().StringVar(&profile, "profile", "asymmetry", "density, asymmetry, mean_v, mean_v_relative, sigma_v or phase")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "asymmetry diagnostics and wavenumber spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "evaluate a parameter grid and record every point in the sample catalog",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&axes, "axis", nil, "grid axis, name=lo:hi:n or name=a,b,c (repeatable)")
	sweepCmd.Flags().StringVar(&label, "label", "", "catalog label (default: run name)")
	sweepCmd.Flags().StringVar(&bestMetric, "best", "", "report the point minimizing this metric")

	forwardCmd := &cobra.Command{
		Use:   "forward",
		Short: "draw random realizations from priors into the sample catalog",
		Args:  cobra.NoArgs,
		RunE:  runForward,
	}
	addModelFlags(forwardCmd)
	forwardCmd.Flags().StringArrayVar(&priors, "prior", nil, "uniform prior, name=lo:hi (repeatable)")
	forwardCmd.Flags().IntVarP(&realizations, "realizations", "n", 200, "number of realizations")
	forwardCmd.Flags().Int64Var(&mcSeed, "mc-seed", 0, "sampler seed (0: time based)")
	forwardCmd.Flags().BoolVar(&reseedNoise, "reseed-noise", false, "draw a new noise seed per realization")
	forwardCmd.Flags().StringVar(&label, "label", "", "catalog label (default: run name)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of scripted runs and sampling",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	samplesCmd := &cobra.Command{
		Use:   "samples",
		Short: "list catalog samples",
		Args:  cobra.NoArgs,
		RunE:  listSamples,
	}
	samplesCmd.Flags().StringVar(&label, "label", "", "only samples with this label")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "list parameters accepted by sweep axes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range experiment.ListParams() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	fieldsCmd := &cobra.Command{
		Use:   "fields",
		Short: "write the synthetic action and frequency fields to JSON",
		Args:  cobra.NoArgs,
		RunE:  writeFields,
	}
	addModelFlags(fieldsCmd)
	fieldsCmd.Flags().StringVarP(&outFile, "out", "o", "fields.json", "output file")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse run profiles interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd,
		analyzeCmd, sweepCmd, forwardCmd, scenarioCmd, samplesCmd, presetsCmd, paramsCmd, fieldsCmd, viewCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&runName, "name", def.Name, "run name")
	f.StringVar(&fieldsFile, "fields", "", "JSON field set replacing the synthetic disk")
	f.Float64Var(&rho, "rho", def.RhoMidplane, "total midplane density")
	f.Float64SliceVar(&norms, "norms", def.Normalizations, "component normalizations")
	f.Float64SliceVar(&sigmas, "sigmas", def.Dispersions, "component velocity dispersions")
	f.Float64Var(&nu, "nu", def.Disk.Nu, "vertical frequency")
	f.Float64Var(&zShift, "z-shift", 0, "phase-space displacement in z")
	f.Float64Var(&vShift, "v-shift", 0, "phase-space displacement in v")
	f.Float64Var(&breathing, "breathing", 0, "vertical compression (breathing mode)")
	f.Float64Var(&noise, "noise", 0, "simplex noise amplitude on J")
	f.Int64Var(&seed, "seed", 0, "noise seed")
	f.IntVar(&nz, "nz", def.Grid.NZ, "height samples")
	f.IntVar(&nv, "nv", def.Grid.NV, "velocity samples")
}

// buildConfig layers preset, config file and changed flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = runName
	}
	if flags.Changed("fields") {
		cfg.Fields = fieldsFile
	}
	if flags.Changed("rho") {
		cfg.RhoMidplane = rho
	}
	if flags.Changed("norms") {
		cfg.Normalizations = append([]float64(nil), norms...)
	}
	if flags.Changed("sigmas") {
		cfg.Dispersions = append([]float64(nil), sigmas...)
	}
	if flags.Changed("nu") {
		cfg.Disk.Nu = nu
	}
	if flags.Changed("z-shift") {
		cfg.Disk.ZShift = zShift
	}
	if flags.Changed("v-shift") {
		cfg.Disk.VShift = vShift
	}
	if flags.Changed("breathing") {
		cfg.Disk.Breathing = breathing
	}
	if flags.Changed("noise") {
		cfg.Disk.Noise = noise
	}
	if flags.Changed("seed") {
		cfg.Disk.Seed = seed
	}
	if flags.Changed("nz") {
		cfg.Grid.NZ = nz
	}
	if flags.Changed("nv") {
		cfg.Grid.NV = nv
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("building %s (%d components, %dx%d grid)...\n",
		cfg.Name, len(cfg.Dispersions), cfg.Grid.NZ, cfg.Grid.NV)

	res, err := experiment.New(cfg).Run(cmd.Context())
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg, res.Profiles, res.Metrics)
	if err != nil {
		return err
	}

	if record {
		if err := recordSamples(sampleLabel(cfg), sampleFrom(cfg, nil, res)); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	printComponents(os.Stdout, res.Profiles)
	if !res.Summary.Finite() {
		slog.Warn("asymmetry has non-finite samples", "dropped", res.Summary.Dropped)
	}
	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, res.Metrics)
	return nil
}

func printComponents(w io.Writer, p df.Profiles) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nCOMPONENT\tWEIGHT\tSIGMA\tZ_FIT\tSCALE HEIGHT")
	for i := range p.Weights {
		sigma := math.NaN()
		if i < len(p.Sigma) {
			sigma = p.Sigma[i]
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%.4f\n", i, p.Weights[i], sigma, p.ZFit[i], p.ScaleHeight[i])
	}
	tw.Flush()
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6g\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tCOMP\tGRID\tPEAK |A|\tFINITE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dx%d\t%.4g\t%v\n",
			run.ID,
			run.Name,
			humanize.Time(run.Timestamp),
			len(run.Components),
			run.Heights, run.Velocities,
			run.Metrics["peak_abs_asymmetry"],
			run.Finite,
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

	p, err := st.LoadProfiles(runID)
	if err != nil {
		return err
	}
	if len(p.Z) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("heights: %d\n\n", len(p.Z))

	plots := []struct {
		caption string
		x, y    []float64
	}{
		{"density", p.Z, p.Density},
		{"asymmetry A(z)", p.ZPlus, p.A},
		{"mean v", p.Z, p.MeanV},
		{"velocity dispersion", p.Z, p.VelocityDispersion},
	}
	for _, pl := range plots {
		fmt.Println(viz.PlotProfile(pl.x, pl.y, pl.caption, 10, 80))
		fmt.Println()
	}
	return nil
}

func loadExport(runID string) (export.ExportData, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return export.ExportData{}, err
	}
	p, err := st.LoadProfiles(runID)
	if err != nil {
		return export.ExportData{}, err
	}
	return export.FromProfiles(meta.Name, meta.ID, p, meta.Metrics), nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	data, err := loadExport(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.WriteJSON(os.Stdout, data)
	}
	if err := export.ExportJSON(outFile, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	p, err := storage.New(dataDir).LoadProfiles(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.WriteProfilesCSV(os.Stdout, p)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.WriteProfilesCSV(f, p); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if profile == "phase" {
		res, err := rebuild(cmd.Context(), st, runID)
		if err != nil {
			return err
		}
		c := viz.NewCanvas(80, 40)
		c.DrawContours(totalF0(res.Composite), 10)
		svg = export.CanvasToSVG(c, 4)
	} else {
		p, err := st.LoadProfiles(runID)
		if err != nil {
			return err
		}
		x, y, err := selectProfile(p, profile)
		if err != nil {
			return err
		}
		svg = export.ProfileToSVG(x, y, 800, 400, "#00ffff", fmt.Sprintf("%s  %s", runID, profile))
	}
	if svg == "" {
		return fmt.Errorf("nothing to plot for %s", profile)
	}

	path := outFile
	if path == "" {
		path = fmt.Sprintf("%s_%s.svg", runID, profile)
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func selectProfile(p df.Profiles, name string) ([]float64, []float64, error) {
	switch name {
	case "density":
		return p.Z, p.Density, nil
	case "asymmetry":
		return p.ZPlus, p.A, nil
	case "mean_v":
		return p.Z, p.MeanV, nil
	case "mean_v_relative":
		return p.Z, p.MeanVRelative, nil
	case "sigma_v":
		return p.Z, p.VelocityDispersion, nil
	}
	return nil, nil, fmt.Errorf("unknown profile: %s", name)
}

// rebuild recomputes a saved run from its stored config.
func rebuild(ctx context.Context, st *storage.Store, runID string) (*experiment.Result, error) {
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	return experiment.New(cfg).Run(ctx)
}

// totalF0 sums the component DFs; their densities add up to the
// composite density.
func totalF0(c *df.Composite) phasespace.Field {
	comps := c.Components()
	total := comps[0].F0()
	for _, comp := range comps[1:] {
		f := comp.F0()
		for i := 0; i < total.Rows; i++ {
			row, add := total.Row(i), f.Row(i)
			for j := range row {
				row[j] += add[j]
			}
		}
	}
	return total
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	p, err := st.LoadProfiles(runID)
	if err != nil {
		return err
	}

	fmt.Printf("asymmetry analysis: %s\n", meta.ID)
	fmt.Printf("name: %s\n\n", meta.Name)

	s := analysis.Summarize(p.ZPlus, p.A)
	fmt.Printf("peak |A|: %.5f at z = %.3f\n", s.PeakAbs, s.PeakHeight)
	fmt.Printf("rms A: %.5f\n", s.RMS)
	fmt.Printf("zero crossings: %d\n", s.ZeroCrossings)
	if !s.Finite() {
		fmt.Printf("non-finite samples: %d of %d\n", s.Dropped, s.Samples+s.Dropped)
	}

	spec, err := analysis.Spectrum(p.ZPlus, p.A)
	if err != nil {
		fmt.Printf("\nno spectrum: %v\n", err)
		return nil
	}

	fmt.Println()
	fmt.Println(viz.PlotProfile(spec.Wavenumber, spec.Power, "power spectrum of A(z)", 12, 80))
	fmt.Println()

	k, power := analysis.DominantWavenumber(spec)
	fmt.Printf("dominant wavenumber: %.4f per length unit (power %.3g)\n", k, power)
	if k > 0 {
		fmt.Printf("wavelength: %.3f\n", 1/k)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required (see: wobbles params)")
	}

	names := make([]string, 0, len(axes))
	ranges := make([][]float64, 0, len(axes))
	for _, a := range axes {
		name, vals, err := sweep.ParseAxis(a)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	grid, err := sweep.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	lbl := sampleLabel(cfg)
	total := grid.Size()
	best := sweep.NewBest(bestMetric)
	failed := 0

	fmt.Printf("sweeping %d points into catalog label %q\n", total, lbl)
	err = grid.Run(ctx, cfg, func(p sweep.Point) error {
		fmt.Printf("\r%s %d/%d", viz.ProgressBar(float64(p.Index+1)/float64(total), 30), p.Index+1, total)
		if p.Err != nil {
			failed++
			slog.Debug("grid point failed", "params", p.Params, "error", p.Err)
			return nil
		}
		if _, err := cat.Insert(sampleFrom(p.Result.Config, p.Params, p.Result)); err != nil {
			return err
		}
		best.Observe(p)
		return nil
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("recorded %d samples, %d failed\n", total-failed, failed)
	if bestMetric != "" {
		params, val, err := best.Result()
		if err != nil {
			return err
		}
		fmt.Printf("best %s = %.6g at:\n", bestMetric, val)
		printMetrics(os.Stdout, params)
	}
	return nil
}

func runForward(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	mc := automation.MonteCarloConfig{
		Realizations: realizations,
		Seed:         mcSeed,
		Priors:       make(map[string]automation.Prior, len(priors)),
		ReseedNoise:  reseedNoise,
	}
	for _, spec := range priors {
		name, p, err := automation.ParsePrior(spec)
		if err != nil {
			return err
		}
		mc.Priors[name] = p
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return sampleInto(ctx, cfg, mc, sampleLabel(cfg))
}

// sampleInto runs the Monte Carlo sampler and appends every successful
// realization to the catalog under lbl.
func sampleInto(ctx context.Context, cfg *config.Config, mc automation.MonteCarloConfig, lbl string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	failed := 0
	fmt.Printf("sampling %d realizations into catalog label %q\n", mc.Realizations, lbl)
	err = automation.RunMonteCarlo(ctx, cfg, mc, func(t automation.Trial) error {
		fmt.Printf("\r%s %d remaining", viz.ProgressBar(float64(t.Index+1)/float64(mc.Realizations), 30),
			mc.Realizations-t.Index-1)
		if t.Err != nil {
			failed++
			slog.Debug("realization failed", "params", t.Params, "error", t.Err)
			return nil
		}
		s := sampleFrom(t.Result.Config, t.Params, t.Result)
		s.Label = lbl
		_, err := cat.Insert(s)
		return err
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Printf("recorded %d samples, %d failed\n", mc.Realizations-failed, failed)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if scenario.Description != "" {
		fmt.Printf("%s: %s\n", scenario.Name, scenario.Description)
	}

	err = automation.RunScenario(ctx, scenario, func(r automation.StepResult) error {
		runID, err := st.Save(r.Result.Config, r.Result.Profiles, r.Result.Metrics)
		if err != nil {
			return err
		}
		fmt.Printf("step %d (%s): run %s, peak |A| %.5f\n",
			r.Index+1, r.Result.Config.Name, runID, r.Result.Summary.PeakAbs)
		return nil
	})
	if err != nil {
		return err
	}

	if scenario.Sampling == nil {
		return nil
	}
	base, err := scenario.Base()
	if err != nil {
		return err
	}
	return sampleInto(ctx, base, *scenario.Sampling, scenario.Name)
}

func openCatalog() (*catalog.Catalog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return catalog.Open(filepath.Join(dataDir, catalogFile))
}

func recordSamples(lbl string, samples ...catalog.Sample) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	for i := range samples {
		samples[i].Label = lbl
	}
	_, err = cat.Insert(samples...)
	return err
}

func sampleLabel(cfg *config.Config) string {
	if label != "" {
		return label
	}
	return cfg.Name
}

// sampleFrom flattens cfg into catalog params; grid values override.
func sampleFrom(cfg *config.Config, grid map[string]float64, res *experiment.Result) catalog.Sample {
	params := map[string]float64{
		"rho":       cfg.RhoMidplane,
		"nu":        cfg.Disk.Nu,
		"z_shift":   cfg.Disk.ZShift,
		"v_shift":   cfg.Disk.VShift,
		"breathing": cfg.Disk.Breathing,
		"noise":     cfg.Disk.Noise,
		"seed":      float64(cfg.Disk.Seed),
	}
	for i := range cfg.Dispersions {
		params[fmt.Sprintf("sigma_%d", i)] = cfg.Dispersions[i]
		if i < len(cfg.Normalizations) {
			params[fmt.Sprintf("norm_%d", i)] = cfg.Normalizations[i]
		}
	}
	for k, v := range grid {
		params[k] = v
	}
	return catalog.Sample{
		Label:         sampleLabel(cfg),
		Params:        params,
		Asymmetry:     res.Profiles.A,
		MeanVRelative: res.Profiles.MeanVRelative,
	}
}

func listSamples(cmd *cobra.Command, args []string) error {
	path := filepath.Join(dataDir, catalogFile)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Println("no catalog found")
		return nil
	}
	if err != nil {
		return err
	}

	cat, err := catalog.Open(path)
	if err != nil {
		return err
	}
	defer cat.Close()

	samples, err := cat.List(label)
	if err != nil {
		return err
	}
	labels, err := cat.Labels()
	if err != nil {
		return err
	}

	fmt.Printf("catalog: %s (%s, %d labels)\n\n", path, humanize.Bytes(uint64(info.Size())), len(labels))
	if len(samples) == 0 {
		fmt.Println("no samples")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tCREATED\tPEAK |A|\tPARAMS")
	for _, s := range samples {
		sum := analysis.Summarize(make([]float64, len(s.Asymmetry)), s.Asymmetry)
		fmt.Fprintf(w, "%s\t%s\t%s\t%.5f\t%s\n",
			shortID(s.ID), s.Label, humanize.Time(s.Created), sum.PeakAbs, formatParams(s.Params))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%s samples\n", humanize.Comma(int64(len(samples))))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, params[k])
	}
	return strings.Join(parts, " ")
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tNORMS\tSIGMAS\tNU\tZ_SHIFT\tV_SHIFT\tBREATHING\tNOISE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%v\t%v\t%g\t%g\t%g\t%g\t%g\n",
			name, cfg.Normalizations, cfg.Dispersions, cfg.Disk.Nu,
			cfg.Disk.ZShift, cfg.Disk.VShift, cfg.Disk.Breathing, cfg.Disk.Noise)
	}
	return w.Flush()
}

func writeFields(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fields, err := cfg.Source().Fields()
	if err != nil {
		return err
	}
	if err := disk.Save(outFile, fields); err != nil {
		return err
	}
	fmt.Printf("wrote %dx%d fields to %s\n", fields.J.Rows, fields.J.Cols, outFile)
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	p, err := st.LoadProfiles(runID)
	if err != nil {
		return err
	}

	var field phasespace.Field
	if res, err := rebuild(cmd.Context(), st, runID); err != nil {
		slog.Warn("phase-space view unavailable", "error", err)
	} else {
		field = totalF0(res.Composite)
	}

	s := analysis.Summarize(p.ZPlus, p.A)
	stats := []viz.Stat{
		{Label: "created", Value: humanize.Time(meta.Timestamp)},
		{Label: "components", Value: fmt.Sprint(len(meta.Components))},
		{Label: "peak |A|", Value: fmt.Sprintf("%.5f", s.PeakAbs)},
		{Label: "rms A", Value: fmt.Sprintf("%.5f", s.RMS)},
		{Label: "crossings", Value: fmt.Sprint(s.ZeroCrossings)},
	}
	for i, z := range p.ZFit {
		stats = append(stats, viz.Stat{Label: fmt.Sprintf("z_fit[%d]", i), Value: fmt.Sprintf("%.4f", z)})
	}

	prog := tea.NewProgram(viz.NewBrowser(meta.Name, p, field, stats))
	_, err = prog.Run()
	return err
}
