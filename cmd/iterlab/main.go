package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/iterlab/internal/analysis"
	"github.com/san-kum/iterlab/internal/config"
	"github.com/san-kum/iterlab/internal/methods"
	"github.com/san-kum/iterlab/internal/storage"
	"github.com/san-kum/iterlab/internal/viz"
)

const catalogFile = "catalog.db"

type options struct {
	dataDir  string
	preset   string
	quiet    bool
	plain    bool
	exporter string
	debug    bool

	height  int
	width   int
	columns []string
	diffs   bool

	theme    string
	interval int

	svgOut    string
	svgWidth  int
	svgHeight int
	stroke    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "iterlab",
		Short:        "iterative numerical methods lab",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", ".iterlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [config.yaml]",
		Short: "run a calculation from a config file or preset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculation(cmd, opts, args)
		},
	}
	runCmd.Flags().StringVar(&opts.preset, "preset", "", "use preset configuration (family/name)")
	runCmd.Flags().BoolVar(&opts.quiet, "quiet", false, "do not echo log lines to the console")
	runCmd.Flags().BoolVar(&opts.plain, "plain", false, "disable console colors")
	runCmd.Flags().StringVar(&opts.exporter, "trace", "none", "telemetry exporter (none, stdout)")
	runCmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug diagnostics")

	listCmd := &cobra.Command{
		Use:   "list [type]",
		Short: "list runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(cmd, opts, args)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := storage.New(opts.dataDir).Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return plotRun(cmd, opts, args[0])
		},
	}
	plotCmd.Flags().IntVar(&opts.height, "height", viz.DefaultHeight, "graph height")
	plotCmd.Flags().IntVar(&opts.width, "width", viz.DefaultWidth, "graph width")
	plotCmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "columns to plot (default all)")
	plotCmd.Flags().BoolVar(&opts.diffs, "diff", false, "also plot the step-to-step difference")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trace as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trace, err := storage.New(opts.dataDir).LoadTrace(args[0])
			if err != nil {
				return err
			}
			return storage.WriteTraceCSV(cmd.OutOrStdout(), trace)
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(opts.dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			trace, err := st.LoadTrace(args[0])
			if err != nil {
				return err
			}
			return storage.ExportJSON(cmd.OutOrStdout(), *meta, trace)
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run trace as an SVG line plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportSVG(cmd, opts, args[0])
		},
	}
	exportSVGCmd.Flags().StringVarP(&opts.svgOut, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&opts.svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&opts.svgHeight, "height", 400, "image height")
	exportSVGCmd.Flags().StringVar(&opts.stroke, "stroke", "", "line color")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "step through a run trace interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return replayRun(opts, args[0])
		},
	}
	replayCmd.Flags().StringVar(&opts.theme, "theme", viz.Themes[0].Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	replayCmd.Flags().IntVar(&opts.interval, "interval", int(viz.DefaultInterval.Milliseconds()), "milliseconds per step")

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list registered method identifiers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range methods.NewRegistry().Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listPresets(cmd.OutOrStdout(), args)
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, replayCmd, methodsCmd, presetsCmd)
	return rootCmd
}

// openCatalog opens the run catalog and records any runs it has not seen.
func openCatalog(st *storage.Store) (*storage.Catalog, error) {
	if err := st.Init(); err != nil {
		return nil, err
	}
	cat, err := storage.OpenCatalog(filepath.Join(st.BaseDir(), catalogFile))
	if err != nil {
		return nil, err
	}
	if _, err := cat.Sync(st); err != nil {
		cat.Close()
		return nil, err
	}
	return cat, nil
}

func listRuns(cmd *cobra.Command, opts *options, args []string) error {
	cat, err := openCatalog(storage.New(opts.dataDir))
	if err != nil {
		return err
	}
	defer cat.Close()

	typ := ""
	if len(args) == 1 {
		typ = args[0]
	}
	runs, err := cat.List(typ)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTIME\tMODE\tSTEPS\tFINAL")
	for _, run := range runs {
		steps := fmt.Sprintf("%d", run.Steps)
		if run.Exhausted {
			steps += " (cap)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Type,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			steps,
			run.Final,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, opts *options, runID string) error {
	st := storage.New(opts.dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	graph, err := viz.Plot(trace, viz.PlotOptions{
		Height:      opts.height,
		Width:       opts.width,
		Columns:     opts.columns,
		Differences: opts.diffs,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "type: %s\n", meta.Type)
	fmt.Fprintf(out, "steps: %d\n", meta.Steps)
	if r := analysis.Analyze(trace); r.OrderOK {
		fmt.Fprintf(out, "convergence order: %.2f (last difference %.3g)\n", r.Order, r.LastDiff)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, graph)
	return nil
}

func exportSVG(cmd *cobra.Command, opts *options, runID string) error {
	trace, err := storage.New(opts.dataDir).LoadTrace(runID)
	if err != nil {
		return err
	}
	svg, err := viz.TraceSVG(trace, opts.svgWidth, opts.svgHeight, opts.stroke)
	if err != nil {
		return err
	}
	if opts.svgOut == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), svg)
		return err
	}
	return os.WriteFile(opts.svgOut, []byte(svg), 0644)
}

func replayRun(opts *options, runID string) error {
	st := storage.New(opts.dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s  %s", meta.Type, meta.ID)
	return viz.Run(title, trace,
		viz.WithTheme(opts.theme),
		viz.WithInterval(millis(opts.interval)),
	)
}

func listPresets(out io.Writer, args []string) error {
	families := config.ListFamilies()
	if len(args) == 1 {
		if len(config.ListPresets(args[0])) == 0 {
			return fmt.Errorf("no presets for %s (available: %v)", args[0], families)
		}
		families = args
	}
	for _, fam := range families {
		fmt.Fprintf(out, "%s:\n", fam)
		for _, p := range config.ListPresets(fam) {
			fmt.Fprintf(out, "  %s/%s\n", fam, p)
		}
	}
	return nil
}
