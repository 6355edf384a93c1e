package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/iterlab/internal/config"
	"github.com/san-kum/iterlab/internal/dynamo"
	"github.com/san-kum/iterlab/internal/logging"
	"github.com/san-kum/iterlab/internal/methods"
	"github.com/san-kum/iterlab/internal/sim"
	"github.com/san-kum/iterlab/internal/storage"
	"github.com/san-kum/iterlab/internal/telemetry"
)

func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// loadRunFile picks the run file: a preset, then a path, then the defaults.
func loadRunFile(opts *options, args []string) (*config.File, error) {
	if opts.preset != "" {
		family, name, ok := strings.Cut(opts.preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be family/name, got %q (families: %v)", opts.preset, config.ListFamilies())
		}
		f := config.GetPreset(family, name)
		if f == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", opts.preset, config.ListPresets(family))
		}
		return f, nil
	}
	if len(args) == 1 {
		return config.Load(args[0])
	}
	return config.DefaultConfig(), nil
}

func runCalculation(cmd *cobra.Command, opts *options, args []string) error {
	out := cmd.OutOrStdout()
	diag := logging.NewDiagnostic(cmd.ErrOrStderr(), opts.debug)

	file, err := loadRunFile(opts, args)
	if err != nil {
		return err
	}
	cfg, err := file.RunConfig(nil)
	if err != nil {
		return err
	}

	st := storage.New(opts.dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID := storage.NewRunID(cfg.Type)
	runDir, err := st.Create(runID)
	if err != nil {
		return err
	}
	raw, err := file.Raw()
	if err != nil {
		return err
	}
	if err := st.SaveConfig(runID, raw); err != nil {
		return err
	}

	logOpts := []logging.Option{logging.WithConsole(out)}
	if opts.quiet {
		logOpts = []logging.Option{logging.WithConsole(io.Discard)}
	}
	if opts.plain {
		logOpts = append(logOpts, logging.Plain())
	}
	runLog, err := logging.New(runDir, logOpts...)
	if err != nil {
		return err
	}
	defer runLog.Close()
	cfg.Log = runLog

	provider, err := telemetry.NewProvider(telemetry.Config{Exporter: opts.exporter, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			diag.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	tel, err := telemetry.FromProvider(provider)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, probe := tel.Start(ctx, cfg.Type)

	diag.Debug("starting run", "run_id", runID, "type", cfg.Type, "dir", runDir)
	start := time.Now()
	run, runErr := methods.Build(ctx, nil, cfg, sim.WithLogger(diag), sim.WithObserver(probe))
	elapsed := time.Since(start)

	var res *dynamo.Result
	if run != nil {
		res = run.Result
	}
	probe.End(ctx, res, runErr)

	meta := newMetadata(runID, file, cfg, res, runErr)
	var trace *dynamo.Trace
	if res != nil {
		trace = res.Trace
	}
	if err := st.Save(meta, trace); err != nil {
		return err
	}
	if err := recordRun(st, meta); err != nil {
		diag.Warn("catalog update failed", "run_id", runID, "error", err)
	}

	if runErr != nil {
		fmt.Fprintf(out, "run id: %s\n", runID)
		return runErr
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "mode: %s\n", res.Mode)
	fmt.Fprintf(out, "steps: %d\n", res.Steps)
	if res.Exhausted {
		fmt.Fprintln(out, "stopped at the iteration cap")
	}
	fmt.Fprintln(out, "\nfinal:")
	for i, c := range res.Trace.Columns {
		if i < len(res.Final) {
			fmt.Fprintf(out, "  %s: %.6f\n", c, res.Final[i])
		}
	}
	return nil
}

func newMetadata(runID string, file *config.File, cfg dynamo.Config, res *dynamo.Result, runErr error) storage.RunMetadata {
	meta := storage.RunMetadata{
		ID:        runID,
		Type:      cfg.Type,
		Timestamp: time.Now(),
		Fn:        file.Calculator.Fn,
		Input:     file.Calculator.Input.String(),
		Mode:      cfg.Mode().String(),
		IterNum:   cfg.IterNum,
		StopDiff:  cfg.StopDiff,
	}
	if res != nil {
		meta.Mode = res.Mode.String()
		meta.Steps = res.Steps
		meta.Exhausted = res.Exhausted
		meta.Final = storage.Values(res.Final)
		if res.Trace != nil {
			meta.Columns = res.Trace.Columns
		}
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	return meta
}

func recordRun(st *storage.Store, meta storage.RunMetadata) error {
	cat, err := openCatalog(st)
	if err != nil {
		return err
	}
	defer cat.Close()
	return cat.Record(meta)
}
