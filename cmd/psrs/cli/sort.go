// Package cli implements the psrs commands.
// This file handles the 'sort' command.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/regsample/psrs/cmn/nlog"
	"github.com/regsample/psrs/comm"
	"github.com/regsample/psrs/config"
	"github.com/regsample/psrs/input"
	"github.com/regsample/psrs/kvdb"
	"github.com/regsample/psrs/psrs"
	"github.com/regsample/psrs/stats"
	"github.com/regsample/psrs/tracing"

	"github.com/urfave/cli"
)

const sortExamples = `
   E.g.:
     $ psrs sort -p 4 -n 16 --seed 1 --demo
     $ psrs sort -p 8 --input input.txt --compress --checksum --save report.psrs
     $ psrs sort --config psrs.yaml --history history.db --metrics-addr :9090
     $ psrs sort -n 1024 --trace-endpoint localhost:4317 --trace-insecure`

var sortCmd = cli.Command{
	Name:  "sort",
	Usage: "sort a random or given sequence of integers" + sortExamples,
	Flags: []cli.Flag{
		configFlag,
		participantsFlag,
		rootFlag,
		countFlag,
		seedFlag,
		minFlag,
		maxFlag,
		inputFlag,
		demoFlag,
		perLineFlag,
		quietFlag,
		compressFlag,
		checksumFlag,
		mergeFlag,
		localSortFlag,
		shortfallFlag,
		saveFlag,
		historyFlag,
		metricsAddrFlag,
		traceFlag,
		traceInsecureFlag,
		verboseFlag,
	},
	Action: sortHandler,
}

func sortHandler(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q (see %s)", c.Args().First(), qflprn(cli.HelpFlag))
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	initLogging(cfg)

	vals, err := loadInput(cfg)
	if err != nil {
		return err
	}
	opts := cfg.Job.Options()

	if err := tracing.Init(&cfg.Tracing, c.App.Version); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := tracing.Shutdown(ctx); err != nil {
			nlog.Errorln("tracing:", err)
		}
		cancel()
	}()

	if cfg.Metrics.Listen != "" {
		tracker := stats.NewTracker()
		opts.Tracker = tracker
		stop, err := serveMetrics(cfg.Metrics.Listen, tracker)
		if err != nil {
			return err
		}
		defer stop()
	}

	res, err := psrs.Run(jobContext(c), vals, comm.Int64s, opts)
	if err != nil {
		if cfg.History.DB != "" {
			if rerr := recordRun(cfg.History.DB, newFailedReport(len(vals), opts.Participants, err)); rerr != nil {
				nlog.Errorln(rerr)
			}
		}
		return err
	}

	report := newReport(res)
	w := c.App.Writer
	if !flagIsSet(c, quietFlag) {
		if cfg.Output.Display == config.DisplayDemo {
			fmt.Fprintln(w, "Final sorted array:")
		}
		if err := printValues(w, res.Sorted, cfg.Output.Display, cfg.Output.PerLine); err != nil {
			return err
		}
	}
	if cfg.Job.Verbose || cfg.Output.Display == config.DisplayDemo {
		printSummary(w, report)
		if cfg.Job.Verbose {
			if err := printPhases(w, report); err != nil {
				return err
			}
		}
	}
	if cfg.Output.Save != "" {
		if err := saveReport(cfg.Output.Save, report); err != nil {
			return err
		}
		fmt.Fprintf(w, "report saved to %s\n", fgreen(cfg.Output.Save))
	}
	if cfg.History.DB != "" {
		return recordRun(cfg.History.DB, report)
	}
	return nil
}

// loadConfig: defaults, then the config file (if any), then flags
func loadConfig(c *cli.Context) (cfg *config.Config, err error) {
	if path := parseStrFlag(c, configFlag); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	job, in, out := &cfg.Job, &cfg.Input, &cfg.Output
	if flagIsSet(c, participantsFlag) {
		job.Participants = parseIntFlag(c, participantsFlag)
	}
	if flagIsSet(c, rootFlag) {
		job.Root = parseIntFlag(c, rootFlag)
	}
	if flagIsSet(c, mergeFlag) {
		job.Merge = parseStrFlag(c, mergeFlag)
	}
	if flagIsSet(c, localSortFlag) {
		job.LocalSort = parseStrFlag(c, localSortFlag)
	}
	if flagIsSet(c, shortfallFlag) {
		job.Shortfall = parseStrFlag(c, shortfallFlag)
	}
	job.Compression = job.Compression || flagIsSet(c, compressFlag)
	job.Checksum = job.Checksum || flagIsSet(c, checksumFlag)
	job.Verbose = job.Verbose || flagIsSet(c, verboseFlag)

	if flagIsSet(c, countFlag) {
		in.Count = parseIntFlag(c, countFlag)
	}
	if flagIsSet(c, seedFlag) {
		in.Seed = c.Uint64(fl1n(seedFlag.Name))
	}
	if flagIsSet(c, minFlag) {
		in.Min = c.Int64(fl1n(minFlag.Name))
	}
	if flagIsSet(c, maxFlag) {
		in.Max = c.Int64(fl1n(maxFlag.Name))
	}
	if flagIsSet(c, inputFlag) {
		in.File = parseStrFlag(c, inputFlag)
	}

	if flagIsSet(c, demoFlag) {
		out.Display = config.DisplayDemo
	}
	if flagIsSet(c, perLineFlag) {
		out.PerLine = parseIntFlag(c, perLineFlag)
	}
	if flagIsSet(c, saveFlag) {
		out.Save = parseStrFlag(c, saveFlag)
	}
	if flagIsSet(c, historyFlag) {
		cfg.History.DB = parseStrFlag(c, historyFlag)
	}
	if flagIsSet(c, metricsAddrFlag) {
		cfg.Metrics.Listen = parseStrFlag(c, metricsAddrFlag)
	}
	if flagIsSet(c, traceFlag) {
		cfg.Tracing.Enabled, cfg.Tracing.Endpoint = true, parseStrFlag(c, traceFlag)
	}
	cfg.Tracing.Insecure = cfg.Tracing.Insecure || flagIsSet(c, traceInsecureFlag)
	return cfg, cfg.Validate()
}

// log to stderr when verbose, to files otherwise
func initLogging(cfg *config.Config) {
	switch {
	case cfg.Log.Dir != "":
		nlog.SetLogDir(cfg.Log.Dir)
	case !cfg.Job.Verbose:
		nlog.SetLogDir(filepath.Join(os.TempDir(), "psrslogs"))
	}
	nlog.SetAlsoToStderr(cfg.Log.ToStderr)
}

func loadInput(cfg *config.Config) ([]int64, error) {
	in := &cfg.Input
	if in.File != "" {
		fh, err := os.Open(in.File)
		if err != nil {
			return nil, err
		}
		defer fh.Close()
		vals, err := input.ReadCArray(fh)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", in.File, err)
		}
		nlog.Infof("input %s: %s", in.File, input.Describe(vals))
		return vals, nil
	}
	seed := in.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	nlog.Infof("generating %d values in [%d, %d], seed %d", in.Count, in.Min, in.Max, seed)
	return input.Random(in.Count, seed, in.Min, in.Max), nil
}

func serveMetrics(addr string, tracker *stats.Tracker) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics: %v", err)
	}
	srv := &http.Server{
		Handler:           tracing.NewTraceableHandler(tracker.Handler(), "metrics"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			nlog.Errorln("metrics:", err)
		}
	}()
	nlog.Infof("serving metrics at %s", ln.Addr())
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}

func recordRun(path string, r *Report) error {
	db, err := kvdb.NewBuntDB(path)
	if err != nil {
		return err
	}
	err = record(db, r)
	db.Close()
	return err
}
