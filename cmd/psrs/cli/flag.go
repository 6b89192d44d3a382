// Package cli implements the psrs commands.
// This file contains flag definitions and parsers.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"strings"

	"github.com/regsample/psrs/psrs"

	"github.com/urfave/cli"
)

var (
	noColorFlag = cli.BoolFlag{Name: "no-color", Usage: "disable colored output"}

	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "configuration file (.json, .yaml, or .yml); flags override its values",
	}
	participantsFlag = cli.IntFlag{Name: "participants, p", Usage: "number of participants"}
	rootFlag         = cli.IntFlag{Name: "root", Usage: "coordinator rank"}
	countFlag        = cli.IntFlag{Name: "count, n", Usage: "number of random values to generate (must be divisible by participants)"}
	seedFlag         = cli.Uint64Flag{Name: "seed", Usage: "random seed (0: random)"}
	minFlag          = cli.Int64Flag{Name: "min", Usage: "minimum generated value"}
	maxFlag          = cli.Int64Flag{Name: "max", Usage: "maximum generated value (inclusive)"}
	inputFlag        = cli.StringFlag{Name: "input, i", Usage: "read input from a file containing a C array literal, e.g. '{3, 1, 2};'"}
	demoFlag         = cli.BoolFlag{Name: "demo", Usage: "print the sorted sequence ten values per line"}
	perLineFlag      = cli.IntFlag{Name: "per-line", Usage: "values per line in demo mode"}
	quietFlag        = cli.BoolFlag{Name: "quiet, q", Usage: "do not print the sorted sequence"}
	compressFlag     = cli.BoolFlag{Name: "compress", Usage: "lz4-compress exchanged messages"}
	checksumFlag     = cli.BoolFlag{Name: "checksum", Usage: "checksum exchanged messages"}
	mergeFlag        = cli.StringFlag{
		Name:  "merge",
		Usage: "how to merge received blocks: " + strings.Join([]string{psrs.MergeKway, psrs.MergeResort}, ", "),
	}
	localSortFlag = cli.StringFlag{
		Name:  "local-sort",
		Usage: "local sorting primitive: " + strings.Join([]string{psrs.SortPdq, psrs.SortStable}, ", "),
	}
	shortfallFlag = cli.StringFlag{
		Name:  "shortfall",
		Usage: "local segments shorter than the number of participants: " + psrs.ShortfallRepeat + " or " + psrs.ShortfallReject,
	}
	saveFlag          = cli.StringFlag{Name: "save", Usage: "save job report to file (see 'psrs show')"}
	historyFlag       = cli.StringFlag{Name: "history", Usage: "record the job in the run history database"}
	metricsAddrFlag   = cli.StringFlag{Name: "metrics-addr", Usage: "serve Prometheus metrics at this address while sorting, e.g. ':9090'"}
	verboseFlag       = cli.BoolFlag{Name: "verbose, v", Usage: "log every phase of every participant to stderr"}
	traceFlag         = cli.StringFlag{Name: "trace-endpoint", Usage: "export OpenTelemetry spans to this OTLP/gRPC endpoint, e.g. 'localhost:4317'"}
	traceInsecureFlag = cli.BoolFlag{Name: "trace-insecure", Usage: "use plaintext gRPC with --trace-endpoint"}
	outputFlag        = cli.StringFlag{Name: "output, o", Usage: "output file ('-' for stdout)", Value: "-"}
	jsonFlag          = cli.BoolFlag{Name: "json, j", Usage: "print the report as indented JSON"}
	limitFlag         = cli.IntFlag{Name: "limit", Usage: "maximum number of entries to show (0: all)"}
)

// flag's printable name
func flprn(f cli.Flag) string { return "--" + fl1n(f.GetName()) }

// in single quotes
func qflprn(f cli.Flag) string { return "'" + flprn(f) + "'" }

// return the first name
func fl1n(flagName string) string {
	if strings.IndexByte(flagName, ',') < 0 {
		return flagName
	}
	l := splitCsv(flagName)
	return l[0]
}

func splitCsv(s string) (lst []string) {
	lst = strings.Split(s, ",")
	for i, val := range lst {
		lst[i] = strings.TrimSpace(val)
	}
	return
}

func flagIsSet(c *cli.Context, flag cli.Flag) (v bool) {
	name := fl1n(flag.GetName()) // take the first of multiple names
	switch flag.(type) {
	case cli.BoolFlag:
		v = c.Bool(name)
	default:
		v = c.GlobalIsSet(name) || c.IsSet(name)
	}
	return
}

func parseStrFlag(c *cli.Context, flag cli.Flag) string {
	flagName := fl1n(flag.GetName())
	if c.GlobalIsSet(flagName) {
		return c.GlobalString(flagName)
	}
	return c.String(flagName)
}

func parseIntFlag(c *cli.Context, flag cli.IntFlag) int {
	flagName := fl1n(flag.GetName())
	if c.GlobalIsSet(flagName) {
		return c.GlobalInt(flagName)
	}
	return c.Int(flagName)
}
