// Package cli implements the psrs commands.
// This file handles the 'gen' command.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/regsample/psrs/input"

	"github.com/urfave/cli"
)

// defaults of the 'gen' command
const (
	genCount = 50000
	genMin   = 1
	genMax   = 1000
)

const genExamples = `
   E.g.:
     $ psrs gen -o input.txt
     $ psrs gen -n 1024 --min 0 --max 99 --seed 7 -o input.txt`

var genCmd = cli.Command{
	Name:  "gen",
	Usage: "write random integers as a C array literal, e.g. '{3, 1, 2};'" + genExamples,
	Flags: []cli.Flag{
		countFlag,
		seedFlag,
		minFlag,
		maxFlag,
		outputFlag,
	},
	Action: genHandler,
}

func genHandler(c *cli.Context) (err error) {
	var (
		n          = genCount
		lo, hi     = int64(genMin), int64(genMax)
		seed       = c.Uint64(fl1n(seedFlag.Name))
		outputPath = parseStrFlag(c, outputFlag)
	)
	if flagIsSet(c, countFlag) {
		n = parseIntFlag(c, countFlag)
	}
	if flagIsSet(c, minFlag) {
		lo = c.Int64(fl1n(minFlag.Name))
	}
	if flagIsSet(c, maxFlag) {
		hi = c.Int64(fl1n(maxFlag.Name))
	}
	if n < 0 {
		return fmt.Errorf("invalid %s=%d: must be non-negative", flprn(countFlag), n)
	}
	if lo > hi {
		return fmt.Errorf("invalid range [%d, %d]", lo, hi)
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	vals := input.Random(n, seed, lo, hi)

	if outputPath == "" || outputPath == "-" {
		return input.WriteCArray(c.App.Writer, vals)
	}
	fh, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fh)
	if err = input.WriteCArray(bw, vals); err == nil {
		err = bw.Flush()
	}
	if errc := fh.Close(); err == nil {
		err = errc
	}
	if err != nil {
		os.Remove(outputPath)
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d random numbers have been written to %s\n", n, outputPath)
	return nil
}
