// Package cli implements the psrs commands.
// This file handles the 'show' and 'history' commands.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/regsample/psrs/cmn/jsp"
	"github.com/regsample/psrs/config"
	"github.com/regsample/psrs/kvdb"

	"github.com/urfave/cli"
)

var (
	showCmd = cli.Command{
		Name:      "show",
		Usage:     "show a job report saved with 'psrs sort --save'",
		ArgsUsage: "REPORT_FILE",
		Flags:     []cli.Flag{demoFlag, perLineFlag, quietFlag, jsonFlag},
		Action:    showHandler,
	}
	historyCmd = cli.Command{
		Name:      "history",
		Usage:     "list jobs recorded with 'psrs sort --history'",
		ArgsUsage: "HISTORY_DB",
		Flags:     []cli.Flag{limitFlag},
		Action:    historyHandler,
	}
)

func showHandler(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expecting exactly one argument: report file")
	}
	r, err := loadReport(c.Args().First())
	if err != nil {
		return err
	}
	w := c.App.Writer
	if flagIsSet(c, jsonFlag) {
		if flagIsSet(c, quietFlag) {
			r.Sorted = nil
		}
		return jsp.Encode(w, r, jsp.Plain())
	}
	printSummary(w, r)
	if err := printPhases(w, r); err != nil {
		return err
	}
	if flagIsSet(c, quietFlag) || len(r.Sorted) == 0 {
		return nil
	}
	display, perLine := config.DisplayTest, config.DefaultPerLine
	if flagIsSet(c, demoFlag) {
		display = config.DisplayDemo
	}
	if flagIsSet(c, perLineFlag) {
		if perLine = parseIntFlag(c, perLineFlag); perLine <= 0 {
			return fmt.Errorf("invalid %s=%d: must be positive", flprn(perLineFlag), perLine)
		}
	}
	return printValues(w, r.Sorted, display, perLine)
}

func historyHandler(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expecting exactly one argument: history database")
	}
	db, err := kvdb.NewBuntDB(c.Args().First())
	if err != nil {
		return err
	}
	defer db.Close()
	reports, err := listHistory(db)
	if err != nil {
		return err
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Created.After(reports[j].Created) })
	if limit := parseIntFlag(c, limitFlag); limit > 0 && limit < len(reports) {
		reports = reports[:limit]
	}
	if len(reports) == 0 {
		fmt.Fprintln(c.App.Writer, "no jobs recorded")
		return nil
	}
	return printHistory(c.App.Writer, reports)
}
