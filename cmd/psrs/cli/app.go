// Package cli implements the psrs commands.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli"
)

const (
	cliName     = "psrs"
	metadataCtx = "ctx"
	cliDescr    = `Parallel Sort by Regular Sampling: p concurrent participants sort contiguous
   blocks of the input, agree on p-1 pivots drawn from regular samples,
   redistribute by pivot range, and merge.`
)

type acli struct {
	app       *cli.App
	outWriter io.Writer
	errWriter io.Writer
}

var buildTime string

// color
var (
	fred   = color.New(color.FgHiRed).SprintFunc()
	fcyan  = color.New(color.FgHiCyan).SprintFunc()
	fgreen = color.New(color.FgHiGreen).SprintFunc()
)

// main method
func Run(ctx context.Context, version, buildtime string, args []string) error {
	buildTime = buildtime
	return run(ctx, version, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, version string, args []string, out, errw io.Writer) error {
	a := acli{app: cli.NewApp(), outWriter: out, errWriter: errw}
	a.init(ctx, version)
	return a.formatErr(a.app.Run(args))
}

func redErr(err error) error {
	msg := strings.TrimRight(err.Error(), "\n")
	return errors.New(fred("Error: ") + msg)
}

func (*acli) formatErr(err error) error {
	if err == nil {
		return nil
	}
	return redErr(err)
}

func onBeforeCommand(c *cli.Context) error {
	// the library disables colors when stdout is not a terminal;
	// here we can only disable them on demand
	if flagIsSet(c, noColorFlag) {
		color.NoColor = true
	}
	return nil
}

func (a *acli) init(ctx context.Context, version string) {
	app := a.app

	app.Name = cliName
	app.Usage = "PSRS: parallel sort by regular sampling"
	app.Version = version
	app.HideHelp = true
	app.Flags = []cli.Flag{cli.HelpFlag, noColorFlag}
	app.CommandNotFound = commandNotFoundHandler
	app.Metadata = map[string]any{metadataCtx: ctx}
	app.Writer = a.outWriter
	app.ErrWriter = a.errWriter
	app.Before = onBeforeCommand
	app.Description = cliDescr
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version, V",
		Usage: "print only the version",
	}
	a.setupCommands()
}

func (a *acli) setupCommands() {
	// order of commands below is the order shown in "psrs help"
	a.app.Commands = []cli.Command{
		sortCmd,
		genCmd,
		showCmd,
		historyCmd,
		helpCommand,
	}
	setupCommandHelp(a.app.Commands)
}

func setupCommandHelp(commands []cli.Command) {
	for i := range commands {
		command := &commands[i]
		// get rid of 'h'/'help' subcommands and add the help flag manually
		command.HideHelp = true
		command.Flags = append(command.Flags, cli.HelpFlag)
	}
}

var helpCommand = cli.Command{
	Name:      "help",
	Usage:     "show a list of commands; show help for a given command",
	ArgsUsage: "[COMMAND]",
	Action: func(c *cli.Context) error {
		args := c.Args()
		if args.Present() {
			return cli.ShowCommandHelp(c, args.First())
		}
		return cli.ShowAppHelp(c)
	},
}

func commandNotFoundHandler(c *cli.Context, cmd string) {
	if cmd == "version" {
		fmt.Fprintf(c.App.Writer, "version %s (build %s)\n", c.App.Version, buildTime)
		return
	}
	fmt.Fprintf(c.App.ErrWriter, "unknown command %q (see '%s help')\n", cmd, c.App.Name)
	os.Exit(1)
}

// job context, canceled on interrupt
func jobContext(c *cli.Context) context.Context {
	if ctx, ok := c.App.Metadata[metadataCtx].(context.Context); ok {
		return ctx
	}
	return context.Background()
}
