// Package main is the psrs command-line tool: sort, generate inputs, and
// inspect saved reports and run history.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/regsample/psrs/cmd/psrs/cli"
	"github.com/regsample/psrs/cmn/nlog"
)

var (
	version   = "1.0"
	build     string
	buildtime string
)

// interrupt aborts a running job (fail-stop); a second one exits
func dispatchInterruptHandler(cancel context.CancelFunc) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt)
	go func() {
		<-stopCh
		cancel()
		<-stopCh
		os.Exit(1)
	}()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	dispatchInterruptHandler(cancel)

	nlog.SetTitle(fmt.Sprintf("psrs version %s.%s (build %s)\n", version, build, buildtime))
	err := cli.Run(ctx, version+"."+build, buildtime, os.Args)
	if err != nil {
		exitf("%v", err)
	}
	nlog.FlushExit()
}

func exitf(f string, a ...any) {
	nlog.FlushExit()
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
