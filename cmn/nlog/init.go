// Package nlog - psrs logger, provides buffering, timestamping, writing, and
// flushing/rotating
/*
 * Copyright (c) 2023-2026, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	host    = "unknown"
	sevText = []string{sevInfo: "INFO", sevWarn: "WARNING", sevErr: "ERROR"}
)

var (
	// of `fixed` line buffers
	pool = sync.Pool{
		New: func() any {
			return &fixed{buf: make([]byte, nlogLineSize)}
		},
	}
)

var (
	nlogs [3]*nlog

	mu           sync.Mutex // protects the settings below
	logDir       string
	toStderr     = true
	alsoToStderr bool

	arg0  string
	title string
	pid   int

	onceInitFiles sync.Once

	stopping atomic.Bool // true when exiting
)

func init() {
	pid = os.Getpid()
	arg0 = filepath.Base(os.Args[0])
	if h, err := os.Hostname(); err == nil {
		host = _shortHost(h)
	}
}

func initFiles() {
	if logDir == "" {
		logDir = filepath.Join(os.TempDir(), "psrslogs")
	}
	now := time.Now()
	for _, sev := range []severity{sevInfo, sevErr} {
		nlog := newNlog(sev)
		if err := nlog.rotate(now); err != nil {
			panic(fmt.Sprintf("FATAL: unable to create logs in %q: %v", logDir, err))
		}
		nlogs[sev] = nlog
	}
}

func sname() string { return arg0 }

func _shortHost(hostname string) string {
	if before, _, ok := strings.Cut(hostname, "."); ok {
		return before
	}
	return hostname
}

func fcreate(tag string, t time.Time) (f *os.File, fname string, err error) {
	if err = os.MkdirAll(logDir, os.ModePerm); err != nil {
		return
	}
	name, link := logfname(tag, t)
	fname = filepath.Join(logDir, name)
	f, err = os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return
	}
	// re-symlink
	symlink := filepath.Join(logDir, link)
	os.Remove(symlink)
	os.Symlink(name, symlink)
	return
}

func logfname(tag string, t time.Time) (name, link string) {
	s := sname()
	name = fmt.Sprintf("%s.%s.%s.%02d%02d-%02d%02d%02d.%d",
		s,
		host,
		tag,
		t.Month(),
		t.Day(),
		t.Hour(),
		t.Minute(),
		t.Second(),
		pid)
	return name, s + "." + tag
}
