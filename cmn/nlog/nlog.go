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
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/regsample/psrs/cmn/mono"
)

const (
	nlogBufSize  = 64 * 1024
	nlogLineSize = 4 * 1024

	flushInterval = 10 * time.Second
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

type nlog struct {
	file *os.File
	pw   *fixed
	size int64
	last int64 // mono
	sev  severity
	mw   sync.Mutex
}

func newNlog(sev severity) *nlog {
	return &nlog{
		sev: sev,
		pw:  &fixed{buf: make([]byte, nlogBufSize)},
	}
}

// main function
func log(sev severity, depth int, format string, args ...any) {
	fb := alloc()
	sprintf(sev, depth, format, fb, args...)

	mu.Lock()
	stderr, also := toStderr, alsoToStderr
	mu.Unlock()

	if stderr {
		os.Stderr.Write(fb.buf[:fb.woff])
		free(fb)
		return
	}
	onceInitFiles.Do(initFiles)
	if also || sev >= sevErr {
		os.Stderr.Write(fb.buf[:fb.woff])
	}
	if sev >= sevWarn {
		nlogs[sevErr].write(fb)
	}
	nlogs[sevInfo].write(fb)
	free(fb)
}

func (nlog *nlog) write(line *fixed) {
	nlog.mw.Lock()
	if nlog.pw.avail() < line.woff {
		nlog._flush()
	}
	nlog.pw.Write(line.buf[:line.woff])
	if nlog.sev >= sevErr || mono.SinceNano(nlog.last) > int64(flushInterval) {
		nlog._flush()
	}
	nlog.mw.Unlock()
}

func (nlog *nlog) flush() {
	nlog.mw.Lock()
	nlog._flush()
	nlog.mw.Unlock()
}

// under mw-lock
func (nlog *nlog) _flush() {
	if nlog.pw.length() == 0 || nlog.file == nil {
		return
	}
	n, err := nlog.pw.flush(nlog.file)
	nlog.pw.reset()
	nlog.last = mono.NanoTime()
	if err != nil {
		return
	}
	nlog.size += int64(n)
	if nlog.size >= MaxSize {
		if err := nlog.rotate(time.Now()); err != nil {
			os.Stderr.WriteString(err.Error() + "\n")
		}
	}
}

func (nlog *nlog) close() {
	nlog.mw.Lock()
	nlog._flush()
	if nlog.file != nil {
		nlog.file.Close()
		nlog.file = nil
	}
	nlog.mw.Unlock()
}

func (nlog *nlog) rotate(now time.Time) (err error) {
	var (
		s    = fmt.Sprintf("host %s, %s for %s/%s\n", host, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		snow = now.Format("2006/01/02 15:04:05")
		prev = nlog.file
	)
	if nlog.file, _, err = fcreate(sevText[nlog.sev], now); err != nil {
		nlog.file = prev
		return
	}
	if prev != nil {
		prev.Close()
		nlog.file.WriteString("Rotated at " + snow + ", " + s)
	} else {
		_, err = nlog.file.WriteString("Started up at " + snow + ", " + s)
	}
	if title != "" {
		nlog.file.WriteString(title)
	}
	nlog.size = 0
	return
}

//
// utils
//

func formatHdr(s severity, depth int, fb *fixed) {
	const char = "IWE"
	_, fn, ln, ok := runtime.Caller(3 + depth)
	if !ok {
		return
	}
	idx := strings.LastIndexByte(fn, filepath.Separator)
	if idx > 0 {
		fn = fn[idx+1:]
	}
	if l := len(fn); l > 3 {
		fn = fn[:l-3]
	}
	fb.writeByte(char[s])
	fb.writeByte(' ')
	fb.writeStamp()
	fb.writeByte(' ')
	fb.writeString(fn)
	fb.writeByte(':')
	fb.writeString(strconv.Itoa(ln))
	fb.writeByte(' ')
}

func sprintf(sev severity, depth int, format string, fb *fixed, args ...any) {
	formatHdr(sev, depth+1, fb)
	if format == "" {
		fmt.Fprint(fb, args...)
	} else {
		fmt.Fprintf(fb, format, args...)
	}
	fb.eol()
}

//
// buffer pool
//

func alloc() (fb *fixed) {
	fb = pool.Get().(*fixed)
	fb.reset()
	return
}

func free(fb *fixed) { pool.Put(fb) }
