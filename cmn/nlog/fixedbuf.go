// Package nlog - psrs logger, provides buffering, timestamping, writing, and
// flushing/rotating
/*
 * Copyright (c) 2023-2026, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"io"
	"os"
	"time"
)

type fixed struct {
	buf  []byte
	woff int
}

// interface guard
var _ io.Writer = (*fixed)(nil)

// overflow is silently truncated
func (fb *fixed) Write(p []byte) (int, error) {
	fb.woff += copy(fb.buf[fb.woff:], p)
	return len(p), nil
}

func (fb *fixed) writeString(p string) { fb.woff += copy(fb.buf[fb.woff:], p) }

func (fb *fixed) writeByte(c byte) {
	if fb.avail() > 0 {
		fb.buf[fb.woff] = c
		fb.woff++
	}
}

const stampLayout = "15:04:05.000000"

func (fb *fixed) writeStamp() {
	if fb.avail() < len(stampLayout) {
		return
	}
	b := time.Now().AppendFormat(fb.buf[fb.woff:fb.woff], stampLayout)
	fb.woff += len(b)
}

func (fb *fixed) flush(file *os.File) (n int, err error) {
	n, err = file.Write(fb.buf[:fb.woff])
	if err != nil && !Stopping() {
		os.Stderr.WriteString(err.Error() + "\n")
	}
	return
}

func (fb *fixed) reset()      { fb.woff = 0 }
func (fb *fixed) length() int { return fb.woff }
func (fb *fixed) avail() int  { return cap(fb.buf) - fb.woff }

func (fb *fixed) eol() {
	if fb.woff == 0 || fb.buf[fb.woff-1] != '\n' {
		if fb.avail() == 0 {
			fb.woff--
		}
		fb.buf[fb.woff] = '\n'
		fb.woff++
	}
}
