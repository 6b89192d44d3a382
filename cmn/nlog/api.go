// Package nlog - psrs logger, provides buffering, timestamping, writing, and
// flushing/rotating
/*
 * Copyright (c) 2023-2026, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

var (
	MaxSize int64 = 4 * 1024 * 1024
)

// SetLogDir redirects logging from stderr to INFO and ERROR files in `dir`.
func SetLogDir(dir string) {
	mu.Lock()
	logDir, toStderr = dir, dir == ""
	mu.Unlock()
}

func SetAlsoToStderr(v bool) { mu.Lock(); alsoToStderr = v; mu.Unlock() }
func SetTitle(s string)      { title = s }

func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

func InfoLogName() string { return sname() + ".INFO" }
func ErrLogName() string  { return sname() + ".ERROR" }

func Flush() {
	for _, nlog := range nlogs {
		if nlog != nil {
			nlog.flush()
		}
	}
}

func FlushExit() {
	stopping.Store(true)
	for _, nlog := range nlogs {
		if nlog != nil {
			nlog.close()
		}
	}
}

func Stopping() bool { return stopping.Load() }
