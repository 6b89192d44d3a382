// Package cos provides common low-level types and utilities for all psrs packages.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"fmt"

	"github.com/regsample/psrs/cmn/nlog"
)

const assertMsg = "assertion failed"

// Assert and Assertf flush the log before panicking; for invariants that
// cannot fail unless the code is wrong.
func Assert(cond bool) {
	if !cond {
		nlog.Flush()
		panic(assertMsg)
	}
}

func Assertf(cond bool, f string, a ...any) {
	if !cond {
		nlog.Flush()
		panic(assertMsg + ": " + fmt.Sprintf(f, a...))
	}
}
