// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"cmp"
	"slices"

	"github.com/regsample/psrs/cmn/debug"
)

// selectPivots sorts (in place) the p*p gathered samples and picks p-1
// pivots at positions i*p + p/2, i = 1..p-1. Coordinator only.
func selectPivots[T cmp.Ordered](global []T, p int) []T {
	debug.Assertf(len(global) == p*p, "expecting %d samples, got %d", p*p, len(global))
	slices.Sort(global)
	pivots := make([]T, 0, p-1)
	for i := 1; i < p; i++ {
		pivots = append(pivots, global[i*p+p/2])
	}
	return pivots
}
