// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"cmp"
	"slices"
)

// sortLocal sorts seg in place, ascending. Float NaNs order first, as
// cmp.Compare has it.
func sortLocal[T cmp.Ordered](seg []T, kind string) {
	switch kind {
	case SortStable:
		slices.SortStableFunc(seg, cmp.Compare[T])
	default:
		slices.Sort(seg)
	}
}
