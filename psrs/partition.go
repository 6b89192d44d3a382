// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"cmp"

	"github.com/regsample/psrs/cmn/cos"
)

// buckets of a sorted segment: bucket k is
// sorted[offsets[k] : offsets[k]+counts[k]], destined for participant k
type buckets struct {
	counts  []int
	offsets []int
}

// partition splits the sorted segment by pivots in a single pass: element v
// belongs to the first bucket b with v <= pivots[b]; the last bucket takes
// the rest. Empty buckets are legal.
func partition[T cmp.Ordered](sorted, pivots []T) buckets {
	var (
		p      = len(pivots) + 1
		counts = make([]int, p)
		b      int
	)
	for _, v := range sorted {
		for b < p-1 && cmp.Compare(v, pivots[b]) > 0 {
			b++
		}
		counts[b]++
	}
	offsets, total := cos.PrefixSums(counts)
	cos.Assert(total == len(sorted))
	return buckets{counts: counts, offsets: offsets}
}
