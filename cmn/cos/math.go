// Package cos provides common low-level types and utilities for all psrs packages.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

// PrefixSums returns exclusive prefix sums (offsets) and the total.
func PrefixSums(counts []int) (offsets []int, total int) {
	offsets = make([]int, len(counts))
	for i, c := range counts {
		offsets[i] = total
		total += c
	}
	return offsets, total
}

func Plural(num int) (s string) {
	if num != 1 {
		s = "s"
	}
	return
}
