// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import "cmp"

// regularSample returns exactly p values of the sorted segment, at positions
// floor(i*L/p) for i = 0..p-1. With L < p positions repeat (ShortfallRepeat)
// unless the policy says otherwise.
func regularSample[T cmp.Ordered](sorted []T, p int, policy string) ([]T, error) {
	l := len(sorted)
	if l == 0 || (l < p && policy == ShortfallReject) {
		return nil, &ErrDegenerateSize{Size: l, Participants: p}
	}
	samples := make([]T, p)
	for i := range p {
		samples[i] = sorted[i*l/p]
	}
	return samples, nil
}
