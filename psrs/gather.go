// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"context"

	"github.com/pkg/errors"
	"github.com/regsample/psrs/comm"
)

// gatherFinal collects the final segment sizes at the coordinator, then the
// segments themselves in rank order. Ranges are disjoint and ordered by
// rank, so concatenation is the sorted sequence; no comparisons needed.
func (pt *participant[T]) gatherFinal(ctx context.Context) error {
	sizes, err := comm.Gather(ctx, pt.ep, comm.Ints, []int{len(pt.final)}, pt.opts.Root)
	if err != nil {
		return errors.Wrap(err, "gather segment sizes")
	}
	sorted, err := comm.Gatherv(ctx, pt.ep, pt.codec, pt.final, sizes, pt.opts.Root)
	if err != nil {
		return errors.Wrap(err, "gather segments")
	}
	if pt.isCoordinator() {
		pt.sorted, pt.sizes = sorted, sizes
	}
	return nil
}
