// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"context"

	"github.com/pkg/errors"
	"github.com/regsample/psrs/cmn/cos"
	"github.com/regsample/psrs/comm"
)

// exchange redistributes buckets in two steps: sizes first, so that every
// receiver can lay out its buffer, then the data. Bucket k goes to
// participant k; received sub-blocks are placed in ascending source rank.
func (pt *participant[T]) exchange(ctx context.Context) error {
	var sent int64
	ep, ok := pt.ep.(*comm.Endpoint)
	if ok {
		sent = ep.Stats().BytesSent
	}
	rcounts, err := comm.AllToAll(ctx, pt.ep, pt.bk.counts)
	if err != nil {
		return errors.Wrap(err, "exchange sizes")
	}
	roffsets, total := cos.PrefixSums(rcounts)
	recv, err := comm.AllToAllv(ctx, pt.ep, pt.codec, pt.local, pt.bk.counts, pt.bk.offsets, rcounts, roffsets)
	if err != nil {
		return errors.Wrapf(err, "exchange %d element(s)", total)
	}
	pt.recv, pt.rcounts = recv, rcounts
	pt.metrics.RecvSize = len(recv)
	if ok && pt.opts.Tracker != nil {
		pt.opts.Tracker.AddExchangeBytes(ep.Stats().BytesSent - sent)
	}
	return nil
}
