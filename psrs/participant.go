// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"cmp"
	"context"
	"fmt"

	"github.com/regsample/psrs/cmn/nlog"
	"github.com/regsample/psrs/comm"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// participant runs the whole pipeline for one rank. The coordinator is the
// participant whose rank is Options.Root; it does the extra work guarded
// by isCoordinator() and holds the job's output at the end.
type participant[T cmp.Ordered] struct {
	ep      comm.Comm
	codec   comm.Codec[T]
	opts    *Options
	metrics *Metrics
	tracer  trace.Tracer
	jobID   string

	input   []T // GlobalSequence (coordinator); never modified
	local   []T // LocalSegment, sorted in place
	samples []T
	global  []T // GlobalSampleSet (coordinator)
	pivots  []T // this participant's own copy of the PivotVector
	bk      buckets
	recv    []T   // ReceivedSegment
	rcounts []int // sub-block sizes of recv, by source rank
	final   []T   // FinalSegment

	// coordinator output
	sorted []T
	sizes  []int
}

type step[T cmp.Ordered] struct {
	f     func(pt *participant[T], ctx context.Context) error
	phase string
}

func newParticipant[T cmp.Ordered](ep comm.Comm, codec comm.Codec[T], opts *Options, jobID string, tracer trace.Tracer) *participant[T] {
	return &participant[T]{
		ep:      ep,
		codec:   codec,
		opts:    opts,
		jobID:   jobID,
		tracer:  tracer,
		metrics: newMetrics(ep.Rank()),
	}
}

func (pt *participant[T]) isCoordinator() bool { return pt.ep.Rank() == pt.opts.Root }

func (pt *participant[T]) String() string {
	return fmt.Sprintf("%s[%d/%d]", pt.jobID, pt.ep.Rank(), pt.ep.Size())
}

func (pt *participant[T]) steps() []step[T] {
	return []step[T]{
		{phase: PhaseInit, f: (*participant[T]).checkWorld},
		{phase: PhaseScatter, f: (*participant[T]).scatter},
		{phase: PhaseLocalSort, f: (*participant[T]).localSort},
		{phase: PhaseSample, f: (*participant[T]).sample},
		{phase: PhaseCollectSamples, f: (*participant[T]).collectSamples},
		{phase: PhaseSelectPivots, f: (*participant[T]).pickPivots},
		{phase: PhaseBcastPivots, f: (*participant[T]).bcastPivots},
		{phase: PhasePartition, f: (*participant[T]).split},
		{phase: PhaseExchange, f: (*participant[T]).exchange},
		{phase: PhaseMerge, f: (*participant[T]).mergeRuns},
		{phase: PhaseGatherFinal, f: (*participant[T]).gatherFinal},
		{phase: PhaseComplete, f: (*participant[T]).complete},
	}
}

// run executes the phases in order, no retries; the first failure is
// returned as *ErrAborted carrying this participant's rank and phase.
// input is used by the coordinator only.
func (pt *participant[T]) run(ctx context.Context, input []T) error {
	if pt.isCoordinator() {
		pt.input = input
	}
	for _, s := range pt.steps() {
		if err := ctx.Err(); err != nil {
			return newErrAborted(pt.jobID, s.phase, pt.ep.Rank(), err)
		}
		pi := pt.metrics.phase(s.phase)
		pi.begin()
		sctx, span := pt.tracer.Start(ctx, s.phase, trace.WithAttributes(attribute.Int("rank", pt.ep.Rank())))
		if err := s.f(pt, sctx); err != nil {
			err = newErrAborted(pt.jobID, s.phase, pt.ep.Rank(), err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return err
		}
		pi.finish()
		span.End()
		if pt.opts.Tracker != nil {
			pt.opts.Tracker.ObservePhase(s.phase, pi.Elapsed)
		}
		if pt.opts.Verbose {
			nlog.Infof("%s: %s done in %v", pt, s.phase, pi.Elapsed)
		}
	}
	if ep, ok := pt.ep.(*comm.Endpoint); ok {
		pt.metrics.Comm = ep.Stats()
	}
	return nil
}

func (pt *participant[T]) checkWorld(context.Context) error {
	if p := pt.ep.Size(); p != pt.opts.Participants {
		return fmt.Errorf("world size %d != %d participants", p, pt.opts.Participants)
	}
	return nil
}

func (pt *participant[T]) scatter(ctx context.Context) (err error) {
	pt.local, err = comm.Scatter(ctx, pt.ep, pt.codec, pt.input, pt.opts.Root)
	pt.input = nil
	pt.metrics.LocalSize = len(pt.local)
	return err
}

func (pt *participant[T]) localSort(context.Context) error {
	sortLocal(pt.local, pt.opts.LocalSort)
	return nil
}

func (pt *participant[T]) sample(context.Context) (err error) {
	pt.samples, err = regularSample(pt.local, pt.ep.Size(), pt.opts.Shortfall)
	pt.metrics.SampleSize = len(pt.samples)
	return err
}

func (pt *participant[T]) collectSamples(ctx context.Context) (err error) {
	pt.global, err = comm.Gather(ctx, pt.ep, pt.codec, pt.samples, pt.opts.Root)
	return err
}

func (pt *participant[T]) pickPivots(context.Context) error {
	if pt.isCoordinator() {
		pt.pivots = selectPivots(pt.global, pt.ep.Size())
	}
	return nil
}

func (pt *participant[T]) bcastPivots(ctx context.Context) (err error) {
	pt.pivots, err = comm.Bcast(ctx, pt.ep, pt.codec, pt.pivots, pt.opts.Root)
	if err == nil && len(pt.pivots) != pt.ep.Size()-1 {
		err = fmt.Errorf("received %d pivot(s), expected %d", len(pt.pivots), pt.ep.Size()-1)
	}
	return err
}

func (pt *participant[T]) split(context.Context) error {
	pt.bk = partition(pt.local, pt.pivots)
	return nil
}

func (pt *participant[T]) mergeRuns(context.Context) error {
	pt.final = merge(pt.recv, pt.rcounts, pt.opts.Merge, pt.opts.LocalSort)
	pt.metrics.SegmentSize = len(pt.final)
	return nil
}

func (pt *participant[T]) complete(ctx context.Context) error {
	return comm.Barrier(ctx, pt.ep)
}
