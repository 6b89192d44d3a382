// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"cmp"
	"context"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/regsample/psrs/cmn/cos"
	"github.com/regsample/psrs/cmn/mono"
	"github.com/regsample/psrs/cmn/nlog"
	"github.com/regsample/psrs/comm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// spans are dropped unless a tracer provider is installed (see tracing.Init)
const tracerName = "github.com/regsample/psrs/psrs"

// Run sorts input with opts.Participants concurrent participants connected
// by an in-process comm.World. The input is not modified. Either the whole
// sorted sequence is returned or an error: *ErrConfig before anything
// starts, *ErrAborted once it has. A nil codec selects the built-in one.
func Run[T cmp.Ordered](ctx context.Context, input []T, codec comm.Codec[T], opts *Options) (*Result[T], error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.applyDefaults()
	if codec == nil {
		var err error
		if codec, err = comm.CodecOf[T](); err != nil {
			return nil, o.invalid(newErrConfig("codec", "%v", err))
		}
	}
	if err := o.validate(len(input)); err != nil {
		return nil, o.invalid(err)
	}

	var (
		p       = o.Participants
		n       = len(input)
		started = mono.NanoTime()
		res     = &Result[T]{
			JobID:        cos.GenUUID(),
			N:            n,
			Participants: p,
		}
	)
	if n == 0 {
		res.Sorted, res.Pivots, res.SegmentSizes = []T{}, []T{}, make([]int, p)
		res.Digest = xxhash.Sum64(codec.Append(nil, res.Sorted))
		o.done(StatusOK)
		return res, nil
	}
	nlog.Infof("%s: started, N=%d, p=%d, root=%d", res.JobID, n, p, o.Root)

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "psrs.job", trace.WithAttributes(
		attribute.String("job_id", res.JobID),
		attribute.Int("n", n),
		attribute.Int("participants", p),
	))
	defer span.End()

	var (
		world = comm.NewWorld(p, comm.Options{Compress: o.Compress, Checksum: o.Checksum, LinkBuffer: o.LinkBuffer})
		pts   = make([]*participant[T], p)
		errs  = cos.NewErrs(p)
	)
	group, gctx := errgroup.WithContext(ctx)
	for rank := range p {
		pt := newParticipant(world.Endpoint(rank), codec, &o, res.JobID, tracer)
		pts[rank] = pt
		group.Go(func() error {
			if err := pt.run(gctx, input); err != nil {
				// fail-stop: unblock everyone else
				world.Abort(err)
				errs.Add(err)
				return err
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		cause := world.Err() // the first one to abort
		if cnt, all := errs.JoinErr(); cnt > 1 && o.Verbose {
			nlog.Warningf("%s: %d participant(s) failed: %v", res.JobID, cnt, all)
		}
		nlog.Errorln(cause)
		span.RecordError(cause)
		span.SetStatus(codes.Error, cause.Error())
		o.done(StatusAborted)
		return nil, cause
	}

	coord := pts[o.Root]
	res.Sorted, res.SegmentSizes = coord.sorted, coord.sizes
	res.Pivots = slices.Clone(coord.pivots)
	res.Metrics = make([]*Metrics, p)
	for rank, pt := range pts {
		res.Metrics[rank] = pt.metrics
		if o.Tracker != nil {
			o.Tracker.SetSegment(rank, len(pt.final))
		}
	}
	res.Digest = xxhash.Sum64(codec.Append(nil, res.Sorted))
	res.BytesSent = world.Stats().BytesSent
	res.Elapsed = mono.Since(started)
	o.done(StatusOK)
	span.SetAttributes(attribute.Int64("bytes_sent", res.BytesSent), attribute.Float64("skew", res.Skew()))

	nlog.Infof("%s: done in %v, segments %v, skew %.3f", res.JobID, res.Elapsed, res.SegmentSizes, res.Skew())
	return res, nil
}

func (o *Options) validate(n int) error {
	p := o.Participants
	switch {
	case p <= 0:
		return newErrConfig("participants", "number of participants must be positive (got %d)", p)
	case n%p != 0:
		return newErrConfig("participants", "%d element(s) not divisible by %d participants", n, p)
	case o.Root < 0 || o.Root >= p:
		return newErrConfig("root", "coordinator rank %d out of range [0, %d)", o.Root, p)
	case !slices.Contains(supportedSorts, o.LocalSort):
		return errUnknown("local sort", o.LocalSort, supportedSorts)
	case !slices.Contains(supportedMerges, o.Merge):
		return errUnknown("merge", o.Merge, supportedMerges)
	case !slices.Contains(supportedShortfalls, o.Shortfall):
		return errUnknown("shortfall policy", o.Shortfall, supportedShortfalls)
	case o.LinkBuffer < 0:
		return newErrConfig("link buffer", "link buffer must be non-negative (got %d)", o.LinkBuffer)
	}
	return nil
}

func (o *Options) invalid(err error) error {
	o.done(StatusInvalid)
	return err
}

func (o *Options) done(status string) {
	if o.Tracker != nil {
		o.Tracker.JobDone(status)
	}
}

//
// convenience
//

func SortInt64s(ctx context.Context, vals []int64, participants int) ([]int64, error) {
	return sortWith(ctx, vals, comm.Int64s, participants)
}

func SortFloat64s(ctx context.Context, vals []float64, participants int) ([]float64, error) {
	return sortWith(ctx, vals, comm.Float64s, participants)
}

func SortStrings(ctx context.Context, vals []string, participants int) ([]string, error) {
	return sortWith(ctx, vals, comm.Strings, participants)
}

func sortWith[T cmp.Ordered](ctx context.Context, vals []T, codec comm.Codec[T], participants int) ([]T, error) {
	res, err := Run(ctx, vals, codec, &Options{Participants: participants})
	if err != nil {
		return nil, err
	}
	return res.Sorted, nil
}
