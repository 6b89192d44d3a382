// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/regsample/psrs/comm"
	"github.com/regsample/psrs/psrs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeTracker struct {
	phases   map[string]int
	segments map[int]int
	jobs     map[string]int
	xbytes   int64
	mu       sync.Mutex
}

// lossyCodec fails to decode any short block that carries the marker, which
// makes the exchange bucket holding it undeliverable while the full-size
// scatter block that also carries it still decodes.
type lossyCodec struct {
	marker int64
	full   int
}

var errLossy = errors.New("bucket lost in transit")

func (c lossyCodec) Append(b []byte, vals []int64) []byte { return comm.Int64s.Append(b, vals) }

func (c lossyCodec) Decode(b []byte) ([]int64, error) {
	vals, err := comm.Int64s.Decode(b)
	if err == nil && len(vals) != c.full && slices.Contains(vals, c.marker) {
		return nil, errLossy
	}
	return vals, err
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{phases: map[string]int{}, segments: map[int]int{}, jobs: map[string]int{}}
}

func (t *fakeTracker) ObservePhase(phase string, _ time.Duration) {
	t.mu.Lock()
	t.phases[phase]++
	t.mu.Unlock()
}

func (t *fakeTracker) AddExchangeBytes(n int64) {
	t.mu.Lock()
	t.xbytes += n
	t.mu.Unlock()
}

func (t *fakeTracker) SetSegment(rank, n int) {
	t.mu.Lock()
	t.segments[rank] = n
	t.mu.Unlock()
}

func (t *fakeTracker) JobDone(status string) {
	t.mu.Lock()
	t.jobs[status]++
	t.mu.Unlock()
}

func randInts(n, maxVal int, rnd *rand.Rand) []int64 {
	vals := make([]int64, n)
	for i := range vals {
		vals[i] = rnd.Int64N(int64(maxVal))
	}
	return vals
}

func sortedCopy[T int64 | float64 | string](vals []T) []T {
	return slices.Sorted(slices.Values(vals))
}

var _ = Describe("Run", func() {
	var (
		ctx      = context.Background()
		scenario = []int64{15, 3, 9, 1, 12, 7, 4, 14, 6, 11, 2, 13, 8, 0, 10, 5}
	)

	Describe("four participants, sixteen elements", func() {
		It("should produce the expected pivots, segments, and output", func() {
			input := slices.Clone(scenario)
			res, err := psrs.Run(ctx, input, comm.Int64s, &psrs.Options{Participants: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Pivots).To(Equal([]int64{6, 10, 14}))
			Expect(res.SegmentSizes).To(Equal([]int{7, 4, 4, 1}))
			Expect(res.Sorted).To(Equal([]int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}))
			Expect(res.N).To(Equal(16))
			Expect(res.Participants).To(Equal(4))
			Expect(res.Skew()).To(BeNumerically("~", 1.75, 1e-9))
			Expect(res.JobID).NotTo(BeEmpty())
			Expect(res.BytesSent).To(BeNumerically(">", 0))
			Expect(input).To(Equal(scenario), "input must not be modified")
		})

		It("should report per-participant metrics", func() {
			res, err := psrs.Run(ctx, slices.Clone(scenario), nil, &psrs.Options{Participants: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Metrics).To(HaveLen(4))
			for rank, m := range res.Metrics {
				Expect(m.Rank).To(Equal(rank))
				Expect(m.LocalSize).To(Equal(4))
				Expect(m.SampleSize).To(Equal(4))
				Expect(m.SegmentSize).To(Equal(res.SegmentSizes[rank]))
				Expect(m.Comm.MsgsSent).To(BeNumerically(">", 0))
				for _, phase := range psrs.Phases {
					Expect(m.Phases).To(HaveKey(phase))
					Expect(m.Phases[phase].Finished).To(BeTrue())
				}
			}
			ps := res.PhaseStats()
			Expect(ps).To(HaveLen(len(psrs.Phases)))
			Expect(ps[0].Phase).To(Equal(psrs.PhaseInit))
			Expect(ps[0].Count).To(BeEquivalentTo(4))
			Expect(ps[0].Min).To(BeNumerically("<=", ps[0].Max))
		})

		It("should not depend on transport and merge options", func() {
			base, err := psrs.Run(ctx, slices.Clone(scenario), comm.Int64s, &psrs.Options{Participants: 4})
			Expect(err).NotTo(HaveOccurred())
			for _, opts := range []psrs.Options{
				{Participants: 4, Compress: true, Checksum: true},
				{Participants: 4, Merge: psrs.MergeResort, LocalSort: psrs.SortStable},
				{Participants: 4, Root: 3, LinkBuffer: comm.MinLinkBuffer},
			} {
				res, err := psrs.Run(ctx, slices.Clone(scenario), comm.Int64s, &opts)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Sorted).To(Equal(base.Sorted))
				Expect(res.Pivots).To(Equal(base.Pivots))
				Expect(res.SegmentSizes).To(Equal(base.SegmentSizes))
				Expect(res.Digest).To(Equal(base.Digest))
			}
		})
	})

	DescribeTable("should sort any input into a permutation in ascending order",
		func(p, n, maxVal int) {
			rnd := rand.New(rand.NewPCG(uint64(p), uint64(n)))
			input := randInts(n, maxVal, rnd)
			res, err := psrs.Run(ctx, input, comm.Int64s, &psrs.Options{Participants: p})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sorted).To(Equal(sortedCopy(input)))
			Expect(res.Pivots).To(HaveLen(p - 1))
			Expect(slices.IsSorted(res.Pivots)).To(BeTrue())

			var total int
			for _, size := range res.SegmentSizes {
				total += size
			}
			Expect(total).To(Equal(n))

			// segment k holds exactly the values in (pivot[k-1], pivot[k]]
			var off int
			for k, size := range res.SegmentSizes {
				for _, v := range res.Sorted[off : off+size] {
					if k > 0 {
						Expect(v).To(BeNumerically(">", res.Pivots[k-1]))
					}
					if k < p-1 {
						Expect(v).To(BeNumerically("<=", res.Pivots[k]))
					}
				}
				off += size
			}
		},
		Entry("single participant", 1, 10, 100),
		Entry("two participants", 2, 64, 1000),
		Entry("three participants", 3, 99, 1<<30),
		Entry("eight participants", 8, 1024, 1<<20),
		Entry("sixteen participants", 16, 4096, 1<<40),
		Entry("heavy duplicates", 8, 800, 3),
		Entry("all equal", 4, 64, 1),
		Entry("fewer elements than participants per segment", 8, 16, 100),
	)

	It("should be idempotent", func() {
		rnd := rand.New(rand.NewPCG(7, 7))
		input := randInts(600, 500, rnd)
		first, err := psrs.Run(ctx, input, comm.Int64s, &psrs.Options{Participants: 6})
		Expect(err).NotTo(HaveOccurred())
		second, err := psrs.Run(ctx, first.Sorted, comm.Int64s, &psrs.Options{Participants: 6})
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Sorted).To(Equal(first.Sorted))
		Expect(second.Digest).To(Equal(first.Digest))
	})

	It("should bound segment sizes by a small multiple of N/p", func() {
		const (
			p = 8
			n = p * p * 32
		)
		for seed := range uint64(20) {
			rnd := rand.New(rand.NewPCG(seed, 42))
			input := make([]int64, n)
			for i, v := range rnd.Perm(n) {
				input[i] = int64(v)
			}
			res, err := psrs.Run(ctx, input, comm.Int64s, &psrs.Options{Participants: p})
			Expect(err).NotTo(HaveOccurred())
			for _, size := range res.SegmentSizes {
				Expect(size).To(BeNumerically("<=", 3*n/p))
			}
			Expect(res.Skew()).To(BeNumerically("<", 3))
		}
	})

	It("should sort floats and strings", func() {
		floats := []float64{2.5, -1, 0, 3.25, -7.5, 1e9, 0.5, -0.25}
		sf, err := psrs.SortFloat64s(ctx, floats, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(sf).To(Equal(sortedCopy(floats)))

		words := []string{"pivot", "bucket", "sample", "merge", "gather", "scatter"}
		ss, err := psrs.SortStrings(ctx, words, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(ss).To(Equal(sortedCopy(words)))

		si, err := psrs.SortInt64s(ctx, []int64{3, 1, 2}, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(si).To(Equal([]int64{1, 2, 3}))
	})

	It("should return an empty result for empty input", func() {
		res, err := psrs.Run(ctx, []int64{}, comm.Int64s, &psrs.Options{Participants: 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Sorted).To(BeEmpty())
		Expect(res.SegmentSizes).To(Equal([]int{0, 0, 0, 0}))
		Expect(res.Skew()).To(BeZero())
	})

	Describe("failures", func() {
		It("should reject invalid configurations before starting", func() {
			tracker := newFakeTracker()
			for _, opts := range []*psrs.Options{
				nil,
				{Participants: 0},
				{Participants: 3},
				{Participants: 4, Root: 7},
				{Participants: 4, Merge: "bubble"},
			} {
				if opts != nil {
					opts.Tracker = tracker
				}
				_, err := psrs.Run(ctx, slices.Clone(scenario), comm.Int64s, opts)
				Expect(psrs.IsErrConfig(err)).To(BeTrue(), "%+v: %v", opts, err)
				Expect(psrs.IsErrAborted(err)).To(BeFalse())
			}
			Expect(tracker.jobs[psrs.StatusInvalid]).To(Equal(4))
			Expect(tracker.phases).To(BeEmpty())
		})

		It("should reject element types without a codec", func() {
			_, err := psrs.Run[uint8](ctx, []uint8{2, 1}, nil, &psrs.Options{Participants: 2})
			Expect(psrs.IsErrConfig(err)).To(BeTrue())
		})

		It("should abort on degenerate segments when shortfall is rejected", func() {
			input := []int64{8, 7, 6, 5, 4, 3, 2, 1}
			_, err := psrs.Run(ctx, input, comm.Int64s, &psrs.Options{Participants: 4, Shortfall: psrs.ShortfallReject})
			Expect(psrs.IsErrAborted(err)).To(BeTrue())
			Expect(psrs.IsErrDegenerateSize(err)).To(BeTrue())
			var aborted *psrs.ErrAborted
			Expect(errors.As(err, &aborted)).To(BeTrue())
			Expect(aborted.Phase).To(Equal(psrs.PhaseSample))

			res, err := psrs.Run(ctx, input, comm.Int64s, &psrs.Options{Participants: 4})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sorted).To(Equal([]int64{1, 2, 3, 4, 5, 6, 7, 8}))
		})

		It("should abort as a whole, with no partial result", func() {
			tracker := newFakeTracker()
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res, err := psrs.Run(cctx, slices.Clone(scenario), comm.Int64s, &psrs.Options{Participants: 4, Tracker: tracker})
			Expect(res).To(BeNil())
			Expect(psrs.IsErrAborted(err)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(tracker.jobs[psrs.StatusAborted]).To(Equal(1))
			Expect(tracker.jobs[psrs.StatusOK]).To(BeZero())
		})
		It("should abort when an exchange bucket cannot be decoded", func() {
			const marker = 999
			// rank 0 holds the marker above all its other values: never sampled,
			// never a pivot, always in the bucket it sends to rank 3
			input := make([]int64, 0, 64)
			input = append(input, marker)
			for i := range int64(63) {
				input = append(input, i)
			}
			tracker := newFakeTracker()
			done := make(chan struct{})
			var (
				res *psrs.Result[int64]
				err error
			)
			go func() {
				defer close(done)
				res, err = psrs.Run[int64](ctx, input, lossyCodec{marker: marker, full: 16},
					&psrs.Options{Participants: 4, Tracker: tracker})
			}()
			Eventually(done).WithTimeout(10 * time.Second).Should(BeClosed())

			Expect(res).To(BeNil())
			Expect(psrs.IsErrAborted(err)).To(BeTrue())
			Expect(comm.IsErrComm(err)).To(BeTrue())
			Expect(errors.Is(err, errLossy)).To(BeTrue())
			var aborted *psrs.ErrAborted
			Expect(errors.As(err, &aborted)).To(BeTrue())
			Expect(aborted.Phase).To(Equal(psrs.PhaseExchange))
			Expect(aborted.Rank).To(Equal(3))
			Expect(tracker.jobs[psrs.StatusAborted]).To(Equal(1))
			Expect(tracker.jobs[psrs.StatusOK]).To(BeZero())
		})
	})

	It("should feed the tracker", func() {
		tracker := newFakeTracker()
		_, err := psrs.Run(ctx, slices.Clone(scenario), comm.Int64s, &psrs.Options{Participants: 4, Tracker: tracker})
		Expect(err).NotTo(HaveOccurred())
		Expect(tracker.jobs[psrs.StatusOK]).To(Equal(1))
		Expect(tracker.phases[psrs.PhaseExchange]).To(Equal(4))
		Expect(tracker.segments).To(Equal(map[int]int{0: 7, 1: 4, 2: 4, 3: 1}))
		Expect(tracker.xbytes).To(BeNumerically(">", 0))
	})
})
