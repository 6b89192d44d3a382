// Package comm provides the collective communication substrate.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm_test

import (
	"context"
	"errors"
	"time"

	"github.com/regsample/psrs/comm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/sync/errgroup"
)

// runAll executes f concurrently on every endpoint of w and returns the
// first error, if any.
func runAll(w *comm.World, f func(ctx context.Context, ep *comm.Endpoint) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	for rank := range w.Size() {
		ep := w.Endpoint(rank)
		g.Go(func() error {
			defer GinkgoRecover()
			if err := f(ctx, ep); err != nil {
				w.Abort(err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

var _ = Describe("Collectives", func() {
	for _, opts := range []comm.Options{{}, {Compress: true, Checksum: true}, {Checksum: true, LinkBuffer: 1}} {
		Context("with options "+optsName(opts), func() {
			const p = 4

			It("should broadcast independent copies", func() {
				w := comm.NewWorld(p, opts)
				got := make([][]int64, p)
				err := runAll(w, func(ctx context.Context, ep *comm.Endpoint) error {
					var vals []int64
					if ep.Rank() == 2 {
						vals = []int64{6, 10, 14}
					}
					out, err := comm.Bcast(ctx, ep, comm.Int64s, vals, 2)
					got[ep.Rank()] = out
					return err
				})
				Expect(err).NotTo(HaveOccurred())
				for r := range p {
					Expect(got[r]).To(Equal([]int64{6, 10, 14}))
				}
				got[0][0] = 100
				Expect(got[1][0]).To(BeEquivalentTo(6))
			})

			It("should scatter equal blocks in rank order", func() {
				w := comm.NewWorld(p, opts)
				got := make([][]int64, p)
				err := runAll(w, func(ctx context.Context, ep *comm.Endpoint) error {
					var all []int64
					if ep.Rank() == 0 {
						all = []int64{15, 3, 9, 0, 12, 7, 1, 14, 5, 10, 2, 8, 4, 13, 6, 11}
					}
					out, err := comm.Scatter(ctx, ep, comm.Int64s, all, 0)
					got[ep.Rank()] = out
					return err
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal([][]int64{{15, 3, 9, 0}, {12, 7, 1, 14}, {5, 10, 2, 8}, {4, 13, 6, 11}}))
			})

			It("should fail scatter of indivisible input", func() {
				w := comm.NewWorld(p, opts)
				err := runAll(w, func(ctx context.Context, ep *comm.Endpoint) error {
					var all []int64
					if ep.Rank() == 0 {
						all = []int64{1, 2, 3}
					}
					_, err := comm.Scatter(ctx, ep, comm.Int64s, all, 0)
					return err
				})
				Expect(err).To(HaveOccurred())
				Expect(comm.IsErrComm(err)).To(BeTrue())
			})

			It("should gather and gatherv in rank order", func() {
				w := comm.NewWorld(p, opts)
				var fixed, variable []string
				err := runAll(w, func(ctx context.Context, ep *comm.Endpoint) error {
					r := ep.Rank()
					out, err := comm.Gather(ctx, ep, comm.Strings, []string{string(rune('a' + r))}, 0)
					if err != nil {
						return err
					}
					local := make([]string, r)
					for i := range local {
						local[i] = string(rune('a' + r))
					}
					outv, err := comm.Gatherv(ctx, ep, comm.Strings, local, []int{0, 1, 2, 3}, 0)
					if r == 0 {
						fixed, variable = out, outv
					} else {
						Expect(out).To(BeNil())
						Expect(outv).To(BeNil())
					}
					return err
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(fixed).To(Equal([]string{"a", "b", "c", "d"}))
				Expect(variable).To(Equal([]string{"b", "c", "c", "d", "d", "d"}))
			})

			It("should reject mismatched gather contributions", func() {
				w := comm.NewWorld(p, opts)
				err := runAll(w, func(ctx context.Context, ep *comm.Endpoint) error {
					local := []float64{1.5}
					if ep.Rank() == 3 {
						local = append(local, 2.5)
					}
					_, err := comm.Gather(ctx, ep, comm.Float64s, local, 0)
					return err
				})
				Expect(comm.IsErrComm(err)).To(BeTrue())
			})

			It("should exchange counts and blocks all-to-all", func() {
				w := comm.NewWorld(p, opts)
				got := make([][]int, p)
				err := runAll(w, func(ctx context.Context, ep *comm.Endpoint) error {
					r := ep.Rank()
					// rank r sends r+1 copies of 10*r+k to rank k
					sendCounts := make([]int, p)
					var send []int
					for k := range p {
						sendCounts[k] = r + 1
						for range r + 1 {
							send = append(send, 10*r+k)
						}
					}
					recvCounts, err := comm.AllToAll(ctx, ep, sendCounts)
					if err != nil {
						return err
					}
					Expect(recvCounts).To(Equal([]int{1, 2, 3, 4}))
					sendOffsets := []int{0, r + 1, 2 * (r + 1), 3 * (r + 1)}
					recvOffsets := []int{0, 1, 3, 6}
					out, err := comm.AllToAllv(ctx, ep, comm.Ints, send, sendCounts, sendOffsets, recvCounts, recvOffsets)
					got[r] = out
					return err
				})
				Expect(err).NotTo(HaveOccurred())
				for k := range p {
					Expect(got[k]).To(Equal([]int{k, 10 + k, 10 + k, 20 + k, 20 + k, 20 + k, 30 + k, 30 + k, 30 + k, 30 + k}))
				}
			})

			It("should pass a barrier", func() {
				w := comm.NewWorld(p, opts)
				Expect(runAll(w, func(ctx context.Context, ep *comm.Endpoint) error {
					return comm.Barrier(ctx, ep)
				})).To(Succeed())
				st := w.Stats()
				Expect(st.MsgsSent).To(Equal(st.MsgsRecv))
				Expect(st.MsgsSent).To(BeEquivalentTo(2 * p))
			})
		})
	}

	Describe("World", func() {
		It("should unblock pending receives on abort", func() {
			w := comm.NewWorld(2, comm.Options{})
			cause := errors.New("participant 1 crashed")
			errCh := make(chan error, 1)
			go func() {
				_, err := w.Endpoint(0).Recv(context.Background(), 1, comm.TagGather)
				errCh <- err
			}()
			time.Sleep(10 * time.Millisecond)
			w.Abort(cause)
			var err error
			Eventually(errCh).Should(Receive(&err))
			Expect(comm.IsErrComm(err)).To(BeTrue())
			Expect(comm.IsErrAborted(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("participant 1 crashed"))
			Expect(w.Err()).To(MatchError(cause))

			Expect(w.Endpoint(1).Send(context.Background(), 0, comm.TagGather, nil)).NotTo(Succeed())
		})

		It("should fail receive on context cancellation", func() {
			w := comm.NewWorld(2, comm.Options{})
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := w.Endpoint(1).Recv(ctx, 0, comm.TagBcast)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("should detect protocol violations", func() {
			w := comm.NewWorld(2, comm.Options{})
			ctx := context.Background()
			Expect(w.Endpoint(0).Send(ctx, 1, comm.TagScatter, nil)).To(Succeed())
			_, err := w.Endpoint(1).Recv(ctx, 0, comm.TagBcast)
			Expect(comm.IsErrComm(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("protocol violation"))
		})

		It("should reject out-of-range peers", func() {
			w := comm.NewWorld(2, comm.Options{})
			Expect(w.Endpoint(0).Send(context.Background(), 2, comm.TagScatter, nil)).NotTo(Succeed())
			_, err := w.Endpoint(0).Recv(context.Background(), -1, comm.TagScatter)
			Expect(comm.IsErrComm(err)).To(BeTrue())
		})
	})
})

func optsName(o comm.Options) string {
	s := "plain"
	if o.Compress {
		s += "+lz4"
	}
	if o.Checksum {
		s += "+xxhash"
	}
	if o.LinkBuffer > 0 {
		s += "+minbuf"
	}
	return s
}
