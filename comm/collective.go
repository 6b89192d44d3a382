// Package comm provides the collective communication substrate.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"context"
	"fmt"

	"github.com/regsample/psrs/cmn/cos"
)

// Collectives are synchronous: each returns once the calling rank's part of
// the operation is done, and every rank of the world must make the same
// sequence of collective calls with the same root.

func decode[T any](c Comm, codec Codec[T], b []byte, op string, peer int) ([]T, error) {
	vals, err := codec.Decode(b)
	if err != nil {
		return nil, newErrComm(op, c.Rank(), peer, err)
	}
	return vals, nil
}

func checkRoot(c Comm, op string, root int) error {
	if root < 0 || root >= c.Size() {
		return newErrComm(op, c.Rank(), -1, fmt.Errorf("root %d out of range [0, %d)", root, c.Size()))
	}
	return nil
}

// Bcast delivers root's vals to every rank, root included. Each rank gets
// its own decoded copy.
func Bcast[T any](ctx context.Context, c Comm, codec Codec[T], vals []T, root int) ([]T, error) {
	if err := checkRoot(c, "bcast", root); err != nil {
		return nil, err
	}
	if c.Rank() == root {
		payload := codec.Append(nil, vals)
		for to := range c.Size() {
			if err := c.Send(ctx, to, TagBcast, payload); err != nil {
				return nil, err
			}
		}
	}
	b, err := c.Recv(ctx, root, TagBcast)
	if err != nil {
		return nil, err
	}
	return decode(c, codec, b, "bcast", root)
}

// Scatter splits root's all into Size() equal contiguous blocks and delivers
// block i to rank i. Non-root ranks pass nil.
func Scatter[T any](ctx context.Context, c Comm, codec Codec[T], all []T, root int) ([]T, error) {
	if err := checkRoot(c, "scatter", root); err != nil {
		return nil, err
	}
	if c.Rank() == root {
		p := c.Size()
		if len(all)%p != 0 {
			return nil, newErrComm("scatter", root, -1, fmt.Errorf("%d element(s) not divisible by %d", len(all), p))
		}
		l := len(all) / p
		for to := range p {
			if err := c.Send(ctx, to, TagScatter, codec.Append(nil, all[to*l:(to+1)*l])); err != nil {
				return nil, err
			}
		}
	}
	b, err := c.Recv(ctx, root, TagScatter)
	if err != nil {
		return nil, err
	}
	return decode(c, codec, b, "scatter", root)
}

// Gather concatenates, at root and in rank order, the equal-size
// contributions of all ranks. A contribution whose size differs from root's
// own is a failure. Non-root ranks return nil.
func Gather[T any](ctx context.Context, c Comm, codec Codec[T], local []T, root int) ([]T, error) {
	if err := checkRoot(c, "gather", root); err != nil {
		return nil, err
	}
	if err := c.Send(ctx, root, TagGather, codec.Append(nil, local)); err != nil {
		return nil, err
	}
	if c.Rank() != root {
		return nil, nil
	}
	all := make([]T, 0, len(local)*c.Size())
	for from := range c.Size() {
		b, err := c.Recv(ctx, from, TagGather)
		if err != nil {
			return nil, err
		}
		vals, err := decode(c, codec, b, "gather", from)
		if err != nil {
			return nil, err
		}
		if len(vals) != len(local) {
			err := fmt.Errorf("contribution size mismatch: %d vs %d", len(vals), len(local))
			return nil, newErrComm("gather", root, from, err)
		}
		all = append(all, vals...)
	}
	return all, nil
}

// Gatherv is the variable-size Gather: rank r contributes recvCounts[r]
// elements; root places them in rank order. recvCounts is used at root only.
func Gatherv[T any](ctx context.Context, c Comm, codec Codec[T], local []T, recvCounts []int, root int) ([]T, error) {
	if err := checkRoot(c, "gatherv", root); err != nil {
		return nil, err
	}
	if err := c.Send(ctx, root, TagGatherv, codec.Append(nil, local)); err != nil {
		return nil, err
	}
	if c.Rank() != root {
		return nil, nil
	}
	if len(recvCounts) != c.Size() {
		return nil, newErrComm("gatherv", root, -1, fmt.Errorf("expected %d counts, got %d", c.Size(), len(recvCounts)))
	}
	offsets, total := cos.PrefixSums(recvCounts)
	all := make([]T, total)
	for from := range c.Size() {
		b, err := c.Recv(ctx, from, TagGatherv)
		if err != nil {
			return nil, err
		}
		vals, err := decode(c, codec, b, "gatherv", from)
		if err != nil {
			return nil, err
		}
		if len(vals) != recvCounts[from] {
			err := fmt.Errorf("announced %d element(s), received %d", recvCounts[from], len(vals))
			return nil, newErrComm("gatherv", root, from, err)
		}
		copy(all[offsets[from]:], vals)
	}
	return all, nil
}

// AllToAll sends sendCounts[k] to rank k and returns, indexed by source rank,
// the value every rank sent to the caller.
func AllToAll(ctx context.Context, c Comm, sendCounts []int) ([]int, error) {
	p := c.Size()
	if len(sendCounts) != p {
		return nil, newErrComm("all-to-all", c.Rank(), -1, fmt.Errorf("expected %d counts, got %d", p, len(sendCounts)))
	}
	recvCounts := make([]int, p)
	// pairwise shifted schedule: step s sends to rank+s and receives from rank-s
	for s := range p {
		to, from := (c.Rank()+s)%p, (c.Rank()-s+p)%p
		if err := c.Send(ctx, to, TagAllToAll, Ints.Append(nil, sendCounts[to:to+1])); err != nil {
			return nil, err
		}
		b, err := c.Recv(ctx, from, TagAllToAll)
		if err != nil {
			return nil, err
		}
		vals, err := decode(c, Ints, b, "all-to-all", from)
		if err != nil {
			return nil, err
		}
		if len(vals) != 1 {
			return nil, newErrComm("all-to-all", c.Rank(), from, fmt.Errorf("expected one count, got %d", len(vals)))
		}
		recvCounts[from] = vals[0]
	}
	return recvCounts, nil
}

// AllToAllv sends send[sendOffsets[k]:sendOffsets[k]+sendCounts[k]] to rank k
// and returns the blocks received from all ranks, concatenated in ascending
// source rank at recvOffsets. Received block sizes must match recvCounts.
func AllToAllv[T any](ctx context.Context, c Comm, codec Codec[T], send []T, sendCounts, sendOffsets, recvCounts, recvOffsets []int) ([]T, error) {
	p := c.Size()
	for _, a := range [][]int{sendCounts, sendOffsets, recvCounts, recvOffsets} {
		if len(a) != p {
			return nil, newErrComm("all-to-allv", c.Rank(), -1, fmt.Errorf("expected %d counts/offsets, got %d", p, len(a)))
		}
	}
	var total int
	for _, n := range recvCounts {
		total += n
	}
	recv := make([]T, total)
	for s := range p {
		to, from := (c.Rank()+s)%p, (c.Rank()-s+p)%p
		block := send[sendOffsets[to] : sendOffsets[to]+sendCounts[to]]
		if err := c.Send(ctx, to, TagAllToAllv, codec.Append(nil, block)); err != nil {
			return nil, err
		}
		b, err := c.Recv(ctx, from, TagAllToAllv)
		if err != nil {
			return nil, err
		}
		vals, err := decode(c, codec, b, "all-to-allv", from)
		if err != nil {
			return nil, err
		}
		if len(vals) != recvCounts[from] {
			err := fmt.Errorf("announced %d element(s), received %d", recvCounts[from], len(vals))
			return nil, newErrComm("all-to-allv", c.Rank(), from, err)
		}
		copy(recv[recvOffsets[from]:], vals)
	}
	return recv, nil
}

// Barrier returns once every rank has entered it.
func Barrier(ctx context.Context, c Comm) error {
	const root = 0
	if err := c.Send(ctx, root, TagBarrier, nil); err != nil {
		return err
	}
	if c.Rank() == root {
		for from := range c.Size() {
			if _, err := c.Recv(ctx, from, TagBarrier); err != nil {
				return err
			}
		}
		for to := range c.Size() {
			if err := c.Send(ctx, to, TagBarrier, nil); err != nil {
				return err
			}
		}
	}
	_, err := c.Recv(ctx, root, TagBarrier)
	return err
}
