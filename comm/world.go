// Package comm provides the collective communication substrate.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/regsample/psrs/cmn/cos"
	"github.com/regsample/psrs/cmn/debug"
)

type (
	// World is an in-process group of Size() ranked endpoints. Every ordered
	// pair (from, to), self included, owns a dedicated buffered link, which
	// makes delivery reliable and FIFO per pair.
	World struct {
		err   error
		opts  Options
		links [][]chan []byte // [from][to]
		eps   []*Endpoint
		abort chan struct{}
		mu    sync.Mutex
		once  sync.Once
	}
	Endpoint struct {
		w     *World
		stats Stats
		rank  int
	}
	Stats struct {
		MsgsSent  atomic.Int64
		BytesSent atomic.Int64 // frame bytes on the wire, headers included
		MsgsRecv  atomic.Int64
		BytesRecv atomic.Int64
	}
	// StatsSnap is a point-in-time copy of Stats.
	StatsSnap struct {
		MsgsSent  int64 `json:"msgs_sent"`
		BytesSent int64 `json:"bytes_sent"`
		MsgsRecv  int64 `json:"msgs_recv"`
		BytesRecv int64 `json:"bytes_recv"`
	}
)

// interface guard
var _ Comm = (*Endpoint)(nil)

func NewWorld(size int, opts Options) *World {
	cos.Assertf(size > 0, "invalid world size %d", size)
	if opts.LinkBuffer == 0 {
		opts.LinkBuffer = DefaultLinkBuffer
	}
	opts.LinkBuffer = max(opts.LinkBuffer, MinLinkBuffer)
	w := &World{
		opts:  opts,
		links: make([][]chan []byte, size),
		eps:   make([]*Endpoint, size),
		abort: make(chan struct{}),
	}
	for from := range size {
		w.links[from] = make([]chan []byte, size)
		for to := range size {
			w.links[from][to] = make(chan []byte, opts.LinkBuffer)
		}
		w.eps[from] = &Endpoint{w: w, rank: from}
	}
	return w
}

func (w *World) Size() int { return len(w.eps) }

func (w *World) Endpoint(rank int) *Endpoint {
	cos.Assertf(rank >= 0 && rank < len(w.eps), "rank %d out of range [0, %d)", rank, len(w.eps))
	return w.eps[rank]
}

// Abort fails the world: every pending and future Send/Recv on any endpoint
// returns an error wrapping the first abort cause. Idempotent.
func (w *World) Abort(err error) {
	w.once.Do(func() {
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
		close(w.abort)
	})
}

// Err returns the abort cause, or nil while the world is healthy.
func (w *World) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *World) Stats() (snap StatsSnap) {
	for _, ep := range w.eps {
		s := ep.Stats()
		snap.MsgsSent += s.MsgsSent
		snap.BytesSent += s.BytesSent
		snap.MsgsRecv += s.MsgsRecv
		snap.BytesRecv += s.BytesRecv
	}
	return snap
}

func (w *World) abortErr() error {
	if err := w.Err(); err != nil {
		return fmt.Errorf("%w: %v", errAborted, err)
	}
	return errAborted
}

//////////////
// Endpoint //
//////////////

func (ep *Endpoint) Rank() int { return ep.rank }
func (ep *Endpoint) Size() int { return len(ep.w.eps) }

func (ep *Endpoint) String() string { return fmt.Sprintf("ep[%d/%d]", ep.rank, len(ep.w.eps)) }

func (ep *Endpoint) Stats() StatsSnap {
	return StatsSnap{
		MsgsSent:  ep.stats.MsgsSent.Load(),
		BytesSent: ep.stats.BytesSent.Load(),
		MsgsRecv:  ep.stats.MsgsRecv.Load(),
		BytesRecv: ep.stats.BytesRecv.Load(),
	}
}

func (ep *Endpoint) Send(ctx context.Context, to int, tag Tag, payload []byte) error {
	if to < 0 || to >= ep.Size() {
		return newErrComm("send "+tag.String(), ep.rank, to, fmt.Errorf("peer out of range [0, %d)", ep.Size()))
	}
	// fail fast: an aborted world must not accept more data
	select {
	case <-ep.w.abort:
		return newErrComm("send "+tag.String(), ep.rank, to, ep.w.abortErr())
	default:
	}
	frame := packFrame(tag, ep.rank, payload, &ep.w.opts)
	select {
	case ep.w.links[ep.rank][to] <- frame:
		ep.stats.MsgsSent.Add(1)
		ep.stats.BytesSent.Add(int64(len(frame)))
		return nil
	case <-ep.w.abort:
		return newErrComm("send "+tag.String(), ep.rank, to, ep.w.abortErr())
	case <-ctx.Done():
		return newErrComm("send "+tag.String(), ep.rank, to, ctx.Err())
	}
}

func (ep *Endpoint) Recv(ctx context.Context, from int, tag Tag) ([]byte, error) {
	if from < 0 || from >= ep.Size() {
		return nil, newErrComm("recv "+tag.String(), ep.rank, from, fmt.Errorf("peer out of range [0, %d)", ep.Size()))
	}
	var frame []byte
	select {
	case frame = <-ep.w.links[from][ep.rank]:
	case <-ep.w.abort:
		return nil, newErrComm("recv "+tag.String(), ep.rank, from, ep.w.abortErr())
	case <-ctx.Done():
		return nil, newErrComm("recv "+tag.String(), ep.rank, from, ctx.Err())
	}
	ep.stats.MsgsRecv.Add(1)
	ep.stats.BytesRecv.Add(int64(len(frame)))

	hdr, payload, err := unpackFrame(frame)
	if err != nil {
		return nil, newErrComm("recv "+tag.String(), ep.rank, from, err)
	}
	debug.Assert(hdr.src == from, hdr.src, " vs ", from)
	if hdr.tag != tag {
		err := fmt.Errorf("protocol violation: expected %s, received %s", tag, hdr.tag)
		return nil, newErrComm("recv "+tag.String(), ep.rank, from, err)
	}
	return payload, nil
}
