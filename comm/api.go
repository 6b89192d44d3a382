// Package comm provides the collective communication substrate: ranked
// endpoints exchanging framed messages over FIFO links, and the synchronous
// collectives (broadcast, scatter, gather, all-to-all) built on top.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"context"
	"strconv"
)

type Tag uint16

const (
	TagScatter Tag = iota + 1
	TagGather
	TagGatherv
	TagBcast
	TagAllToAll
	TagAllToAllv
	TagBarrier
)

var tagNames = map[Tag]string{
	TagScatter:   "scatter",
	TagGather:    "gather",
	TagGatherv:   "gatherv",
	TagBcast:     "bcast",
	TagAllToAll:  "all-to-all",
	TagAllToAllv: "all-to-allv",
	TagBarrier:   "barrier",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "tag-" + strconv.Itoa(int(t))
}

type (
	// Comm is a rank's view of the job: point-to-point, reliable, FIFO per
	// (sender, receiver) pair. Collectives in this package depend on nothing else.
	Comm interface {
		Rank() int
		Size() int
		Send(ctx context.Context, to int, tag Tag, payload []byte) error
		Recv(ctx context.Context, from int, tag Tag) ([]byte, error)
	}

	Options struct {
		Compress   bool // lz4 frame payloads
		Checksum   bool // xxhash frame payloads
		LinkBuffer int  // per-link capacity, in frames
	}
)

const (
	DefaultLinkBuffer = 16
	MinLinkBuffer     = 4
)
