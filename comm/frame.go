// Package comm provides the collective communication substrate.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"encoding/binary"
	"fmt"

	"github.com/OneOfOne/xxhash"
	"github.com/pierrec/lz4/v4"
)

// frame layout (big-endian):
//
//	[0:2]   tag
//	[2:6]   source rank
//	[6]     flags
//	[7]     reserved
//	[8:12]  raw (uncompressed) payload length
//	[12:20] xxhash64 of the wire payload, zero when not checksummed
//	[20:]   wire payload
const (
	sizeFrameHdr = 20

	flagLZ4   = 1 << 0
	flagCksum = 1 << 1
)

type frameHdr struct {
	tag    Tag
	src    int
	flags  uint8
	rawLen int
	cksum  uint64
}

func packFrame(tag Tag, src int, payload []byte, opts *Options) []byte {
	var (
		wire  = payload
		flags uint8
	)
	if opts.Compress && len(payload) > 0 {
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, buf, nil)
		// zero length means incompressible: send as is
		if err == nil && n > 0 && n < len(payload) {
			wire, flags = buf[:n], flags|flagLZ4
		}
	}
	frame := make([]byte, sizeFrameHdr+len(wire))
	binary.BigEndian.PutUint16(frame[0:], uint16(tag))
	binary.BigEndian.PutUint32(frame[2:], uint32(src))
	binary.BigEndian.PutUint32(frame[8:], uint32(len(payload)))
	if opts.Checksum {
		flags |= flagCksum
		binary.BigEndian.PutUint64(frame[12:], xxhash.Checksum64(wire))
	}
	frame[6] = flags
	copy(frame[sizeFrameHdr:], wire)
	return frame
}

func unpackFrame(frame []byte) (hdr frameHdr, payload []byte, err error) {
	if len(frame) < sizeFrameHdr {
		return hdr, nil, fmt.Errorf("frame too short (%d bytes)", len(frame))
	}
	hdr.tag = Tag(binary.BigEndian.Uint16(frame[0:]))
	hdr.src = int(binary.BigEndian.Uint32(frame[2:]))
	hdr.flags = frame[6]
	hdr.rawLen = int(binary.BigEndian.Uint32(frame[8:]))
	hdr.cksum = binary.BigEndian.Uint64(frame[12:])
	wire := frame[sizeFrameHdr:]

	if hdr.flags&flagCksum != 0 {
		if cksum := xxhash.Checksum64(wire); cksum != hdr.cksum {
			return hdr, nil, fmt.Errorf("bad checksum: expected %016x, got %016x", hdr.cksum, cksum)
		}
	}
	if hdr.flags&flagLZ4 == 0 {
		if len(wire) != hdr.rawLen {
			return hdr, nil, fmt.Errorf("payload length %d != %d", len(wire), hdr.rawLen)
		}
		return hdr, wire, nil
	}
	payload = make([]byte, hdr.rawLen)
	n, err := lz4.UncompressBlock(wire, payload)
	if err != nil {
		return hdr, nil, fmt.Errorf("lz4: %w", err)
	}
	if n != hdr.rawLen {
		return hdr, nil, fmt.Errorf("decompressed %d bytes, expected %d", n, hdr.rawLen)
	}
	return hdr, payload, nil
}
