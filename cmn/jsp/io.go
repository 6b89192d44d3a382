// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/OneOfOne/xxhash"
	jsoniter "github.com/json-iterator/go"
	"github.com/pierrec/lz4/v4"

	"github.com/regsample/psrs/cmn/cos"
	"github.com/regsample/psrs/cmn/debug"
)

const (
	sizeXXHash64 = cos.SizeofI64
)

var js = jsoniter.ConfigCompatibleWithStandardLibrary

func Encode(writer io.Writer, v any, opts Options) (err error) {
	var (
		zw      *lz4.Writer
		encoder *jsoniter.Encoder
		body    = &bytes.Buffer{}
		w       io.Writer
	)
	w = body
	if opts.Compress {
		zw = lz4.NewWriter(body)
		w = zw
	}
	encoder = js.NewEncoder(w)
	if opts.Indent {
		encoder.SetIndent("", "  ")
	}
	if err = encoder.Encode(v); err != nil {
		return
	}
	if opts.Compress {
		if err = zw.Close(); err != nil {
			return
		}
	}
	if opts.Signature {
		var prefix [prefLen]byte
		// 1st 64-bit word
		copy(prefix[:], signature)
		l := len(signature)
		debug.Assert(l < prefLen/2)
		prefix[l] = version

		// 2nd 64-bit word: meta version | bit flags
		binary.BigEndian.PutUint32(prefix[cos.SizeofI64:], opts.Metaver)
		var packingInfo uint32
		if opts.Compress {
			packingInfo |= 1 << 0
		}
		if opts.Checksum {
			packingInfo |= 1 << 1
		}
		binary.BigEndian.PutUint32(prefix[cos.SizeofI64+cos.SizeofI32:], packingInfo)
		if _, err = writer.Write(prefix[:]); err != nil {
			return
		}
	}
	if opts.Checksum {
		var hsum [sizeXXHash64]byte
		binary.BigEndian.PutUint64(hsum[:], xxhash.Checksum64(body.Bytes()))
		if _, err = writer.Write(hsum[:]); err != nil {
			return
		}
	}
	_, err = writer.Write(body.Bytes())
	return
}

func Decode(reader io.Reader, v any, opts Options, tag string) (err error) {
	if opts.Signature {
		var prefix [prefLen]byte
		if _, err = io.ReadFull(reader, prefix[:]); err != nil {
			return fmt.Errorf("failed to read %q prefix: %w", tag, err)
		}
		l := len(signature)
		if signature != string(prefix[:l]) {
			return fmt.Errorf("bad signature %q: %v", tag, prefix[:l])
		}
		if prefix[l] != version {
			return fmt.Errorf("unsupported version %q: %v", tag, prefix[l])
		}
		metaver := binary.BigEndian.Uint32(prefix[cos.SizeofI64:])
		if opts.Metaver != 0 && metaver != opts.Metaver {
			return fmt.Errorf("unsupported meta-version %q: %d (expecting %d)", tag, metaver, opts.Metaver)
		}
		packingInfo := binary.BigEndian.Uint32(prefix[cos.SizeofI64+cos.SizeofI32:])
		opts.Compress = packingInfo&(1<<0) != 0
		opts.Checksum = packingInfo&(1<<1) != 0
	}
	var r = reader
	if opts.Checksum {
		var hsum [sizeXXHash64]byte
		if _, err = io.ReadFull(reader, hsum[:]); err != nil {
			return fmt.Errorf("failed to read %q checksum: %w", tag, err)
		}
		body, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		expected, actual := binary.BigEndian.Uint64(hsum[:]), xxhash.Checksum64(body)
		if expected != actual {
			return &ErrBadCksum{tag: tag, expected: expected, actual: actual}
		}
		r = bytes.NewReader(body)
	}
	if opts.Compress {
		r = lz4.NewReader(r)
	}
	return js.NewDecoder(r).Decode(v)
}
