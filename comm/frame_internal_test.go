// Package comm provides the collective communication substrate.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"bytes"
	"strings"
	"testing"
)

func TestFrameRoundtrip(t *testing.T) {
	compressible := []byte(strings.Repeat("0123456789", 100))
	tests := []struct {
		name    string
		opts    Options
		payload []byte
		lz4     bool
	}{
		{"empty", Options{}, nil, false},
		{"plain", Options{}, compressible, false},
		{"cksum", Options{Checksum: true}, compressible, false},
		{"lz4", Options{Compress: true}, compressible, true},
		{"lz4-cksum", Options{Compress: true, Checksum: true}, compressible, true},
		{"lz4-incompressible", Options{Compress: true}, []byte{1, 2, 3}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			frame := packFrame(TagAllToAllv, 3, test.payload, &test.opts)
			hdr, payload, err := unpackFrame(frame)
			if err != nil {
				t.Fatal(err)
			}
			if hdr.tag != TagAllToAllv || hdr.src != 3 {
				t.Errorf("header: got (%s, %d)", hdr.tag, hdr.src)
			}
			if lz := hdr.flags&flagLZ4 != 0; lz != test.lz4 {
				t.Errorf("lz4 flag: expected %t, got %t", test.lz4, lz)
			}
			if test.lz4 && len(frame) >= sizeFrameHdr+len(test.payload) {
				t.Errorf("frame not compressed: %d bytes", len(frame))
			}
			if !bytes.Equal(payload, test.payload) {
				t.Errorf("payload mismatch: %d vs %d bytes", len(payload), len(test.payload))
			}
		})
	}
}

func TestFrameCorruption(t *testing.T) {
	payload := []byte(strings.Repeat("psrs", 64))
	for _, opts := range []Options{{Checksum: true}, {Checksum: true, Compress: true}} {
		frame := packFrame(TagGather, 0, payload, &opts)
		frame[len(frame)-1] ^= 0xff
		if _, _, err := unpackFrame(frame); err == nil || !strings.Contains(err.Error(), "checksum") {
			t.Errorf("%+v: expected checksum error, got %v", opts, err)
		}
	}
	if _, _, err := unpackFrame([]byte{1, 2}); err == nil {
		t.Error("expected short frame error")
	}
}

func TestCodecs(t *testing.T) {
	b := Int64s.Append(nil, []int64{-1, 0, 1 << 40})
	vals, err := Int64s.Decode(b)
	if err != nil || len(vals) != 3 || vals[2] != 1<<40 {
		t.Fatalf("int64s: %v, %v", vals, err)
	}
	if _, err := Int64s.Decode(append(b, 0x01)); err == nil {
		t.Error("expected trailing bytes error")
	}
	if _, err := Int64s.Decode(b[:len(b)-1]); err == nil {
		t.Error("expected truncation error")
	}
	if _, err := Strings.Decode(b); err == nil {
		t.Error("expected type error decoding ints as strings")
	}

	c, err := CodecOf[string]()
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.Decode(c.Append(nil, []string{"b", "", "a"}))
	if err != nil || len(s) != 3 || s[0] != "b" || s[1] != "" {
		t.Fatalf("strings: %q, %v", s, err)
	}
	if _, err := CodecOf[uint8](); err == nil {
		t.Error("expected no codec for uint8")
	}
}
