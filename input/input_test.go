// Package input generates random input sequences and reads and writes them
// as C array literals.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package input_test

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/regsample/psrs/input"
)

func TestRandom(t *testing.T) {
	a := input.Random(1000, 42, 1, 1000)
	b := input.Random(1000, 42, 1, 1000)
	if !slices.Equal(a, b) {
		t.Fatal("same seed must produce the same sequence")
	}
	if slices.Equal(a, input.Random(1000, 43, 1, 1000)) {
		t.Error("different seeds produced the same sequence")
	}
	lo, hi := input.MinMax(a)
	if lo < 1 || hi > 1000 {
		t.Errorf("out of range: [%d, %d]", lo, hi)
	}
	for _, v := range input.Random(100, 1, -3, -3) {
		if v != -3 {
			t.Fatalf("expected constant -3, got %d", v)
		}
	}
	if n := len(input.Random(10, 1, math.MinInt64, math.MaxInt64)); n != 10 {
		t.Errorf("full range: got %d values", n)
	}
}

func TestCArrayRoundtrip(t *testing.T) {
	for _, vals := range [][]int64{{}, {7}, {15, 3, 9, 1, -12, 0, math.MaxInt64, math.MinInt64}} {
		var buf bytes.Buffer
		if err := input.WriteCArray(&buf, vals); err != nil {
			t.Fatal(err)
		}
		got, err := input.ReadCArray(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, vals) {
			t.Errorf("expected %v, got %v", vals, got)
		}
	}
	var buf bytes.Buffer
	input.WriteCArray(&buf, []int64{1, 2, 3})
	if s := buf.String(); s != "{1, 2, 3};" {
		t.Errorf("unexpected format %q", s)
	}
}

func TestReadCArray(t *testing.T) {
	tests := []struct {
		in       string
		expected []int64
		err      bool
	}{
		{"{1, 2, 3};", []int64{1, 2, 3}, false},
		{"  {\n  4,\n  5,\n  6,\n}\n", []int64{4, 5, 6}, false},
		{"{ }", []int64{}, false},
		{"{1,,2};", nil, true},
		{"[1, 2]", nil, true},
		{"{1, x};", nil, true},
		{"", nil, true},
	}
	for _, test := range tests {
		got, err := input.ReadCArray(strings.NewReader(test.in))
		if test.err {
			if err == nil {
				t.Errorf("%q: expected error", test.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", test.in, err)
			continue
		}
		if !slices.Equal(got, test.expected) {
			t.Errorf("%q: expected %v, got %v", test.in, test.expected, got)
		}
	}
}

func TestDescribe(t *testing.T) {
	if s := input.Describe([]int64{5, -1, 3}); s != "3 values in [-1, 5]" {
		t.Errorf("got %q", s)
	}
	if s := input.Describe(nil); s != "0 values" {
		t.Errorf("got %q", s)
	}
}
