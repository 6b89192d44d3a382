// Package input generates random input sequences and reads and writes them
// as C array literals: "{v1, v2, ...};".
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package input

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/pkg/errors"
)

// Random returns n uniformly distributed values in [lo, hi]. The same seed
// yields the same sequence.
func Random(n int, seed uint64, lo, hi int64) []int64 {
	var (
		rnd  = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		vals = make([]int64, n)
		span = uint64(hi-lo) + 1 // zero: full int64 range
	)
	for i := range vals {
		if span == 0 {
			vals[i] = int64(rnd.Uint64())
		} else {
			vals[i] = lo + int64(rnd.Uint64N(span))
		}
	}
	return vals
}

func WriteCArray(w io.Writer, vals []int64) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	buf := make([]byte, 0, 24)
	for i, v := range vals {
		if i > 0 {
			bw.WriteString(", ")
		}
		bw.Write(strconv.AppendInt(buf[:0], v, 10))
	}
	bw.WriteString("};")
	return bw.Flush()
}

// ReadCArray parses a C array literal. Whitespace (including newlines) is
// ignored, as are a trailing comma and the terminating semicolon.
func ReadCArray(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSpace(bytes.TrimSuffix(b, []byte{';'}))
	if len(b) < 2 || b[0] != '{' || b[len(b)-1] != '}' {
		return nil, errors.New("expecting C array literal {v1, v2, ...};")
	}
	body := bytes.TrimSpace(b[1 : len(b)-1])
	if len(body) == 0 {
		return []int64{}, nil
	}
	var (
		fields = bytes.Split(body, []byte{','})
		vals   = make([]int64, 0, len(fields))
	)
	for i, f := range fields {
		f = bytes.TrimSpace(f)
		if len(f) == 0 && i == len(fields)-1 {
			break
		}
		v, err := strconv.ParseInt(string(f), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// MinMax returns the smallest and the largest value; (MaxInt64, MinInt64)
// for an empty sequence.
func MinMax(vals []int64) (lo, hi int64) {
	lo, hi = math.MaxInt64, math.MinInt64
	for _, v := range vals {
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}

func Describe(vals []int64) string {
	if len(vals) == 0 {
		return "0 values"
	}
	lo, hi := MinMax(vals)
	return fmt.Sprintf("%d values in [%d, %d]", len(vals), lo, hi)
}
