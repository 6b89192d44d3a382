// Package comm provides the collective communication substrate.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tinylib/msgp/msgp"
)

// Codec (de)serializes a slice of values as a MessagePack array. Decode
// always allocates: the receiver owns an independent copy.
type Codec[T any] interface {
	Append(b []byte, vals []T) []byte
	Decode(b []byte) ([]T, error)
}

type elemCodec[T any] struct {
	app  func([]byte, T) []byte
	read func([]byte) (T, []byte, error)
}

var (
	Int64s   Codec[int64]   = elemCodec[int64]{app: msgp.AppendInt64, read: msgp.ReadInt64Bytes}
	Ints     Codec[int]     = elemCodec[int]{app: msgp.AppendInt, read: msgp.ReadIntBytes}
	Float64s Codec[float64] = elemCodec[float64]{app: msgp.AppendFloat64, read: msgp.ReadFloat64Bytes}
	Strings  Codec[string]  = elemCodec[string]{app: msgp.AppendString, read: msgp.ReadStringBytes}
)

// interface guard
var _ Codec[int64] = elemCodec[int64]{}

func (c elemCodec[T]) Append(b []byte, vals []T) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(vals)))
	for _, v := range vals {
		b = c.app(b, v)
	}
	return b
}

func (c elemCodec[T]) Decode(b []byte) ([]T, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, errors.Wrap(err, "array header")
	}
	vals := make([]T, n)
	for i := range vals {
		if vals[i], b, err = c.read(b); err != nil {
			return nil, errors.Wrapf(err, "element %d of %d", i, n)
		}
	}
	if len(b) != 0 {
		return nil, fmt.Errorf("%d trailing byte(s) after %d element(s)", len(b), n)
	}
	return vals, nil
}

// CodecOf returns the built-in codec for T.
func CodecOf[T any]() (Codec[T], error) {
	var (
		zero T
		c    any
	)
	switch any(zero).(type) {
	case int64:
		c = Int64s
	case int:
		c = Ints
	case float64:
		c = Float64s
	case string:
		c = Strings
	default:
		return nil, fmt.Errorf("no built-in codec for %T", zero)
	}
	return c.(Codec[T]), nil
}
