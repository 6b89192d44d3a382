// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"errors"
	"fmt"
)

type ErrBadCksum struct {
	tag              string
	expected, actual uint64
}

func (e *ErrBadCksum) Error() string {
	return fmt.Sprintf("bad checksum %q: expected %016x, got %016x", e.tag, e.expected, e.actual)
}

func IsErrBadCksum(err error) bool {
	var e *ErrBadCksum
	return errors.As(err, &e)
}
