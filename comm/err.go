// Package comm provides the collective communication substrate.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package comm

import (
	"errors"
	"fmt"
)

var errAborted = errors.New("aborted")

// ErrComm is a communication failure: a collective or point-to-point call
// could not complete. It is always fatal for the job.
type ErrComm struct {
	cause error
	Op    string
	Rank  int
	Peer  int
}

func newErrComm(op string, rank, peer int, cause error) *ErrComm {
	return &ErrComm{Op: op, Rank: rank, Peer: peer, cause: cause}
}

func (e *ErrComm) Error() string {
	if e.Peer < 0 {
		return fmt.Sprintf("comm %s failed at rank %d: %v", e.Op, e.Rank, e.cause)
	}
	return fmt.Sprintf("comm %s failed at rank %d (peer %d): %v", e.Op, e.Rank, e.Peer, e.cause)
}

func (e *ErrComm) Unwrap() error { return e.cause }

func IsErrComm(err error) bool {
	var e *ErrComm
	return errors.As(err, &e)
}

// IsErrAborted reports whether the call failed because the world was aborted
// (by a peer's failure, or explicitly).
func IsErrAborted(err error) bool { return errors.Is(err, errAborted) }
