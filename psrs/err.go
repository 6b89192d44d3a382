// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const fmtErrUnknown = "invalid %s %q (expecting one of: %s)"

type (
	// ErrConfig is an invalid job configuration, detected before any
	// communication takes place.
	ErrConfig struct {
		What string
		msg  string
	}
	// ErrDegenerateSize: a local segment too small to sample.
	ErrDegenerateSize struct {
		Size         int
		Participants int
	}
	// ErrAborted is returned by a failed job: the first failure of any
	// participant, with where it happened. No partial result is produced.
	ErrAborted struct {
		cause error
		JobID string
		Phase string
		Rank  int
	}
)

func newErrConfig(what, format string, a ...any) *ErrConfig {
	return &ErrConfig{What: what, msg: fmt.Sprintf(format, a...)}
}

func errUnknown(what, value string, supported []string) *ErrConfig {
	return newErrConfig(what, fmtErrUnknown, what, value, strings.Join(supported, ", "))
}

func (e *ErrConfig) Error() string { return "invalid configuration: " + e.msg }

func IsErrConfig(err error) bool {
	var e *ErrConfig
	return errors.As(err, &e)
}

func (e *ErrDegenerateSize) Error() string {
	if e.Size == 0 {
		return "cannot sample an empty local segment"
	}
	return fmt.Sprintf("local segment of %d element(s) cannot yield %d regular samples", e.Size, e.Participants)
}

func IsErrDegenerateSize(err error) bool {
	var e *ErrDegenerateSize
	return errors.As(err, &e)
}

func newErrAborted(jobID, phase string, rank int, cause error) *ErrAborted {
	return &ErrAborted{JobID: jobID, Phase: phase, Rank: rank, cause: cause}
}

func (e *ErrAborted) Error() string {
	return fmt.Sprintf("job %s aborted: participant %d failed in %s phase: %v", e.JobID, e.Rank, e.Phase, e.cause)
}

func (e *ErrAborted) Unwrap() error { return e.cause }

func IsErrAborted(err error) bool {
	var e *ErrAborted
	return errors.As(err, &e)
}
