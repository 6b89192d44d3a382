// Package psrs implements Parallel Sort by Regular Sampling: p participants
// sort contiguous blocks of a sequence, agree on p-1 pivots drawn from
// regular samples, redistribute by pivot range, and merge locally.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"cmp"
	"time"

	"github.com/regsample/psrs/comm"
)

// local sorter
const (
	SortPdq    = "pdq"
	SortStable = "stable"
)

// merger
const (
	MergeKway   = "kway"
	MergeResort = "resort"
)

// sample shortfall policy (local segment shorter than the number of participants)
const (
	ShortfallRepeat = "repeat"
	ShortfallReject = "reject"
)

// job completion status, as reported to Tracker.JobDone
const (
	StatusOK      = "ok"
	StatusAborted = "aborted"
	StatusInvalid = "invalid" // rejected before starting
)

var (
	supportedSorts      = []string{SortPdq, SortStable}
	supportedMerges     = []string{MergeKway, MergeResort}
	supportedShortfalls = []string{ShortfallRepeat, ShortfallReject}
)

type (
	// Tracker receives job metrics; see stats.Tracker.
	Tracker interface {
		ObservePhase(phase string, d time.Duration)
		AddExchangeBytes(n int64)
		SetSegment(rank, n int)
		JobDone(status string)
	}

	Options struct {
		Tracker      Tracker `json:"-"`
		LocalSort    string  `json:"local_sort"`
		Merge        string  `json:"merge"`
		Shortfall    string  `json:"shortfall"`
		Participants int     `json:"participants"`
		Root         int     `json:"root"`
		LinkBuffer   int     `json:"link_buffer"`
		Compress     bool    `json:"compression"`
		Checksum     bool    `json:"checksum"`
		Verbose      bool    `json:"verbose"`
	}

	Result[T cmp.Ordered] struct {
		JobID        string        `json:"job_id"`
		Sorted       []T           `json:"sorted"`
		Pivots       []T           `json:"pivots"`
		SegmentSizes []int         `json:"segment_sizes"`
		Metrics      []*Metrics    `json:"metrics"`
		N            int           `json:"n"`
		Participants int           `json:"participants"`
		Elapsed      time.Duration `json:"elapsed"`
		BytesSent    int64         `json:"bytes_sent"`
		Digest       uint64        `json:"digest"`
	}
)

func (o *Options) applyDefaults() {
	if o.LocalSort == "" {
		o.LocalSort = SortPdq
	}
	if o.Merge == "" {
		o.Merge = MergeKway
	}
	if o.Shortfall == "" {
		o.Shortfall = ShortfallRepeat
	}
	if o.LinkBuffer == 0 {
		o.LinkBuffer = comm.DefaultLinkBuffer
	}
}

// Skew is the largest final segment relative to the ideal N/p.
func (r *Result[T]) Skew() float64 {
	if r.N == 0 || r.Participants == 0 {
		return 0
	}
	var largest int
	for _, n := range r.SegmentSizes {
		largest = max(largest, n)
	}
	return float64(largest) * float64(r.Participants) / float64(r.N)
}

// PhaseStats aggregates per-participant phase latencies, in pipeline order.
func (r *Result[T]) PhaseStats() []*PhaseStat {
	return aggregate(r.Metrics)
}
