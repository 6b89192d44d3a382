// Package psrs implements Parallel Sort by Regular Sampling.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package psrs

import (
	"math"
	"time"

	"github.com/regsample/psrs/cmn/mono"
	"github.com/regsample/psrs/comm"
)

// participant phases, in execution order
const (
	PhaseInit           = "init"
	PhaseScatter        = "scatter"
	PhaseLocalSort      = "local_sort"
	PhaseSample         = "sample"
	PhaseCollectSamples = "collect_samples"
	PhaseSelectPivots   = "select_pivots"
	PhaseBcastPivots    = "broadcast_pivots"
	PhasePartition      = "partition"
	PhaseExchange       = "exchange"
	PhaseMerge          = "merge"
	PhaseGatherFinal    = "gather_final"
	PhaseComplete       = "complete"
)

var Phases = []string{
	PhaseInit, PhaseScatter, PhaseLocalSort, PhaseSample, PhaseCollectSamples, PhaseSelectPivots,
	PhaseBcastPivots, PhasePartition, PhaseExchange, PhaseMerge, PhaseGatherFinal, PhaseComplete,
}

// PhaseInfo contains timing and state of a given phase.
type PhaseInfo struct {
	Start time.Time `json:"started_time"`
	End   time.Time `json:"end_time"`
	// Elapsed time from start to end, once the phase has finished.
	Elapsed time.Duration `json:"elapsed"`
	// Running and not Finished: the phase failed (or is in progress).
	Running  bool `json:"running"`
	Finished bool `json:"finished"`

	started int64 // mono
}

func (pi *PhaseInfo) begin() {
	pi.Running = true
	pi.Start = time.Now()
	pi.started = mono.NanoTime()
}

func (pi *PhaseInfo) finish() {
	pi.Running = false
	pi.Finished = true
	pi.End = time.Now()
	pi.Elapsed = mono.Since(pi.started)
}

// Metrics of a single participant. Written only by its owner; read once
// the job is done.
type Metrics struct {
	Phases      map[string]*PhaseInfo `json:"phases"`
	Comm        comm.StatsSnap        `json:"comm"`
	Rank        int                   `json:"rank"`
	LocalSize   int                   `json:"local_size"`
	SampleSize  int                   `json:"sample_size"`
	RecvSize    int                   `json:"recv_size"`
	SegmentSize int                   `json:"segment_size"`
}

func newMetrics(rank int) *Metrics {
	return &Metrics{Rank: rank, Phases: make(map[string]*PhaseInfo, len(Phases))}
}

func (m *Metrics) phase(name string) *PhaseInfo {
	pi, ok := m.Phases[name]
	if !ok {
		pi = &PhaseInfo{}
		m.Phases[name] = pi
	}
	return pi
}

// Elapsed is the sum of all finished phases.
func (m *Metrics) Elapsed() (d time.Duration) {
	for _, pi := range m.Phases {
		if pi.Finished {
			d += pi.Elapsed
		}
	}
	return d
}

// TimeStats: min, max, and average over the participants.
type TimeStats struct {
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
	Count int64         `json:"count,string"`
}

type PhaseStat struct {
	Phase string `json:"phase"`
	TimeStats
}

func newTimeStats() TimeStats { return TimeStats{Min: math.MaxInt64} }

func (ts *TimeStats) updateTime(d time.Duration) {
	ts.Total += d
	ts.Count++
	ts.Min = min(ts.Min, d)
	ts.Max = max(ts.Max, d)
	ts.Avg = ts.Total / time.Duration(ts.Count)
}

func aggregate(all []*Metrics) []*PhaseStat {
	stats := make([]*PhaseStat, 0, len(Phases))
	for _, phase := range Phases {
		ps := &PhaseStat{Phase: phase, TimeStats: newTimeStats()}
		for _, m := range all {
			if pi, ok := m.Phases[phase]; ok && pi.Finished {
				ps.updateTime(pi.Elapsed)
			}
		}
		if ps.Count > 0 {
			stats = append(stats, ps)
		}
	}
	return stats
}
