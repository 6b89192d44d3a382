// Package cli implements the psrs commands.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"errors"
	"strconv"
	"time"

	"github.com/regsample/psrs/cmn/jsp"
	"github.com/regsample/psrs/kvdb"
	"github.com/regsample/psrs/psrs"
)

const (
	reportMetaver     = 1
	historyCollection = "jobs"
)

// Report is what gets saved (--save) and recorded in the run history
// (--history); the latter without the sorted values.
type Report struct {
	Created      time.Time         `json:"created"`
	JobID        string            `json:"job_id"`
	Status       string            `json:"status"`
	Error        string            `json:"error,omitempty"`
	Digest       string            `json:"digest,omitempty"`
	Pivots       []int64           `json:"pivots"`
	SegmentSizes []int             `json:"segment_sizes"`
	Phases       []*psrs.PhaseStat `json:"phases,omitempty"`
	Sorted       []int64           `json:"sorted,omitempty"`
	N            int               `json:"n"`
	Participants int               `json:"participants"`
	Skew         float64           `json:"skew"`
	Elapsed      time.Duration     `json:"elapsed"`
	BytesSent    int64             `json:"bytes_sent"`
}

func newReport(res *psrs.Result[int64]) *Report {
	return &Report{
		Created:      time.Now(),
		JobID:        res.JobID,
		Status:       psrs.StatusOK,
		Digest:       strconv.FormatUint(res.Digest, 16),
		Pivots:       res.Pivots,
		SegmentSizes: res.SegmentSizes,
		Phases:       res.PhaseStats(),
		Sorted:       res.Sorted,
		N:            res.N,
		Participants: res.Participants,
		Skew:         res.Skew(),
		Elapsed:      res.Elapsed,
		BytesSent:    res.BytesSent,
	}
}

func newFailedReport(n, participants int, err error) *Report {
	r := &Report{
		Created:      time.Now(),
		Status:       psrs.StatusInvalid,
		Error:        err.Error(),
		N:            n,
		Participants: participants,
	}
	var aborted *psrs.ErrAborted
	if errors.As(err, &aborted) {
		r.JobID, r.Status = aborted.JobID, psrs.StatusAborted
	}
	return r
}

func saveReport(path string, r *Report) error {
	return jsp.Save(path, r, jsp.CCSign(reportMetaver))
}

func loadReport(path string) (*Report, error) {
	r := &Report{}
	if err := jsp.Load(path, r, jsp.CCSign(reportMetaver)); err != nil {
		return nil, err
	}
	return r, nil
}

// record stores a copy without the values; failed jobs without an ID
// (invalid configuration) are not recorded.
func record(db kvdb.Driver, r *Report) error {
	if r.JobID == "" {
		return nil
	}
	entry := *r
	entry.Sorted, entry.Phases = nil, nil
	return db.Set(historyCollection, entry.JobID, &entry)
}

func listHistory(db kvdb.Driver) ([]*Report, error) {
	all, err := db.GetAll(historyCollection, "")
	if err != nil {
		return nil, err
	}
	reports := make([]*Report, 0, len(all))
	for id, s := range all {
		r := &Report{}
		if err := jsonAPI.UnmarshalFromString(s, r); err != nil {
			return nil, errors.New("history entry " + id + ": " + err.Error())
		}
		reports = append(reports, r)
	}
	return reports, nil
}
