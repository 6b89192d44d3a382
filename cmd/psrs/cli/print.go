// Package cli implements the psrs commands.
// This file contains output formatting.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/regsample/psrs/cmn/cos"
	"github.com/regsample/psrs/config"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// printValues writes vals space-separated: perLine values per line in demo
// mode, all on a single line otherwise.
func printValues(w io.Writer, vals []int64, display string, perLine int) error {
	var (
		bw   = bufio.NewWriter(w)
		buf  = make([]byte, 0, 24)
		demo = display == config.DisplayDemo
	)
	for i, v := range vals {
		if i > 0 {
			if demo && i%perLine == 0 {
				bw.WriteByte('\n')
			} else {
				bw.WriteByte(' ')
			}
		}
		bw.Write(strconv.AppendInt(buf[:0], v, 10))
	}
	if len(vals) > 0 || !demo {
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func printSummary(w io.Writer, r *Report) {
	fmt.Fprintf(w, "%s %s: %d values, %d participants, %v\n",
		fcyan("job"), r.JobID, r.N, r.Participants, r.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "  pivots:   %v\n", r.Pivots)
	fmt.Fprintf(w, "  segments: %v (skew %.3f)\n", r.SegmentSizes, r.Skew)
	fmt.Fprintf(w, "  sent:     %s\n", cos.ToSizeIEC(r.BytesSent, 1))
	if r.Digest != "" {
		fmt.Fprintf(w, "  digest:   %s\n", r.Digest)
	}
}

func printPhases(w io.Writer, r *Report) error {
	if len(r.Phases) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tMIN\tAVG\tMAX")
	for _, ps := range r.Phases {
		fmt.Fprintf(tw, "%s\t%v\t%v\t%v\n", ps.Phase, ps.Min, ps.Avg, ps.Max)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, reports []*Report) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tCREATED\tSTATUS\tN\tP\tSKEW\tELAPSED\tDIGEST")
	for _, r := range reports {
		status := r.Status
		if r.Error != "" {
			status = fred(status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.3f\t%v\t%s\n", r.JobID, r.Created.Format(time.DateTime),
			status, r.N, r.Participants, r.Skew, r.Elapsed.Round(time.Microsecond), r.Digest)
	}
	return tw.Flush()
}
