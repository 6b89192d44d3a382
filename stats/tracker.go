// Package stats tracks sorting-job metrics and exposes them to Prometheus.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"net/http"
	"strconv"
	"time"

	"github.com/regsample/psrs/psrs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "psrs"

// Tracker owns a private registry, so that multiple trackers (e.g., one per
// test) never collide on the global default one. Label "status" takes
// psrs.StatusXxx values.
type Tracker struct {
	reg      *prometheus.Registry
	phase    *prometheus.HistogramVec
	xbytes   prometheus.Counter
	segments *prometheus.GaugeVec
	jobs     *prometheus.CounterVec
}

// interface guard
var _ psrs.Tracker = (*Tracker)(nil)

func NewTracker() *Tracker {
	t := &Tracker{
		reg: prometheus.NewRegistry(),
		phase: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prometheus.BuildFQName(namespace, "", "phase_seconds"),
			Help:    "per-participant phase latency (seconds)",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}, []string{"phase"}),
		xbytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "exchange", "bytes_total"),
			Help: "total size of all-to-all exchange frames (bytes)",
		}),
		segments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName(namespace, "", "segment_elements"),
			Help: "final segment size of the last job, per rank",
		}, []string{"rank"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "", "jobs_total"),
			Help: "total number of jobs, by completion status",
		}, []string{"status"}),
	}
	t.reg.MustRegister(t.phase, t.xbytes, t.segments, t.jobs)
	t.reg.MustRegister(collectors.NewGoCollector())
	return t
}

func (t *Tracker) ObservePhase(phase string, d time.Duration) {
	t.phase.WithLabelValues(phase).Observe(d.Seconds())
}

func (t *Tracker) AddExchangeBytes(n int64) { t.xbytes.Add(float64(n)) }

func (t *Tracker) SetSegment(rank, n int) {
	t.segments.WithLabelValues(strconv.Itoa(rank)).Set(float64(n))
}

func (t *Tracker) JobDone(status string) { t.jobs.WithLabelValues(status).Inc() }

func (t *Tracker) Registry() *prometheus.Registry { return t.reg }

func (t *Tracker) Handler() http.Handler {
	return promhttp.HandlerFor(t.reg, promhttp.HandlerOpts{Registry: t.reg})
}
