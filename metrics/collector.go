// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package metrics exports gfx context statistics to Prometheus.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogpu/gfx"
)

// StatsSource supplies context statistics. Stats is called from the
// scraping goroutine and must be safe for concurrent use; a *gfx.Context
// is not, so publish its stats through a Snapshot.
type StatsSource interface {
	Stats() gfx.Stats
}

// Snapshot holds the latest published stats of a context. Publish is
// called by the goroutine owning the context, usually after Commit.
type Snapshot struct {
	v atomic.Pointer[gfx.Stats]
}

// Publish stores s as the current stats.
func (s *Snapshot) Publish(st gfx.Stats) { s.v.Store(&st) }

// Stats returns the last published stats, or zero stats before the first
// Publish.
func (s *Snapshot) Stats() gfx.Stats {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return gfx.Stats{}
}

// Collector is a prometheus.Collector reporting pool occupancy and command
// counters of one context.
type Collector struct {
	source StatsSource

	capacity *prometheus.Desc
	used     *prometheus.Desc
	state    *prometheus.Desc
	frame    *prometheus.Desc
	draws    *prometheus.Desc
	dropped  *prometheus.Desc
	failed   *prometheus.Desc
	updates  *prometheus.Desc
}

// NewCollector returns a collector for source. Metric names are prefixed
// with namespace, e.g. "gfx".
func NewCollector(namespace string, source StatsSource) *Collector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "", n) }
	kind := []string{"kind"}
	return &Collector{
		source:   source,
		capacity: prometheus.NewDesc(name("pool_capacity"), "Number of slots in the resource pool.", kind, nil),
		used:     prometheus.NewDesc(name("pool_used"), "Number of slots holding a handle.", kind, nil),
		state:    prometheus.NewDesc(name("pool_slots"), "Number of slots per resource state.", []string{"kind", "state"}, nil),
		frame:    prometheus.NewDesc(name("frame"), "Index of the current frame.", nil, nil),
		draws:    prometheus.NewDesc(name("draws_total"), "Draw calls forwarded to the backend.", nil, nil),
		dropped:  prometheus.NewDesc(name("dropped_commands_total"), "Render commands skipped because of invalid handles or state.", nil, nil),
		failed:   prometheus.NewDesc(name("failed_inits_total"), "Resources that ended in the failed state.", nil, nil),
		updates:  prometheus.NewDesc(name("updates_total"), "Accepted buffer and image updates.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.capacity, c.used, c.state, c.frame, c.draws, c.dropped, c.failed, c.updates} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.source.Stats()
	for _, k := range gfx.ResourceKinds {
		p := st.Pool(k)
		kind := k.String()
		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(p.Capacity), kind)
		ch <- prometheus.MustNewConstMetric(c.used, prometheus.GaugeValue, float64(p.Used()), kind)
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(p.Alloc), kind, gfx.ResourceStateAlloc.String())
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(p.Valid), kind, gfx.ResourceStateValid.String())
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(p.Failed), kind, gfx.ResourceStateFailed.String())
	}
	ch <- prometheus.MustNewConstMetric(c.frame, prometheus.GaugeValue, float64(st.Frame))
	ch <- prometheus.MustNewConstMetric(c.draws, prometheus.CounterValue, float64(st.Draws))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(st.DroppedCommands))
	ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(st.FailedInits))
	ch <- prometheus.MustNewConstMetric(c.updates, prometheus.CounterValue, float64(st.Updates))
}

// FrameTimer records frame durations in a histogram registered with reg.
type FrameTimer struct {
	seconds prometheus.Histogram
	start   time.Time
}

// NewFrameTimer registers the frame duration histogram.
func NewFrameTimer(reg prometheus.Registerer, namespace string) *FrameTimer {
	return &FrameTimer{
		seconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Time from the start of a frame to its Commit.",
			Buckets:   []float64{0.001, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1, 0.25, 1},
		}),
	}
}

// Begin marks the start of a frame.
func (t *FrameTimer) Begin() { t.start = time.Now() }

// End observes the time since Begin. It does nothing without a Begin.
func (t *FrameTimer) End() {
	if t.start.IsZero() {
		return
	}
	t.seconds.Observe(time.Since(t.start).Seconds())
	t.start = time.Time{}
}
