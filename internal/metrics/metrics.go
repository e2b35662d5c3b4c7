// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package metrics exposes prometheus collectors for engine runs and backend
// sampling.
//
package metrics

import (
	"io"
	"strconv"

	"github.com/db47h/fredy"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector implements fredy.Observer and records sampling results. It owns
// a private registry so that several collectors can coexist in tests.
//
type Collector struct {
	reg           *prometheus.Registry
	runs          prometheus.Counter
	nights        *prometheus.CounterVec
	shots         *prometheus.CounterVec
	disagreements *prometheus.CounterVec
}

var _ fredy.Observer = (*Collector)(nil)

// New creates a collector and registers its metrics.
//
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fredy_runs_total",
			Help: "Total number of completed engine runs",
		}),
		nights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fredy_nights_total",
			Help: "Total number of evaluated nights",
		}, []string{"fired"}),
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fredy_shots_total",
			Help: "Total number of shots run by sampling backends",
		}, []string{"backend"}),
		disagreements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fredy_sample_disagreements_total",
			Help: "Sampling runs whose counts differ from the reference readout",
		}, []string{"backend"}),
	}
	c.reg.MustRegister(c.runs, c.nights, c.shots, c.disagreements)
	return c
}

// NightEvaluated implements fredy.Observer.
//
func (c *Collector) NightEvaluated(_ int, fired bool) {
	c.nights.WithLabelValues(strconv.FormatBool(fired)).Inc()
}

// RunCompleted implements fredy.Observer.
//
func (c *Collector) RunCompleted(*fredy.Result) {
	c.runs.Inc()
}

// Sampled records a sampling run on the given backend.
//
func (c *Collector) Sampled(backend string, shots int, agreed bool) {
	c.shots.WithLabelValues(backend).Add(float64(shots))
	if !agreed {
		c.disagreements.WithLabelValues(backend).Inc()
	}
}

// Registry returns the collector's registry.
//
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// WriteText writes all metrics to w in the prometheus text format.
//
func (c *Collector) WriteText(w io.Writer) error {
	mfs, err := c.reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
