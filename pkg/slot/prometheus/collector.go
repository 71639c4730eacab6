/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Juice-Labs/borrow/pkg/slot"
)

const (
	namespace = "borrow"
	subsystem = "slot"
)

// Collector exports slot lifecycle metrics. It is a slot.Observer and can be
// shared by several slots, series are labelled by slot name.
type Collector struct {
	sync.Mutex

	created     *prometheus.CounterVec
	acquired    *prometheus.CounterVec
	ended       *prometheus.CounterVec
	closeErrors *prometheus.CounterVec
	active      *prometheus.GaugeVec
	live        *prometheus.GaugeVec
}

func NewCollector() *Collector {
	labels := []string{"slot"}

	return &Collector{
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "created_total",
				Help:      "Resource instances created.",
			},
			labels,
		),
		acquired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "acquired_total",
				Help:      "Acquisitions handed out.",
			},
			labels,
		),
		ended: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ended_total",
				Help:      "Eras ended, by reason.",
			},
			[]string{"slot", "reason"},
		),
		closeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "close_errors_total",
				Help:      "Resource Close calls that failed.",
			},
			labels,
		),
		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active",
				Help:      "Outstanding acquisitions.",
			},
			labels,
		),
		live: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "live",
				Help:      "1 while an instance is live.",
			},
			labels,
		),
	}
}

// Register creates a collector and registers it with registerer.
func Register(registerer prometheus.Registerer) (*Collector, error) {
	collector := NewCollector()
	if err := registerer.Register(collector); err != nil {
		return nil, err
	}

	return collector, nil
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.created.Describe(ch)
	c.acquired.Describe(ch)
	c.ended.Describe(ch)
	c.closeErrors.Describe(ch)
	c.active.Describe(ch)
	c.live.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.Lock()
	defer c.Unlock()

	c.created.Collect(ch)
	c.acquired.Collect(ch)
	c.ended.Collect(ch)
	c.closeErrors.Collect(ch)
	c.active.Collect(ch)
	c.live.Collect(ch)
}

func (c *Collector) Created(name string, era uint64) {
	c.Lock()
	defer c.Unlock()

	c.created.WithLabelValues(name).Inc()
	c.live.WithLabelValues(name).Set(1)
}

func (c *Collector) Acquired(name string, era uint64, active int) {
	c.Lock()
	defer c.Unlock()

	c.acquired.WithLabelValues(name).Inc()
	c.active.WithLabelValues(name).Set(float64(active))
}

func (c *Collector) Released(name string, era uint64, active int) {
	c.Lock()
	defer c.Unlock()

	c.active.WithLabelValues(name).Set(float64(active))
}

func (c *Collector) Ended(name string, era uint64, reason slot.CloseReason, err error) {
	c.Lock()
	defer c.Unlock()

	c.ended.WithLabelValues(name, reason.String()).Inc()
	if err != nil {
		c.closeErrors.WithLabelValues(name).Inc()
	}
	c.active.WithLabelValues(name).Set(0)
	c.live.WithLabelValues(name).Set(0)
}
