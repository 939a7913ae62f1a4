package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Code-Hex/sqlx-nestedtx/event"
)

const metricsNamespace = "sqlx_nestedtx"

// Collector is a prometheus.Collector that counts transaction lifecycle
// events passing through the emitters it wraps.
type Collector struct {
	events       *prometheus.CounterVec
	vetoes       *prometheus.CounterVec
	depth        prometheus.Gauge
	rollbackOnly prometheus.Gauge
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_total",
				Help:      "The number of emitted transaction lifecycle events.",
			}, []string{"event"},
		),
		vetoes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "vetoes_total",
				Help:      "The number of lifecycle events cancelled by an observer.",
			}, []string{"event"},
		),
		depth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "depth",
				Help:      "The nesting depth reported by the last lifecycle event.",
			},
		),
		rollbackOnly: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "rollback_only",
				Help:      "1 if the last lifecycle event reported a rollback only stack.",
			},
		),
	}
}

// Wrap returns an Emitter that publishes to next and records every
// event, counting vetoable events whose signal came back cancelled.
func (c *Collector) Wrap(next event.Emitter) event.Emitter {
	return emitter{c: c, next: next}
}

type emitter struct {
	c    *Collector
	next event.Emitter
}

func (e emitter) Emit(p event.Payload, sig *event.Signal) {
	e.next.Emit(p, sig)
	name := p.Name.String()
	e.c.events.WithLabelValues(name).Inc()
	if sig.Cancelled() && p.Name.Vetoable() {
		e.c.vetoes.WithLabelValues(name).Inc()
	}
	e.c.depth.Set(float64(p.Depth))
	if p.RollbackOnly {
		e.c.rollbackOnly.Set(1)
	} else {
		e.c.rollbackOnly.Set(0)
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.events.Describe(ch)
	c.vetoes.Describe(ch)
	c.depth.Describe(ch)
	c.rollbackOnly.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.events.Collect(ch)
	c.vetoes.Collect(ch)
	c.depth.Collect(ch)
	c.rollbackOnly.Collect(ch)
}
