// Package metrics exposes Prometheus collectors for member resolution and
// attribute access.
//
// A nil *Collector is valid and records nothing, so components can hold one
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smnsjas/go-uaproxy/ua"
)

// Resolver browse outcomes.
const (
	BrowseFound    = "found"
	BrowseNotFound = "not_found"
	BrowseError    = "error"
)

// Collector holds the proxy metrics.
type Collector struct {
	lookups     *prometheus.CounterVec
	browses     *prometheus.CounterVec
	attrOps     *prometheus.CounterVec
	attrLatency *prometheus.HistogramVec
}

// New returns an unregistered Collector.
func New() *Collector {
	return &Collector{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uaproxy",
				Subsystem: "resolver",
				Name:      "lookups_total",
				Help:      "Member lookups by cache result.",
			},
			[]string{"result"},
		),
		browses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uaproxy",
				Subsystem: "resolver",
				Name:      "browses_total",
				Help:      "Browse calls issued by member resolution.",
			},
			[]string{"result"},
		),
		attrOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "uaproxy",
				Subsystem: "attribute",
				Name:      "ops_total",
				Help:      "Attribute reads and writes by status.",
			},
			[]string{"op", "result"},
		),
		attrLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "uaproxy",
				Subsystem: "attribute",
				Name:      "op_duration_seconds",
				Help:      "Attribute read and write duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// Register registers every collector with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.lookups, c.browses, c.attrOps, c.attrLatency} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// ResolverLookup counts a member lookup served from the cache (hit) or
// requiring a browse (miss).
func (c *Collector) ResolverLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.lookups.WithLabelValues(result).Inc()
}

// ResolverBrowse counts a completed browse by outcome.
func (c *Collector) ResolverBrowse(result string) {
	if c == nil {
		return
	}
	c.browses.WithLabelValues(result).Inc()
}

// AttributeOp records one attribute read or write. The result label is the
// status name of err, Good on success.
func (c *Collector) AttributeOp(op string, err error, d time.Duration) {
	if c == nil {
		return
	}
	c.attrOps.WithLabelValues(op, ua.Code(err).String()).Inc()
	c.attrLatency.WithLabelValues(op).Observe(d.Seconds())
}
