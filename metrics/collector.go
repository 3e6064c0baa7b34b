package metrics

import (
	"reflect"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/philipp01105/fanlog/handler"
	"github.com/philipp01105/fanlog/logger"
)

const namespace = "fanlog"

var (
	loggerDroppedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "logger", "dropped_total"),
		"Records a logger dropped because its queue was full or closed.",
		[]string{"logger"}, nil)
	loggerLevelDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "logger", "level"),
		"Current level threshold of a logger, as its numeric value.",
		[]string{"logger"}, nil)
	handlerProcessedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "handler", "processed_total"),
		"Records a handler delivered.",
		[]string{"handler"}, nil)
	handlerDroppedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "handler", "dropped_total"),
		"Records a handler dropped under its overflow policy.",
		[]string{"handler"}, nil)
	handlerBlockedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "handler", "blocked_total"),
		"Times a producer waited for room in a handler queue.",
		[]string{"handler"}, nil)
	handlerErrorsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "handler", "errors_total"),
		"Records a handler failed to deliver.",
		[]string{"handler"}, nil)
)

// Collector reads counters at scrape time. Handlers are discovered through
// the loggers of the registry, including the children of MultiHandlers;
// handlers attached to no logger can be added with Watch. Handlers sharing
// a name are reported as one series.
type Collector struct {
	reg *logger.Registry

	mu    sync.Mutex
	extra []handler.StatsProvider
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector over reg. reg may be nil when only
// watched handlers are of interest.
func NewCollector(reg *logger.Registry) *Collector {
	return &Collector{reg: reg}
}

// Watch adds handlers to report in addition to those found in the registry
func (c *Collector) Watch(hs ...handler.StatsProvider) {
	c.mu.Lock()
	c.extra = append(c.extra, hs...)
	c.mu.Unlock()
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- loggerDroppedDesc
	ch <- loggerLevelDesc
	ch <- handlerProcessedDesc
	ch <- handlerDroppedDesc
	ch <- handlerBlockedDesc
	ch <- handlerErrorsDesc
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var providers []handler.StatsProvider
	seen := make(map[any]bool)
	var visit func(h handler.Handler)
	visit = func(h handler.Handler) {
		if reflect.TypeOf(h).Comparable() {
			if seen[h] {
				return
			}
			seen[h] = true
		}
		if sp, ok := h.(handler.StatsProvider); ok {
			providers = append(providers, sp)
		}
		if m, ok := h.(*handler.MultiHandler); ok {
			for _, child := range m.Handlers() {
				visit(child)
			}
		}
	}

	if c.reg != nil {
		for _, l := range c.reg.Loggers() {
			ch <- prometheus.MustNewConstMetric(loggerDroppedDesc, prometheus.CounterValue, float64(l.Dropped()), l.Name())
			ch <- prometheus.MustNewConstMetric(loggerLevelDesc, prometheus.GaugeValue, float64(l.Level().Number()), l.Name())
			for _, h := range l.Handlers() {
				visit(h)
			}
		}
	}
	c.mu.Lock()
	for _, sp := range c.extra {
		if h, ok := sp.(handler.Handler); ok {
			visit(h)
		} else {
			providers = append(providers, sp)
		}
	}
	c.mu.Unlock()

	var names []string
	totals := make(map[string]handler.Snapshot)
	for _, sp := range providers {
		name := sp.Name()
		s := sp.Stats()
		t, ok := totals[name]
		if !ok {
			names = append(names, name)
		}
		t.ProcessedTotal += s.ProcessedTotal
		t.DroppedTotal += s.DroppedTotal
		t.BlockedTotal += s.BlockedTotal
		t.ErrorsTotal += s.ErrorsTotal
		totals[name] = t
	}
	for _, name := range names {
		t := totals[name]
		ch <- prometheus.MustNewConstMetric(handlerProcessedDesc, prometheus.CounterValue, float64(t.ProcessedTotal), name)
		ch <- prometheus.MustNewConstMetric(handlerDroppedDesc, prometheus.CounterValue, float64(t.DroppedTotal), name)
		ch <- prometheus.MustNewConstMetric(handlerBlockedDesc, prometheus.CounterValue, float64(t.BlockedTotal), name)
		ch <- prometheus.MustNewConstMetric(handlerErrorsDesc, prometheus.CounterValue, float64(t.ErrorsTotal), name)
	}
}
