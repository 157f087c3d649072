package rubble

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	kindLabel   = "kind"
	reasonLabel = "reason"
)

// Metrics exports simulation counters on a private registry so several
// simulations can live in one process. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	fractures       prometheus.Counter
	shardsEmitted   prometheus.Counter
	shardsDiscarded prometheus.Counter
	spawned         *prometheus.CounterVec
	retired         *prometheus.CounterVec
	live            prometheus.Gauge
	activeBlocks    prometheus.Gauge
	tickSeconds     prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fractures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fractures_total",
			Help:      "The total number of destroyed blocks.",
		}),
		shardsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shards_emitted_total",
			Help:      "The total number of shard fragments spawned.",
		}),
		shardsDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shards_discarded_total",
			Help:      "The total number of fracture cells dropped as empty or too small.",
		}),
		spawned: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_spawned_total",
			Help:      "The total number of fragments spawned.",
		}, []string{kindLabel}),
		retired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_retired_total",
			Help:      "The total number of fragments retired.",
		}, []string{reasonLabel}),
		live: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fragments_live",
			Help:      "The number of live fragments.",
		}),
		activeBlocks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "blocks_active",
			Help:      "The number of active blocks.",
		}),
		tickSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "physics_step_seconds",
			Help:      "Wall time spent integrating fragments per tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) instrumentFracture(ev FractureEvent) {
	if m == nil {
		return
	}
	m.fractures.Inc()
	m.shardsEmitted.Add(float64(ev.Shards))
	m.shardsDiscarded.Add(float64(ev.Discarded))
	m.spawned.With(prometheus.Labels{kindLabel: KindShard.String()}).Add(float64(ev.Shards))
	m.spawned.With(prometheus.Labels{kindLabel: KindChip.String()}).Add(float64(ev.Chips))
	m.spawned.With(prometheus.Labels{kindLabel: KindDust.String()}).Add(float64(ev.Dust))
}

func (m *Metrics) instrumentRetired(reason RetireReason) {
	if m == nil || reason == RetireNone {
		return
	}
	m.retired.With(prometheus.Labels{reasonLabel: reason.String()}).Inc()
}

func (m *Metrics) instrumentLive(fragments, blocks int) {
	if m == nil {
		return
	}
	m.live.Set(float64(fragments))
	m.activeBlocks.Set(float64(blocks))
}

func (m *Metrics) instrumentStep(seconds float64) {
	if m == nil {
		return
	}
	m.tickSeconds.Observe(seconds)
}

// MetricsModule installs a Metrics resource. When disabled the resource is
// still present but never exported.
type MetricsModule struct {
	Namespace string
}

func (mod MetricsModule) Install(app *App, cmd *Commands) {
	ns := mod.Namespace
	if ns == "" {
		ns = "rubble"
	}
	cmd.AddResources(NewMetrics(ns))
}
