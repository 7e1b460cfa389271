package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solar"

// Collector holds the server's Prometheus metrics on its own registry, so
// several servers (and tests) can live in one process.
type Collector struct {
	registry *prometheus.Registry

	framesTotal   prometheus.Counter
	tickDuration  prometheus.Histogram
	viewers       prometheus.Gauge
	selectsTotal  *prometheus.CounterVec
	inputsTotal   *prometheus.CounterVec
	feedResults   *prometheus.CounterVec
	cometsLoaded  prometheus.Gauge
	droppedFrames prometheus.Counter
}

func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of frame loop ticks",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent advancing and broadcasting one frame for all viewers",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05},
		}),
		viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "viewers",
			Help:      "Connected viewers",
		}),
		selectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selects_total",
			Help:      "Select gestures by outcome",
		}, []string{"outcome"}),
		inputsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_total",
			Help:      "Viewer input messages by type and result",
		}, []string{"type", "result"}),
		feedResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comet_feed_results_total",
			Help:      "Comet feed loads by source and result",
		}, []string{"source", "result"}),
		cometsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "comets_loaded",
			Help:      "Comets added to the scene by the last feed load",
		}),
		droppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Frames not delivered because a viewer's send buffer was full",
		}),
	}

	m.registry.MustRegister(
		m.framesTotal,
		m.tickDuration,
		m.viewers,
		m.selectsTotal,
		m.inputsTotal,
		m.feedResults,
		m.cometsLoaded,
		m.droppedFrames,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Collector) RecordTick(d time.Duration) {
	m.framesTotal.Inc()
	m.tickDuration.Observe(d.Seconds())
}

func (m *Collector) SetViewers(n int) {
	m.viewers.Set(float64(n))
}

func (m *Collector) RecordSelect(outcome string) {
	m.selectsTotal.WithLabelValues(outcome).Inc()
}

func (m *Collector) RecordInput(msgType, result string) {
	m.inputsTotal.WithLabelValues(msgType, result).Inc()
}

// RecordFeed counts one comet feed load; source is "cache" or "remote"
func (m *Collector) RecordFeed(source string, comets int, err error) {
	if err != nil {
		m.feedResults.WithLabelValues(source, "error").Inc()
		return
	}
	m.feedResults.WithLabelValues(source, "ok").Inc()
	m.cometsLoaded.Set(float64(comets))
}

func (m *Collector) RecordDroppedFrame() {
	m.droppedFrames.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
