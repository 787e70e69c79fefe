package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics is registered on a per-server registry so several servers (and tests) can coexist.
type metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	projections     *prometheus.CounterVec
	projectionRows  prometheus.Histogram
	loadDuration    *prometheus.HistogramVec
	loadErrors      *prometheus.CounterVec
	refreshTotal    *prometheus.CounterVec
	lastRefresh     prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "projector_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "projector_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}, []string{"route"}),
		projections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "projector_projections_total",
			Help: "Projections run by result",
		}, []string{"result"}),
		projectionRows: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "projector_projection_rows",
			Help:    "Rows produced per projection",
			Buckets: []float64{1, 10, 25, 50, 75, 100},
		}),
		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "projector_refdata_load_duration_seconds",
			Help:    "Reference table read and parse time",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"file"}),
		loadErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "projector_refdata_load_errors_total",
			Help: "Reference table load failures by file",
		}, []string{"file"}),
		refreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "projector_refdata_refresh_total",
			Help: "Scheduled reference data refreshes by result",
		}, []string{"result"}),
		lastRefresh: factory.NewGauge(prometheus.GaugeOpts{
			Name: "projector_refdata_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful reference data refresh",
		}),
	}
}

func (m *metrics) observeRequest(route string, code int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *metrics) observeLoad(file string, elapsed time.Duration, err error) {
	m.loadDuration.WithLabelValues(file).Observe(elapsed.Seconds())
	if err != nil {
		m.loadErrors.WithLabelValues(file).Inc()
	}
}

func (m *metrics) observeRefresh(err error) {
	if err != nil {
		m.refreshTotal.WithLabelValues("error").Inc()
		return
	}
	m.refreshTotal.WithLabelValues("ok").Inc()
	m.lastRefresh.SetToCurrentTime()
}
