package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"homedash/internal/model"
	"homedash/internal/store"
)

const (
	metricPrefix = "homedash_"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics owns a private prometheus registry so several instances can
// coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	actions      *prometheus.CounterVec
}

// New registers HTTP and action metrics plus table gauges backed by s.
func New(s store.Store, log *zap.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "actions_total",
				Help: "Dashboard actions by name and result",
			},
			[]string{"action", "result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatency,
		m.actions,
	)

	if s != nil {
		m.registry.MustRegister(
			countGauge("devices", "Registered devices", log, func(ctx context.Context) (int64, error) {
				return s.CountDevices(ctx, "")
			}),
			countGauge("devices_on", "Devices currently switched on", log, func(ctx context.Context) (int64, error) {
				return s.CountDevices(ctx, model.StatusOn)
			}),
			countGauge("alerts_unread", "Alerts not yet acknowledged", log, s.CountUnreadAlerts),
		)
	}
	return m
}

func countGauge(name, help string, log *zap.Logger, count func(context.Context) (int64, error)) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: metricPrefix + name, Help: help},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := count(ctx)
			if err != nil {
				log.Warn("metrics query failed", zap.String("metric", name), zap.Error(err))
				return 0
			}
			return float64(n)
		},
	)
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAction counts a dashboard action such as "toggle_device".
func (m *Metrics) RecordAction(action string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.actions.WithLabelValues(action, result).Inc()
}
