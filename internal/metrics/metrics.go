// Package metrics exposes Prometheus collectors for the HTTP surface and the
// reports data-access layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the collectors and the registry they are registered with.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	Registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeConnections   prometheus.Gauge
	reportsCreatedTotal *prometheus.CounterVec
	uploadsTotal        *prometheus.CounterVec
	realtimeEventsTotal *prometheus.CounterVec
}

// NewRecorder registers all collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "livefeed_active_connections",
				Help: "Number of connected realtime websocket clients",
			},
		),
		reportsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_created_total",
				Help: "Reports created, by kind and result",
			},
			[]string{"kind", "result"},
		),
		uploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evidence_uploads_total",
				Help: "Evidence file uploads, by result",
			},
			[]string{"result"}, // "success", "failed"
		),
		realtimeEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "realtime_events_total",
				Help: "Realtime change events applied to sessions",
			},
			[]string{"table", "type"},
		),
	}

	r.Registry.MustRegister(
		r.httpRequestsTotal,
		r.httpRequestDuration,
		r.activeConnections,
		r.reportsCreatedTotal,
		r.uploadsTotal,
		r.realtimeEventsTotal,
	)
	return r
}

// RecordHTTPRequest records metrics for an HTTP request
func (r *Recorder) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	status := strconv.Itoa(statusCode)
	r.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	r.httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func (r *Recorder) IncActiveConnections() {
	if r == nil {
		return
	}
	r.activeConnections.Inc()
}

func (r *Recorder) DecActiveConnections() {
	if r == nil {
		return
	}
	r.activeConnections.Dec()
}

// RecordReportCreated counts a create call for kind "grievance" or "suspicious".
func (r *Recorder) RecordReportCreated(kind string, err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	r.reportsCreatedTotal.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) RecordUpload(err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	r.uploadsTotal.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordRealtimeEvent(table, changeType string) {
	if r == nil {
		return
	}
	r.realtimeEventsTotal.WithLabelValues(table, changeType).Inc()
}
