package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dropship"

// Metrics собирает счётчики и гистограммы сервиса. Реализует usecase.RunObserver и supplier.RequestObserver.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runItems         *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	fulfillments     *prometheus.CounterVec
	supplierRequests *prometheus.CounterVec
	supplierLatency  *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New регистрирует метрики в собственном реестре вместе со стандартными коллекторами процесса.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Import and sync runs by outcome.",
		}, []string{"operation", "provider", "outcome"}),
		runItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_items_total",
			Help:      "Items processed by runs, split into processed and failed.",
		}, []string{"operation", "provider", "result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of import and sync runs.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"operation", "provider"}),
		fulfillments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfillments_total",
			Help:      "Order forwarding attempts by status.",
		}, []string{"provider", "status"}),
		supplierRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supplier_requests_total",
			Help:      "Requests to supplier APIs by status class.",
		}, []string{"provider", "operation", "status"}),
		supplierLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "supplier_request_duration_seconds",
			Help:      "Latency of supplier API requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		}, []string{"provider", "operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runsTotal,
		m.runItems,
		m.runDuration,
		m.fulfillments,
		m.supplierRequests,
		m.supplierLatency,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) ObserveRun(op domain.SyncOperation, provider domain.Provider, outcome domain.SyncOutcome, processed, failed int, elapsed time.Duration) {
	m.runsTotal.WithLabelValues(string(op), provider.String(), string(outcome)).Inc()
	m.runItems.WithLabelValues(string(op), provider.String(), "processed").Add(float64(processed))
	m.runItems.WithLabelValues(string(op), provider.String(), "failed").Add(float64(failed))
	m.runDuration.WithLabelValues(string(op), provider.String()).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveFulfillment(provider domain.Provider, status domain.FulfillmentStatus) {
	m.fulfillments.WithLabelValues(provider.String(), string(status)).Inc()
}

// ObserveSupplierRequest: status = 0 значит, что ответа не было.
func (m *Metrics) ObserveSupplierRequest(provider domain.Provider, operation string, status int, elapsed time.Duration) {
	m.supplierRequests.WithLabelValues(provider.String(), operation, classifyStatus(status)).Inc()
	m.supplierLatency.WithLabelValues(provider.String(), operation).Observe(elapsed.Seconds())
}

// RecordRequest записывает метрики для HTTP-запроса.
func (m *Metrics) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// Handler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// classifyStatus классифицирует HTTP-статус код в строку.
func classifyStatus(statusCode int) string {
	switch {
	case statusCode == 0:
		return "error"
	case statusCode < 300:
		return "2xx"
	case statusCode < 400:
		return "3xx"
	case statusCode < 500:
		return "4xx"
	case statusCode < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
