package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	productsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_products_processed_total",
			Help: "Total number of processed upstream product documents.",
		},
		[]string{"outcome"},
	)
	productsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_products_rejected_total",
			Help: "Rejected product documents by reason.",
		},
		[]string{"reason"},
	)
	syncActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_sync_actions_total",
			Help: "Storefront sync actions by action and status.",
		},
		[]string{"action", "status"},
	)
	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_api_requests_total",
			Help: "Upstream API requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(productsProcessed)
	prometheus.MustRegister(productsRejected)
	prometheus.MustRegister(syncActions)
	prometheus.MustRegister(apiRequests)
	prometheus.MustRegister(httpRequestDuration)
}

// RecordProcessed записывает итог нормализации: "valid" либо "invalid".
func RecordProcessed(outcome string) {
	productsProcessed.WithLabelValues(outcome).Inc()
}

// RecordRejection записывает причину отбраковки товара (empty_title, no_images, ...).
func RecordRejection(reason string) {
	productsRejected.WithLabelValues(reason).Inc()
}

// RecordSync записывает действие синхронизации с витриной.
func RecordSync(action, status string) {
	syncActions.WithLabelValues(action, status).Inc()
}

// RecordApiRequest записывает запрос к upstream API.
func RecordApiRequest(endpoint string, statusCode int) {
	apiRequests.WithLabelValues(endpoint, classifyStatus(statusCode)).Inc()
}

// RecordHttpRequest записывает метрики входящего HTTP-запроса.
func RecordHttpRequest(method, endpoint string, statusCode int, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, endpoint, classifyStatus(statusCode)).Observe(duration.Seconds())
}

// classifyStatus классифицирует HTTP-статус код в строку.
func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "unknown"
}

// MetricsHandler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
