// Package metrics registers the server's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journey", Name: "http_requests_total", Help: "Handled HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "journey", Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	RecordsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journey", Name: "records_created_total", Help: "Records created per kind",
	}, []string{"kind"})
	PaymentDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "journey", Name: "payment_decisions_total", Help: "Rent payment decisions",
	}, []string{"status"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "journey", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, RecordsCreated, PaymentDecisions, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

// ObserveRequest records one finished HTTP request. route is the matched
// pattern, not the raw path.
func ObserveRequest(method, route string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
