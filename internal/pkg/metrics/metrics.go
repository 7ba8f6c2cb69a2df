// Package metrics registers the Prometheus collectors of the web server and
// serves them through fiber.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "parkpulse"

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

func gauge(subsystem, name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

var (
	httpRequests = counter("http", "requests_total",
		"HTTP requests by route pattern and status", "method", "route", "status")
	httpLatency = histogram("http", "request_duration_seconds",
		"HTTP request latency", []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}, "method", "route")
	httpBodyBytes = histogram("http", "response_size_bytes",
		"HTTP response body size", prometheus.ExponentialBuckets(100, 10, 6), "method", "route")

	// UpstreamRequests counts wait-time API calls by endpoint and status code.
	UpstreamRequests = counter("upstream", "requests_total",
		"Requests sent to the wait-time API", "endpoint", "status")
	UpstreamDuration = histogram("upstream", "request_duration_seconds",
		"Latency of wait-time API requests", []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, "endpoint")

	// NearbyResults counts nearby lookups by result type and by whether the
	// location came from coordinates or the client IP.
	NearbyResults  = counter("nearby", "results_total", "Nearby lookups by resolved type", "type", "source")
	FavoritesSyncs = counter("favorites", "syncs_total", "Favorites sync requests by outcome", "result")

	ActiveWebSockets = gauge("ws", "active_connections", "Open favorites feed connections")

	CacheHits   = counter("cache", "hits_total", "Valkey cache hits", "operation")
	CacheMisses = counter("cache", "misses_total", "Valkey cache misses", "operation")

	dbConnsOpen     = gauge("db", "pool_conns_open", "Connections open in the favorites pool")
	dbConnsAcquired = gauge("db", "pool_conns_acquired", "Connections acquired from the favorites pool")
	dbConnsIdle     = gauge("db", "pool_conns_idle", "Idle connections in the favorites pool")
)

// Middleware records request count, latency and body size per route pattern.
// Patterns keep park slugs out of the label set.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		method := c.Method()
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Response().StatusCode())).Inc()
		httpLatency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		httpBodyBytes.WithLabelValues(method, route).Observe(float64(len(c.Response().Body())))
		return err
	}
}

// Handler serves the default registry.
func Handler() fiber.Handler {
	serve := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		serve(c.Context())
		return nil
	}
}

// PoolStat is the subset of *pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics copies a pool snapshot into the gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	dbConnsAcquired.Set(float64(s.AcquiredConns()))
	dbConnsIdle.Set(float64(s.IdleConns()))
	dbConnsOpen.Set(float64(s.TotalConns()))
}
