package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	resp "users-api/internal/transport/http/response"
)

const unmatchedRoute = "unmatched"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests by route template, final status and failure kind.",
		},
		[]string{"route", "method", "status", "outcome"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by route template.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func init() { prometheus.MustRegister(requestsTotal, requestDuration) }

// outcome is "ok" below 400, otherwise the failure kind the status maps to.
// Requests that matched no route count as route_not_found.
func outcome(route string, status int) string {
	if status < 400 {
		return "ok"
	}
	if route == unmatchedRoute && status == 404 {
		return resp.KindRouteNotFound.String()
	}
	if k, ok := resp.KindOf(status); ok {
		return k.String()
	}
	return "client_error"
}

// Metrics sits outside ErrorHook so it sees the normalized status. Unmatched
// requests share one route label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(status), outcome(route, status)).Inc()
		requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func MetricsHandler() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
