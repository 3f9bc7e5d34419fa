package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests that hit no route; random URLs from
// scanners must not grow the label set.
const unmatchedRoute = "unmatched"

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	// Request/response routes only; event streams go to httpStreamDur.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of request/response HTTP calls.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	httpStreamDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_stream_duration_seconds",
			Help:    "How long server-sent event streams stayed open.",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 4 * 3600, 12 * 3600},
		},
		[]string{"route"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "HTTP requests being served, by kind (request or stream).",
		},
		[]string{"kind"},
	)

	// Label photos dominate the upper buckets.
	httpReqSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "Declared size of HTTP request bodies.",
			Buckets: []float64{256, 1 << 10, 4 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 8 << 20},
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpStreamDur, httpInflight, httpReqSize)
}

// Metrics records Prometheus metrics for every request. Routes are labelled
// by their pattern (/api/v1/wines/:id/adjust), never the raw URL. The live
// cellar stream is counted in the "stream" inflight series and its lifetime
// is observed separately so it does not skew request latency.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		if n := c.Request.ContentLength; n > 0 {
			httpReqSize.WithLabelValues(method, route).Observe(float64(n))
		}

		start := time.Now()
		inflight := httpInflight.WithLabelValues("request")
		inflight.Inc()

		c.Next()

		inflight.Dec()
		dur := time.Since(start).Seconds()
		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		if isEventStream(c) {
			httpStreamDur.WithLabelValues(route).Observe(dur)
			return
		}
		httpLat.WithLabelValues(method, route).Observe(dur)
	}
}

// TrackStream moves the current request from the "request" to the "stream"
// inflight series until the returned func is called. Stream handlers call it
// once the first event is written.
func TrackStream() (done func()) {
	httpInflight.WithLabelValues("request").Dec()
	httpInflight.WithLabelValues("stream").Inc()
	return func() {
		httpInflight.WithLabelValues("stream").Dec()
		httpInflight.WithLabelValues("request").Inc()
	}
}
