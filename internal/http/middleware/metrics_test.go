package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const adjustRoute = "/api/v1/wines/:id/adjust"

// streamGauge records the "stream" inflight value seen by the stream handler
// before and after TrackStream.
type streamGauge struct{ before, during float64 }

func meteredRouter(sg *streamGauge) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.POST(adjustRoute, func(c *gin.Context) {
		if c.Param("id") == "w-gone" {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quantity": 5})
	})
	r.GET(streamPath, func(c *gin.Context) {
		c.SSEvent("snapshot", "[]")
		sg.before = testutil.ToFloat64(httpInflight.WithLabelValues("stream"))
		done := TrackStream()
		sg.during = testutil.ToFloat64(httpInflight.WithLabelValues("stream"))
		done()
	})
	return r
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	r := meteredRouter(&streamGauge{})
	base200 := testutil.ToFloat64(httpReqs.WithLabelValues("POST", adjustRoute, "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("POST", adjustRoute, "404"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))

	for _, id := range []string{"w-1", "w-2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/wines/"+id+"/adjust", strings.NewReader(`{"delta":-1}`)))
		if w.Code != http.StatusOK {
			t.Fatalf("adjust %s -> %d", id, w.Code)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/wines/w-gone/adjust", strings.NewReader(`{"delta":1}`)))

	for _, p := range []string{"/wp-login.php", "/api/v1/cellars"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("POST", adjustRoute, "200")); got != base200+2 {
		t.Fatalf("adjust 200 = %v; want %v", got, base200+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("POST", adjustRoute, "404")); got != base404+1 {
		t.Fatalf("adjust 404 = %v; want %v", got, base404+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != baseMiss+2 {
		t.Fatalf("unmatched = %v; want %v", got, baseMiss+2)
	}
	if n := testutil.CollectAndCount(httpReqs, "http_requests_total"); n == 0 {
		t.Fatalf("no series collected")
	}
	if got := testutil.ToFloat64(httpInflight.WithLabelValues("request")); got != 0 {
		t.Fatalf("request inflight = %v; want 0", got)
	}
}

func TestMetrics_RequestSizeObservedForBodies(t *testing.T) {
	r := meteredRouter(&streamGauge{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/wines/w-1/adjust", strings.NewReader(`{"delta":2}`)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, streamPath, nil))

	if !httpReqSize.DeleteLabelValues("POST", adjustRoute) {
		t.Fatalf("adjust body size not observed")
	}
	if httpReqSize.DeleteLabelValues("GET", streamPath) {
		t.Fatalf("size observed for a request without a body")
	}
}

func TestMetrics_StreamsTrackedSeparately(t *testing.T) {
	var sg streamGauge
	r := meteredRouter(&sg)
	httpStreamDur.DeleteLabelValues(streamPath)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, streamPath, nil))

	if sg.before != 0 || sg.during != 1 {
		t.Fatalf("stream inflight before=%v during=%v; want 0 and 1", sg.before, sg.during)
	}
	if got := testutil.ToFloat64(httpInflight.WithLabelValues("stream")); got != 0 {
		t.Fatalf("stream inflight = %v; want 0", got)
	}
	if got := testutil.ToFloat64(httpInflight.WithLabelValues("request")); got != 0 {
		t.Fatalf("request inflight = %v; want 0", got)
	}
	if !httpStreamDur.DeleteLabelValues(streamPath) {
		t.Fatalf("stream lifetime not observed")
	}
	if httpLat.DeleteLabelValues("GET", streamPath) {
		t.Fatalf("stream observed as request latency")
	}
}
