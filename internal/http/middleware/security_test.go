package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const streamPath = "/api/v1/cellar/stream"

func securedRouter(opt SecurityOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(opt))
	r.GET("/api/v1/wines", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"wines": []string{}}) })
	r.GET(streamPath, func(c *gin.Context) { c.SSEvent("snapshot", "[]") })
	return r
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := securedRouter(SecurityOptions{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wines", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	if h.Get("Permissions-Policy") != "" || h.Get("Cache-Control") != "" || h.Get("Strict-Transport-Security") != "" {
		t.Fatalf("optional headers set without options: %#v", h)
	}
	if got := h.Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Retry-After" {
		t.Fatalf("expose headers = %q", got)
	}
}

func TestSecurityHeaders_CellarListIsNotStored(t *testing.T) {
	r := securedRouter(SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
		StreamPaths:  []string{streamPath},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wines", nil)
	req.TLS = &tls.ConnectionState{}
	r.ServeHTTP(w, req)

	h := w.Header()
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Fatalf("cache headers: %#v", h)
	}
	if h.Get("X-Accel-Buffering") != "" {
		t.Fatalf("buffering header on a JSON route")
	}
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers: %#v", h)
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}
}

func TestSecurityHeaders_StreamIsNotBuffered(t *testing.T) {
	r := securedRouter(SecurityOptions{NoStore: true, StreamPaths: []string{streamPath}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, streamPath, nil))

	h := w.Header()
	if h.Get("Cache-Control") != "no-cache" || h.Get("X-Accel-Buffering") != "no" {
		t.Fatalf("stream headers: %#v", h)
	}
	if h.Get("Pragma") != "" || h.Get("Expires") != "" {
		t.Fatalf("no-store headers leaked onto the stream: %#v", h)
	}
}

func TestSecurityHeaders_HSTSBehindProxy(t *testing.T) {
	r := securedRouter(SecurityOptions{EnableHSTS: true})

	cases := []struct {
		proto string
		want  string
	}{
		{"", ""},
		{"http", ""},
		{"HTTPS", "max-age=15552000; includeSubDomains; preload"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wines", nil)
		if tc.proto != "" {
			req.Header.Set("X-Forwarded-Proto", tc.proto)
		}
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Strict-Transport-Security"); got != tc.want {
			t.Fatalf("proto %q: HSTS = %q; want %q", tc.proto, got, tc.want)
		}
	}
}

func TestExposeHeaders(t *testing.T) {
	cases := []struct {
		name, cur, want string
	}{
		{"empty", "", "X-Request-ID, Retry-After"},
		{"keeps cors list", "X-Cellar-Version", "X-Cellar-Version, X-Request-ID, Retry-After"},
		{"no duplicates", "x-request-id, Retry-After", "x-request-id, Retry-After"},
		{"partial", "Retry-After", "Retry-After, X-Request-ID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := http.Header{}
			if tc.cur != "" {
				h.Set("Access-Control-Expose-Headers", tc.cur)
			}
			exposeHeaders(h, exposedHeaders...)
			if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
				t.Fatalf("got %q; want %q", got, tc.want)
			}
		})
	}
}

func TestIsHTTPS(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/api/v1/wines", nil)
	if isHTTPS(plain) {
		t.Fatalf("plain HTTP reported as https")
	}
	direct := httptest.NewRequest(http.MethodGet, "/api/v1/wines", nil)
	direct.TLS = &tls.ConnectionState{}
	if !isHTTPS(direct) {
		t.Fatalf("TLS request not https")
	}
	proxied := httptest.NewRequest(http.MethodGet, "/api/v1/wines", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	if !isHTTPS(proxied) {
		t.Fatalf("forwarded https not recognised")
	}
}
