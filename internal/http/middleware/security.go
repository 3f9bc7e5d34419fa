package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// exposedHeaders are readable by the LIFF browser client across origins.
var exposedHeaders = []string{requestIDHeader, "Retry-After"}

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS sends Strict-Transport-Security on HTTPS requests only.
	EnableHSTS bool
	// HSTSMaxAge defaults to 180 days.
	HSTSMaxAge time.Duration
	// NoStore marks every response uncacheable; cellar data is per user.
	NoStore bool
	// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
	EnablePolicy bool
	// StreamPaths are full routes that answer with server-sent events.
	// They get proxy-buffering off and no-cache instead of no-store.
	StreamPaths []string
}

// SecurityHeaders hardens API responses. The API serves JSON and an event
// stream only, so no Content-Security-Policy is set here.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int64(opt.HSTSMaxAge / time.Second)
	if maxAge <= 0 {
		maxAge = int64(180 * 24 * time.Hour / time.Second)
	}
	hsts := "max-age=" + strconv.FormatInt(maxAge, 10) + "; includeSubDomains; preload"

	streams := make(map[string]struct{}, len(opt.StreamPaths))
	for _, p := range opt.StreamPaths {
		streams[p] = struct{}{}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		_, stream := streams[c.FullPath()]
		switch {
		case stream:
			// nginx and Cloud Run proxies otherwise hold events back
			h.Set("Cache-Control", "no-cache")
			h.Set("X-Accel-Buffering", "no")
		case opt.NoStore:
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		exposeHeaders(h, exposedHeaders...)
		c.Next()
	}
}

// exposeHeaders appends names to Access-Control-Expose-Headers, keeping
// whatever the CORS layer already listed.
func exposeHeaders(h http.Header, names ...string) {
	const hdr = "Access-Control-Expose-Headers"
	cur := h.Get(hdr)
	have := map[string]bool{}
	for _, v := range strings.Split(cur, ",") {
		if v = strings.TrimSpace(v); v != "" {
			have[strings.ToLower(v)] = true
		}
	}
	for _, n := range names {
		if have[strings.ToLower(n)] {
			continue
		}
		if cur == "" {
			cur = n
		} else {
			cur += ", " + n
		}
		have[strings.ToLower(n)] = true
	}
	if cur != "" {
		h.Set(hdr, cur)
	}
}

// isHTTPS reports TLS on the connection or X-Forwarded-Proto: https from the
// fronting proxy.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
