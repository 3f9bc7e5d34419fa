// Package httpapi wires the HTTP transport (Gin) to the cellar services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, rate limiting and the session gate.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Degrade per dependency: a missing identity setup or an unavailable
//     store closes only the routes that need them
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-cellar-backend/internal/assistant"
	"github.com/tbourn/go-cellar-backend/internal/config"
	"github.com/tbourn/go-cellar-backend/internal/http/handlers"
	"github.com/tbourn/go-cellar-backend/internal/http/middleware"
	"github.com/tbourn/go-cellar-backend/internal/identity"
	"github.com/tbourn/go-cellar-backend/internal/services"
	"github.com/tbourn/go-cellar-backend/internal/session"
	"github.com/tbourn/go-cellar-backend/internal/store"
)

const (
	jsonBodyLimit = 1 << 20
	streamRoute   = "/cellar/stream"
	labelRoute    = "/assistant/label"
)

// Deps are the long-lived collaborators built by the serve command.
type Deps struct {
	// Store is nil when StoreErr is set.
	Store    store.Store
	StoreErr error

	// Identity is nil when SetupErr is set.
	Identity *identity.Bridge
	SetupErr error

	Issuer    *identity.SessionIssuer
	Sessions  *session.Manager
	Assistant *assistant.Gateway

	// Heartbeat overrides the stream keep-alive interval (tests).
	Heartbeat time.Duration
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the cellar API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger (pretty/dev) or RedactingLogger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Metrics
//  6. Rate limiter (per user/IP, health checks bypass)
//  7. CORS and security headers
//  8. gzip, except for the event stream
//
// Body limits, the setup gate, the session gate and the store gate are
// applied per route group.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging; production logs scrub tokens and identifiers
	if cfg.LogPretty {
		r.Use(middleware.Logger())
	} else {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-Line-Access-Token"},
		}))
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 6) Token-bucket rate limiter per user/IP
	r.Use(middleware.BypassRateLimit("/health", "/metrics"))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 7) CORS posture and security headers
	r.Use(corsMiddleware(cfg.CORS)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
		StreamPaths:  []string{cfg.APIBasePath + streamRoute},
	}))

	// 8) Compression; the SSE stream must flush event by event
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		cfg.APIBasePath + streamRoute,
		"/metrics",
	})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlerConfig(deps, cfg))

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(limitBody(jsonBodyLimit, map[string]int64{
		cfg.APIBasePath + labelRoute: cfg.Assistant.LabelMaxBytes,
	}))

	// Always reachable: tells the client whether setup is complete.
	api.GET("/bootstrap", h.Bootstrap)

	gated := api.Group("", middleware.Unavailable(deps.SetupErr, handlers.ErrCodeSetupRequired, setupMessage(deps.SetupErr)))
	gated.POST("/session", h.CreateSession)

	authed := gated.Group("", middleware.RequireSession(deps.Issuer, deps.Sessions))
	{
		authed.GET("/session", h.GetSession)
		authed.DELETE("/session", h.DeleteSession)
		authed.GET("/assistant/chat", h.GetTranscript)
		authed.POST(labelRoute, h.ScanLabel)
	}

	cellar := authed.Group("", middleware.Unavailable(deps.StoreErr, handlers.ErrCodeStoreUnavailable, storeMessage(deps.StoreErr)))
	{
		cellar.GET(streamRoute, h.StreamCellar)
		cellar.GET("/wines", h.ListWines)
		cellar.GET("/wines/search", h.SearchWines)
		cellar.GET("/dashboard", h.Dashboard)
		cellar.POST("/wines", h.CreateWine)
		cellar.PATCH("/wines/:id", h.UpdateWine)
		cellar.DELETE("/wines/:id", h.DeleteWine)
		cellar.POST("/wines/:id/adjust", h.AdjustWine)
		cellar.POST("/assistant/chat", h.Chat)
	}
}

// handlerConfig builds the services on top of deps.
func handlerConfig(deps Deps, cfg config.Config) handlers.Config {
	cellarSvc := services.NewCellarService(deps.Store)
	hc := handlers.Config{
		Cellar:         cellarSvc,
		Sommelier:      services.NewSommelierService(cellarSvc, deps.Assistant),
		SetupErr:       deps.SetupErr,
		StoreErr:       deps.StoreErr,
		Issuer:         deps.Issuer,
		Sessions:       deps.Sessions,
		StoreDriver:    cfg.Store.Driver,
		Firebase:       cfg.Store.Firebase,
		AssistantReady: deps.Assistant.Configured(),
		Heartbeat:      deps.Heartbeat,
	}
	// Keep the interface nil rather than a typed nil pointer.
	if deps.Identity != nil {
		hc.Identity = deps.Identity
	}
	return hc
}

func setupMessage(err error) string {
	var e *identity.Error
	if errors.As(err, &e) && e.Remediation != "" {
		return e.Message + ". " + e.Remediation
	}
	return "sign-in is not configured for this deployment"
}

func storeMessage(err error) string {
	if err == nil {
		return ""
	}
	return "the cellar store is unavailable: " + err.Error()
}

// corsMiddleware returns the CORS chain: allow all when no origins are
// configured, otherwise echo allowlisted origins.
func corsMiddleware(cc config.CORSConfig) []gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "Last-Event-ID"}
	methods := []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	expose := []string{"X-Request-ID", "Content-Length"}

	if len(cc.AllowedOrigins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    expose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(cc.AllowedOrigins))
	for _, o := range cc.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     cc.AllowedOrigins,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    expose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody caps the request body at maxBytes using http.MaxBytesReader.
// Routes listed in perRoute (by full route path) get their own cap.
// Requests exceeding the cap cause downstream body reads to error.
func limitBody(maxBytes int64, perRoute map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if n, ok := perRoute[c.FullPath()]; ok && n > 0 {
			limit = n
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
