// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file carries the request correlation id, the request-scoped zerolog
// logger and the access log line. The scoped logger starts with the request
// id and route; RequireSession later binds the caller's user_id and
// session_id to it, so every line a handler writes through LoggerFrom can be
// traced back to one LINE login.
//
// Order on the engine: RequestID, then Logger or RedactingLogger, then
// Recovery.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	// CtxKeySessionID holds the id of the session bound by RequireSession.
	CtxKeySessionID = "sessionID"

	maxRequestIDLength = 128
	maxQueryLogLength  = 512
)

// RequestID reuses a client supplied X-Request-ID when it is short and
// printable, and otherwise mints a UUIDv4. The id is echoed on the response
// and lands in every error envelope.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLength {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Logger is the development access logger: query strings and headers are
// logged as received. Production uses RedactingLogger.
func Logger() gin.HandlerFunc {
	return accessLogger(nil)
}

// accessLogger attaches the scoped logger and writes one line per request.
// With a Redactor the line also carries the scrubbed request headers.
func accessLogger(red *Redactor) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("route", routeOf(c)).
			Logger()
		c.Set(loggerKey, &l)

		query, errs := c.Request.URL.RawQuery, ""
		var hdrs map[string]string
		if red != nil {
			query = red.Query(query)
			hdrs = red.Headers(c.Request.Header)
		}

		c.Next()

		status := c.Writer.Status()
		uid, _ := c.Get(CtxKeyUserID)
		sid, _ := c.Get(CtxKeySessionID)

		ev := levelFor(&l, status, len(c.Errors) > 0).
			Str("user_id", asString(uid)).
			Str("session_id", asString(sid)).
			Str("remote_ip", c.ClientIP()).
			Str("query", truncate(query, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Bool("stream", isEventStream(c))
		if hdrs != nil {
			ev = ev.Interface("headers", hdrs)
		}
		if len(c.Errors) > 0 {
			errs = c.Errors.String()
			if red != nil {
				errs = red.String(errs)
			}
			ev = ev.Str("errors", errs)
		}
		ev.Msg("request")
	}
}

// levelFor picks the access log level. The confirmation dialogs (409 for the
// last bottle, 428 for removal) are ordinary flow and stay at info.
func levelFor(l *zerolog.Logger, status int, hasErrors bool) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error()
	case status == http.StatusConflict, status == http.StatusPreconditionRequired:
		return l.Info()
	case status >= http.StatusBadRequest, hasErrors:
		return l.Warn()
	default:
		return l.Info()
	}
}

// bindSession adds the caller's identity to the scoped logger and the
// context, for handlers and for the access line.
func bindSession(c *gin.Context, sessionID, userID string) {
	c.Set(CtxKeySessionID, sessionID)
	c.Set(CtxKeyUserID, userID)
	l := LoggerFrom(c).With().
		Str("session_id", sessionID).
		Str("user_id", userID).
		Logger()
	c.Set(loggerKey, &l)
}

// Recovery turns a panic into a 500 error envelope and logs the stack with
// the request id. A stream that already started only gets its status set.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// none was attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

func isEventStream(c *gin.Context) bool {
	return strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream")
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate cuts s to max bytes plus an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
