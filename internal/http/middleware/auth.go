// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's session from a bearer session token. The
// token is issued by the session endpoint after the identity bridge resolved
// the user's LINE profile; every cellar and assistant route requires it.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cellar-backend/internal/identity"
	"github.com/tbourn/go-cellar-backend/internal/session"
)

const (
	// CtxKeyUserID holds the resolved user id; KeyByUserOrIP and the access
	// logger read it.
	CtxKeyUserID = "userID"
	// CtxKeySession holds the *session.Session of the request.
	CtxKeySession = "session"
)

// RequireSession authenticates "Authorization: Bearer <session token>" and
// attaches the live session. Sessions unknown to this process (for example
// after a restart) are re-created from the token claims with an empty
// transcript; tokens of signed-out sessions are refused.
func RequireSession(iss *identity.SessionIssuer, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c.GetHeader("Authorization"))
		if tok == "" {
			abortJSON(c, http.StatusUnauthorized, "login_required", "sign in with LINE to continue")
			return
		}
		claims, err := iss.Parse(tok)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "login_required", "session expired, sign in again")
			return
		}
		s, err := sessions.Attach(claims.ID, claims.Profile())
		switch {
		case errors.Is(err, session.ErrRevoked), errors.Is(err, session.ErrClosed):
			abortJSON(c, http.StatusUnauthorized, "login_required", "session ended, sign in again")
			return
		case errors.Is(err, session.ErrUserMismatch), errors.Is(err, session.ErrNoProfile):
			abortJSON(c, http.StatusUnauthorized, "login_required", "invalid session")
			return
		case err != nil:
			abortJSON(c, http.StatusInternalServerError, "internal_error", "session unavailable")
			return
		}
		c.Set(CtxKeySession, s)
		bindSession(c, s.ID(), s.UserID())
		c.Next()
	}
}

// SessionFrom returns the session attached by RequireSession, or nil.
func SessionFrom(c *gin.Context) *session.Session {
	if v, ok := c.Get(CtxKeySession); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

func bearer(h string) string {
	const prefix = "bearer "
	h = strings.TrimSpace(h)
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// abortJSON writes the standard error envelope. Handlers use their own
// helper; middleware cannot import that package.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
