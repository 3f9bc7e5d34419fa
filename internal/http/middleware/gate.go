package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Unavailable answers every request with 503 and the given code and
// message while err is non-nil. A nil err installs a pass-through.
//
// The router uses it to show the "setup required" state when the identity
// bridge could not be configured, and to refuse cellar routes when the
// store failed to open.
func Unavailable(err error, code, msg string) gin.HandlerFunc {
	if err == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		abortJSON(c, http.StatusServiceUnavailable, code, msg)
	}
}
