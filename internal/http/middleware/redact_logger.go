package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedactOptions extends the scrubbing done by RedactingLogger.
type RedactOptions struct {
	// MaskHeaders are replaced with "[REDACTED]" in addition to
	// Authorization, Cookie, Set-Cookie and X-Goog-Api-Key.
	MaskHeaders []string
	// MaskParams are query parameters whose values are always masked, in
	// addition to access_token, id_token, token and key.
	MaskParams []string
}

const redacted = "[REDACTED]"

var (
	// Session tokens and LINE ID tokens are compact JWS strings.
	jwtRE = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]*`)
	// LINE user ids: "U" followed by 32 hex digits.
	lineUserRE = regexp.MustCompile(`\bU[0-9a-f]{32}\b`)
	emailRE    = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
)

// Redactor scrubs credentials and LINE identifiers out of strings bound for
// the access log. Wine ids (UUIDs) are left readable.
type Redactor struct {
	headers map[string]struct{}
	params  map[string]struct{}
}

// NewRedactor merges opts with the built-in header and parameter lists.
func NewRedactor(opts RedactOptions) *Redactor {
	r := &Redactor{
		headers: lowerSet("authorization", "cookie", "set-cookie", "x-goog-api-key"),
		params:  lowerSet("access_token", "id_token", "token", "key"),
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.headers[h] = struct{}{}
		}
	}
	for _, p := range opts.MaskParams {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			r.params[p] = struct{}{}
		}
	}
	return r
}

// String replaces JWTs, LINE user ids and email addresses in s.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	s = jwtRE.ReplaceAllString(s, "[REDACTED:token]")
	s = lineUserRE.ReplaceAllString(s, "[REDACTED:line_user]")
	return emailRE.ReplaceAllString(s, "[REDACTED:email]")
}

// Query masks sensitive parameters wholesale and scrubs the rest. A query
// that does not parse is scrubbed as a plain string.
func (r *Redactor) Query(raw string) string {
	if raw == "" {
		return raw
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return r.String(raw)
	}
	for k, vv := range vals {
		_, mask := r.params[strings.ToLower(k)]
		for i, v := range vv {
			if mask {
				vv[i] = redacted
			} else {
				vv[i] = r.String(v)
			}
		}
	}
	return vals.Encode()
}

// Headers returns a single-valued copy of h with masked and scrubbed values.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.headers[strings.ToLower(k)]; ok {
			out[k] = redacted
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger is the production access logger. It behaves like Logger
// but masks credentials in headers and the query string, and scrubs session
// JWTs, LINE access tokens and LINE user ids wherever they appear. Bodies
// are never logged.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	return accessLogger(NewRedactor(opts))
}

func lowerSet(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
