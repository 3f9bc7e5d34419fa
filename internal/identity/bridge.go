// Package identity adapts the LINE Front-end Framework (LIFF) login flow to
// the server. A browser client obtains a LINE access token through LIFF and
// hands it to the server; the Bridge verifies the token against the LINE
// platform, checks it was issued for the configured channel, and fetches
// the user's profile.
//
// Failures are reported as *Error with a Kind so the HTTP layer can choose
// between the setup screen, a login redirect, and a retryable error.
// Provider failures are classified by their error code and HTTP status,
// never by message text.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tbourn/go-cellar-backend/internal/config"
	"github.com/tbourn/go-cellar-backend/internal/domain"
)

const liffLoginBase = "https://liff.line.me/"

var (
	liffIDPattern = regexp.MustCompile(`^([0-9]+)-([A-Za-z0-9]+)$`)

	placeholderIDs = map[string]bool{
		"your_liff_id": true,
		"your-liff-id": true,
		"<liff-id>":    true,
		"<liff_id>":    true,
		"changeme":     true,
		"liff_id":      true,
	}
)

// Option customizes a Bridge.
type Option func(*Bridge)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bridge) {
		if c != nil {
			b.http = c
		}
	}
}

// Bridge talks to the LINE platform on behalf of the server.
type Bridge struct {
	liffID    string
	channelID string
	apiBase   string
	http      *http.Client
}

// NewBridge validates the LIFF configuration. An empty or placeholder id,
// or one that is not of the form <channelId>-<suffix>, yields a KindSetup
// error and no bridge.
func NewBridge(cfg config.IdentityConfig, opts ...Option) (*Bridge, error) {
	id := strings.TrimSpace(cfg.LIFFID)
	switch {
	case id == "":
		return nil, setupError("LINE_LIFF_ID is not set")
	case placeholderIDs[strings.ToLower(id)]:
		return nil, setupError(fmt.Sprintf("LINE_LIFF_ID still holds the placeholder %q", id))
	}
	m := liffIDPattern.FindStringSubmatch(id)
	if m == nil {
		return nil, setupError(fmt.Sprintf("LINE_LIFF_ID %q is malformed", id))
	}

	base := strings.TrimRight(cfg.APIBaseURL, "/")
	if base == "" {
		base = "https://api.line.me"
	}
	b := &Bridge{
		liffID:    id,
		channelID: m[1],
		apiBase:   base,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// LIFFID returns the configured LIFF app id.
func (b *Bridge) LIFFID() string { return b.liffID }

// LoginURL is the interactive login page for this LIFF app.
func (b *Bridge) LoginURL() string { return liffLoginBase + b.liffID }

// verifyResponse is the body of GET /oauth2/v2.1/verify.
type verifyResponse struct {
	Scope     string `json:"scope"`
	ClientID  string `json:"client_id"`
	ExpiresIn int64  `json:"expires_in"`
}

// profileResponse is the body of GET /v2/profile.
type profileResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

// providerError covers both error shapes LINE returns.
type providerError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	Message     string `json:"message"`
}

func (p providerError) text() string {
	switch {
	case p.Description != "":
		return p.Description
	case p.Message != "":
		return p.Message
	default:
		return p.Code
	}
}

// Resolve turns a LIFF access token into a profile. An empty token means the
// client is not logged in yet.
func (b *Bridge) Resolve(ctx context.Context, accessToken string) (domain.Profile, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return domain.Profile{}, b.loginRequired("no access token", nil)
	}

	var v verifyResponse
	q := url.Values{"access_token": {accessToken}}
	if err := b.get(ctx, "/oauth2/v2.1/verify?"+q.Encode(), "", &v); err != nil {
		return domain.Profile{}, b.classify("verify access token", err)
	}
	if v.ClientID != b.channelID {
		return domain.Profile{}, connectionError(
			fmt.Sprintf("access token was issued for channel %q, not %q", v.ClientID, b.channelID),
			remediationLIFF, nil)
	}
	if v.ExpiresIn <= 0 {
		return domain.Profile{}, b.loginRequired("access token expired", nil)
	}

	var p profileResponse
	if err := b.get(ctx, "/v2/profile", accessToken, &p); err != nil {
		return domain.Profile{}, b.classify("fetch profile", err)
	}
	if p.UserID == "" {
		return domain.Profile{}, connectionError("profile response has no userId", "", nil)
	}
	return domain.Profile{UserID: p.UserID, DisplayName: p.DisplayName, PictureURL: p.PictureURL}, nil
}

// statusError is a non-2xx reply from the provider.
type statusError struct {
	path   string
	status int
	body   providerError
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.path, e.status, e.body.text())
}

func (b *Bridge) get(ctx context.Context, path, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiBase+path, nil)
	if err != nil {
		return err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		se := &statusError{path: strings.SplitN(path, "?", 2)[0], status: resp.StatusCode}
		_ = json.Unmarshal(body, &se.body)
		return se
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// classify maps a provider failure onto a Kind.
func (b *Bridge) classify(op string, err error) *Error {
	se, ok := err.(*statusError)
	if !ok {
		return connectionError(op+" failed", "Check network access to the LINE platform.", err)
	}
	switch {
	case se.body.Code == "invalid_request", se.body.Code == "invalid_token", se.status == http.StatusUnauthorized:
		return b.loginRequired(op+" rejected the token", err)
	case se.status == http.StatusNotFound:
		return connectionError("LINE channel not found", remediationLIFF, err)
	default:
		return connectionError(op+" failed: "+se.body.text(), "", err)
	}
}

func (b *Bridge) loginRequired(msg string, err error) *Error {
	return &Error{Kind: KindLoginRequired, Message: msg, LoginURL: b.LoginURL(), Err: err}
}
