// Session and bootstrap HTTP handlers.
//
//   - GET    /bootstrap  (setup status and public client configuration)
//   - POST   /session    (resolve a LINE access token, issue a session token)
//   - GET    /session    (current profile)
//   - DELETE /session    (logout; cancels the session's live streams)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/http/middleware"
	"github.com/tbourn/go-cellar-backend/internal/identity"
)

//
// DTOs
//

// SetupStatus explains why the service cannot sign users in yet.
type SetupStatus struct {
	Kind        string `json:"kind"        example:"setup"`
	Message     string `json:"message"     example:"LINE_LIFF_ID is not set"`
	Remediation string `json:"remediation" example:"Set LINE_LIFF_ID to the LIFF app id from the LINE Developers console."`
}

// StoreStatus reports the cellar store backing this deployment.
type StoreStatus struct {
	Driver    string `json:"driver"            example:"firestore"`
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// FirebaseWebConfig is the public web configuration for browser clients.
type FirebaseWebConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}

// BootstrapResponse is everything a client needs before signing in.
type BootstrapResponse struct {
	Ready          bool               `json:"ready"`
	Setup          *SetupStatus       `json:"setup,omitempty"`
	LIFFID         string             `json:"liffId,omitempty"   example:"1650000000-AbCdEfGh"`
	LoginURL       string             `json:"loginUrl,omitempty" example:"https://liff.line.me/1650000000-AbCdEfGh"`
	Store          StoreStatus        `json:"store"`
	Firebase       *FirebaseWebConfig `json:"firebase,omitempty"`
	AssistantReady bool               `json:"assistantReady"`
}

// CreateSessionRequest carries the LINE access token obtained by the client.
type CreateSessionRequest struct {
	AccessToken string `json:"access_token" binding:"required" example:"eyJhbGciOiJIUzI1NiJ9..."`
}

// SessionResponse is returned after a successful sign-in.
type SessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Profile   domain.Profile `json:"profile"`
}

//
// Handlers
//

// Bootstrap godoc
// @ID          bootstrap
// @Summary     Setup status and client configuration
// @Description Reports whether sign-in is possible, the LIFF app id, the store in use and the public Firebase web config.
// @Tags        Session
// @Produce     json
// @Success     200  {object}  handlers.BootstrapResponse
// @Router      /bootstrap [get]
func (h *Handlers) Bootstrap(c *gin.Context) {
	resp := BootstrapResponse{
		Ready:          h.cfg.SetupErr == nil && h.cfg.Identity != nil,
		Store:          StoreStatus{Driver: h.cfg.StoreDriver, Available: h.cfg.StoreErr == nil},
		AssistantReady: h.cfg.AssistantReady,
	}
	if h.cfg.SetupErr != nil {
		st := &SetupStatus{Kind: identity.KindOf(h.cfg.SetupErr).String(), Message: h.cfg.SetupErr.Error()}
		var e *identity.Error
		if errors.As(h.cfg.SetupErr, &e) {
			st.Message, st.Remediation = e.Message, e.Remediation
		}
		resp.Setup = st
	}
	if h.cfg.Identity != nil {
		resp.LIFFID = h.cfg.Identity.LIFFID()
		resp.LoginURL = h.cfg.Identity.LoginURL()
	}
	if h.cfg.StoreErr != nil {
		resp.Store.Message = h.cfg.StoreErr.Error()
	}
	if f := h.cfg.Firebase; f.Complete() {
		resp.Firebase = &FirebaseWebConfig{
			APIKey:            f.APIKey,
			AuthDomain:        f.AuthDomain,
			ProjectID:         f.ProjectID,
			StorageBucket:     f.StorageBucket,
			MessagingSenderID: f.MessagingSenderID,
			AppID:             f.AppID,
		}
	}
	ok(c, http.StatusOK, resp)
}

// CreateSession godoc
// @ID          createSession
// @Summary     Sign in
// @Description Resolves the LINE profile behind an access token and issues a session token.
// @Tags        Session
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateSessionRequest  true  "LINE access token"
// @Success     201   {object}  handlers.SessionResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Login required"
// @Failure     502   {object}  handlers.ErrorResponse  "Connection error"
// @Failure     503   {object}  handlers.ErrorResponse  "Setup required"
// @Router      /session [post]
func (h *Handlers) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "access_token is required")
		return
	}
	if h.cfg.Identity == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeSetupRequired, "sign-in is not configured")
		return
	}

	p, err := h.cfg.Identity.Resolve(c.Request.Context(), req.AccessToken)
	if err != nil {
		failErr(c, err)
		return
	}
	s, err := h.cfg.Sessions.Open(p)
	if err != nil {
		failErr(c, err)
		return
	}
	tok, exp, err := h.cfg.Issuer.Issue(s.ID(), p)
	if err != nil {
		h.cfg.Sessions.Close(s.ID())
		failErr(c, err)
		return
	}
	middleware.LoggerFrom(c).Info().Str("session_id", s.ID()).Msg("session opened")
	ok(c, http.StatusCreated, SessionResponse{Token: tok, ExpiresAt: exp, Profile: p})
}

// GetSession godoc
// @ID          getSession
// @Summary     Current profile
// @Tags        Session
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.Profile
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Router      /session [get]
func (h *Handlers) GetSession(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if s == nil {
		fail(c, http.StatusUnauthorized, ErrCodeLoginRequired, "sign in with LINE to continue")
		return
	}
	p, _ := s.Profile()
	ok(c, http.StatusOK, p)
}

// DeleteSession godoc
// @ID          deleteSession
// @Summary     Sign out
// @Description Ends the session, cancels its live cellar streams and drops the chat transcript.
// @Tags        Session
// @Security    BearerAuth
// @Success     204  {string}  string  "No Content"
// @Router      /session [delete]
func (h *Handlers) DeleteSession(c *gin.Context) {
	if s := middleware.SessionFrom(c); s != nil {
		h.cfg.Sessions.Close(s.ID())
	}
	noContent(c)
}
