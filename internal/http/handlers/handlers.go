// Package handlers provides the HTTP endpoints of the cellar API.
//
// Handlers are transport-thin: they bind and validate input, call the
// application services, and translate results (including the confirmation
// flows) into HTTP responses. Every route below the session endpoints runs
// behind middleware.RequireSession, so the user and session are always
// present in the Gin context.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cellar-backend/internal/assistant"
	"github.com/tbourn/go-cellar-backend/internal/config"
	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/http/middleware"
	"github.com/tbourn/go-cellar-backend/internal/identity"
	"github.com/tbourn/go-cellar-backend/internal/services"
	"github.com/tbourn/go-cellar-backend/internal/session"
	"github.com/tbourn/go-cellar-backend/internal/store"
)

//
// Service contracts (context-aware)
//

// CellarService is the cellar rule set consumed by the wine endpoints.
type CellarService interface {
	Subscribe(ctx context.Context, userID string) (*store.Subscription, error)
	List(ctx context.Context, userID string) ([]domain.Wine, error)
	Create(ctx context.Context, userID string, f domain.WineFields) (string, error)
	Update(ctx context.Context, userID, id string, p domain.WinePatch) error
	Delete(ctx context.Context, userID, id string, confirmed bool) error
	AdjustQuantity(ctx context.Context, userID, id string, delta int, choice services.ZeroChoice) (services.Adjustment, error)
	Summary(ctx context.Context, userID string, topN int) (domain.CellarSummary, error)
	Search(ctx context.Context, userID, q string, k int) ([]services.SearchHit, error)
}

// SommelierService runs assistant conversations and label scans.
type SommelierService interface {
	Chat(ctx context.Context, t services.Transcript, query string) (domain.ChatMessage, error)
	ScanLabel(ctx context.Context, userID string, image []byte, mimeType string) (*assistant.LabelFields, error)
}

// IdentityResolver turns a LINE access token into a profile.
type IdentityResolver interface {
	Resolve(ctx context.Context, accessToken string) (domain.Profile, error)
	LIFFID() string
	LoginURL() string
}

//
// Handler wiring
//

// Config carries the dependencies of Handlers.
type Config struct {
	Cellar    CellarService
	Sommelier SommelierService

	// Identity is nil when SetupErr is set.
	Identity IdentityResolver
	SetupErr error
	// StoreErr is set when the cellar store could not be opened.
	StoreErr error

	Issuer   *identity.SessionIssuer
	Sessions *session.Manager

	StoreDriver    string
	Firebase       config.FirebaseConfig
	AssistantReady bool

	// Heartbeat is the keep-alive interval of the cellar stream.
	Heartbeat time.Duration
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	cfg Config
}

// New constructs a Handlers instance; a zero Heartbeat defaults to 25s.
func New(cfg Config) *Handlers {
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 25 * time.Second
	}
	return &Handlers{cfg: cfg}
}

// userID returns the user resolved by RequireSession ("" when absent, which
// the services reject with ErrNoUser).
func userID(c *gin.Context) string {
	if v, ok := c.Get(middleware.CtxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
