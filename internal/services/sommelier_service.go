package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-cellar-backend/internal/assistant"
	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/observability"
)

var sommelierTracer = observability.Tracer("services/SommelierService")

// Sommelier is the assistant contract used by SommelierService.
type Sommelier interface {
	Converse(ctx context.Context, query string, cellar []domain.Wine, history []domain.ChatMessage) string
	ExtractLabel(ctx context.Context, image []byte, mimeType string) (*assistant.LabelFields, error)
}

// Transcript is the per-session conversation the service reads and extends.
type Transcript interface {
	UserID() string
	History() []domain.ChatMessage
	Append(msgs ...domain.ChatMessage) error
}

// SommelierService runs chat turns against the user's current cellar.
type SommelierService struct {
	Cellar    *CellarService
	Assistant Sommelier

	now func() time.Time
}

// NewSommelierService wires the service.
func NewSommelierService(c *CellarService, a Sommelier) *SommelierService {
	return &SommelierService{Cellar: c, Assistant: a, now: time.Now}
}

// Chat sends query with the transcript so far and the current cellar, then
// appends both turns to the transcript. The reply is returned even when the
// provider failed; it then carries the in-chat error text.
func (s *SommelierService) Chat(ctx context.Context, t Transcript, query string) (domain.ChatMessage, error) {
	uid := t.UserID()
	if uid == "" {
		return domain.ChatMessage{}, ErrNoUser
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ChatMessage{}, ErrEmptyQuery
	}
	ctx, span := sommelierTracer.Start(ctx, "Chat")
	defer span.End()

	ws, err := s.Cellar.List(ctx, uid)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	history := t.History()
	span.SetAttributes(attribute.Int("chat.history", len(history)))

	asked := domain.ChatMessage{Role: domain.RoleUser, Text: query, Timestamp: s.now().UnixMilli()}
	text := s.Assistant.Converse(ctx, query, ws, history)
	reply := domain.ChatMessage{Role: domain.RoleModel, Text: text, Timestamp: s.now().UnixMilli()}

	if err := t.Append(asked, reply); err != nil {
		return domain.ChatMessage{}, err
	}
	return reply, nil
}

// ScanLabel extracts form prefill values from a label photo.
func (s *SommelierService) ScanLabel(ctx context.Context, userID string, image []byte, mimeType string) (*assistant.LabelFields, error) {
	if userID == "" {
		return nil, ErrNoUser
	}
	ctx, span := sommelierTracer.Start(ctx, "ScanLabel")
	defer span.End()
	return s.Assistant.ExtractLabel(ctx, image, mimeType)
}
