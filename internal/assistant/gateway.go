// Package assistant is the gateway to the generative-AI provider. It turns
// a cellar snapshot and a conversation into a sommelier reply, and a label
// photo into structured wine fields.
//
// Converse never fails: provider problems surface as an in-chat message so
// the conversation UI always has something to show. ExtractLabel reports
// failures as errors and never returns a nil result without one.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/observability"
)

var tracer = observability.Tracer("assistant")

// ChatRequest is one sommelier turn sent to the provider.
type ChatRequest struct {
	System      string
	Turns       []domain.ChatMessage // history followed by the new user query
	Temperature float32
}

// ImageRequest asks the provider for JSON describing an image.
type ImageRequest struct {
	Instruction string
	Image       []byte
	MIMEType    string
}

// Model is the provider seam. Implementations return the raw text of the
// first candidate.
type Model interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	DescribeImage(ctx context.Context, req ImageRequest) (string, error)
}

// LabelFields are the attributes read off a label. Every field may be empty.
type LabelFields struct {
	Name     string          `json:"name"`
	Producer string          `json:"producer"`
	Varietal string          `json:"varietal"`
	Vintage  string          `json:"vintage"`
	Region   string          `json:"region"`
	Type     domain.WineType `json:"type"`
}

// Empty reports whether nothing was recognised on the label.
func (l LabelFields) Empty() bool { return l == LabelFields{} }

// WineFields converts the label into a form prefill with one bottle.
func (l LabelFields) WineFields() domain.WineFields {
	return domain.WineFields{
		Name:     l.Name,
		Producer: l.Producer,
		Varietal: l.Varietal,
		Vintage:  l.Vintage,
		Region:   l.Region,
		Type:     l.Type,
		Quantity: 1,
	}.Normalize()
}

// Gateway wraps a Model with the sommelier prompts and failure policy.
type Gateway struct {
	model       Model
	temperature float32
}

// NewGateway returns a gateway over m. A nil m yields an unconfigured
// gateway that answers every chat with NotConfiguredReply.
func NewGateway(m Model, temperature float64) *Gateway {
	return &Gateway{model: m, temperature: float32(temperature)}
}

// Configured reports whether a provider is attached.
func (g *Gateway) Configured() bool { return g != nil && g.model != nil }

// Converse returns the sommelier's reply to query given the current cellar
// and the previous turns.
func (g *Gateway) Converse(ctx context.Context, query string, cellar []domain.Wine, history []domain.ChatMessage) string {
	if !g.Configured() {
		observability.AssistantRequests.WithLabelValues("chat", "not_configured").Inc()
		return NotConfiguredReply
	}
	ctx, span := tracer.Start(ctx, "Converse")
	defer span.End()
	span.SetAttributes(attribute.Int("chat.history", len(history)), attribute.Int("cellar.wines", len(cellar)))

	turns := make([]domain.ChatMessage, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, domain.ChatMessage{Role: domain.RoleUser, Text: query})

	reply, err := g.model.Chat(ctx, ChatRequest{
		System:      SystemInstruction(cellar),
		Turns:       turns,
		Temperature: g.temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider error")
		log.Warn().Err(err).Msg("sommelier request failed")
		observability.AssistantRequests.WithLabelValues("chat", observability.OutcomeError).Inc()
		return fmt.Sprintf("%s (%v)", ConnectionReply, err)
	}
	observability.AssistantRequests.WithLabelValues("chat", observability.OutcomeOK).Inc()
	if strings.TrimSpace(reply) == "" {
		return FallbackReply
	}
	return reply
}

// ExtractLabel reads wine details from a label photo. A well-formed answer
// with nothing recognised yields empty fields (see LabelFields.Empty) and no
// error; ErrMalformedLabel and ErrProvider separate bad output from an
// unreachable provider.
func (g *Gateway) ExtractLabel(ctx context.Context, image []byte, mimeType string) (*LabelFields, error) {
	if !g.Configured() {
		observability.AssistantRequests.WithLabelValues("label", "not_configured").Inc()
		return nil, ErrNotConfigured
	}
	ctx, span := tracer.Start(ctx, "ExtractLabel")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(image)), attribute.String("image.mime", mimeType))

	raw, err := g.model.DescribeImage(ctx, ImageRequest{
		Instruction: LabelInstruction,
		Image:       image,
		MIMEType:    mimeType,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider error")
		observability.AssistantRequests.WithLabelValues("label", observability.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	lf, err := parseLabel(raw)
	if err != nil {
		span.RecordError(err)
		observability.AssistantRequests.WithLabelValues("label", observability.OutcomeError).Inc()
		return nil, err
	}
	observability.AssistantRequests.WithLabelValues("label", observability.OutcomeOK).Inc()
	return lf, nil
}

func parseLabel(raw string) (*LabelFields, error) {
	body := StripCodeFence(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedLabel)
	}
	var lf LabelFields
	if err := json.Unmarshal([]byte(body), &lf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLabel, err)
	}
	lf.Name = strings.TrimSpace(lf.Name)
	lf.Producer = strings.TrimSpace(lf.Producer)
	lf.Varietal = strings.TrimSpace(lf.Varietal)
	lf.Vintage = strings.TrimSpace(lf.Vintage)
	lf.Region = strings.TrimSpace(lf.Region)
	if t, ok := domain.ParseWineType(string(lf.Type)); ok {
		lf.Type = t
	} else {
		lf.Type = ""
	}
	return &lf, nil
}
