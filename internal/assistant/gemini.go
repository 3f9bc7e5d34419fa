package assistant

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/tbourn/go-cellar-backend/internal/config"
	"github.com/tbourn/go-cellar-backend/internal/domain"
)

// GeminiModel implements Model on the Google Gen AI SDK.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel connects to the Gemini API with cfg.APIKey.
func NewGeminiModel(ctx context.Context, cfg config.AssistantConfig) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiModel{client: c, model: strings.TrimPrefix(cfg.Model, "models/")}, nil
}

// NewFromConfig returns a gateway backed by Gemini, or an unconfigured
// gateway when no key is set.
func NewFromConfig(ctx context.Context, cfg config.AssistantConfig) (*Gateway, error) {
	m, err := NewGeminiModel(ctx, cfg)
	if errors.Is(err, ErrNotConfigured) {
		return NewGateway(nil, cfg.Temperature), nil
	}
	if err != nil {
		return nil, err
	}
	return NewGateway(m, cfg.Temperature), nil
}

func (g *GeminiModel) Chat(ctx context.Context, req ChatRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Turns))
	for _, t := range req.Turns {
		contents = append(contents, genai.NewContentFromText(t.Text, roleOf(t.Role)))
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(req.Temperature),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *GeminiModel) DescribeImage(ctx context.Context, req ImageRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.Image, req.MIMEType),
			genai.NewPartFromText(req.Instruction),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   labelSchema(),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func roleOf(r domain.Role) genai.Role {
	if r == domain.RoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func labelSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":     str(),
			"producer": str(),
			"varietal": str(),
			"vintage":  str(),
			"region":   str(),
			"type":     {Type: genai.TypeString, Enum: domain.WineTypeStrings()},
		},
		Required: []string{"name", "producer", "type"},
	}
}
