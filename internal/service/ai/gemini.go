package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
)

// GeminiTransport talks to Google Gemini through the genai SDK.
type GeminiTransport struct {
	client      *genai.Client
	model       string
	temperature *float32
	prompts     *PersonaPromptManager
	logger      *zap.Logger
}

// NewGeminiTransport creates a Gemini client from an injected API key.
func NewGeminiTransport(ctx context.Context, apiKey, model string, temperature *float64, logger *zap.Logger) (*GeminiTransport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	var temp *float32
	if temperature != nil {
		temp = genai.Ptr(float32(*temperature))
	}

	return &GeminiTransport{
		client:      client,
		model:       model,
		temperature: temp,
		prompts:     NewPersonaPromptManager(),
		logger:      logger,
	}, nil
}

// Name implements Transport.
func (t *GeminiTransport) Name() string { return "gemini" }

// Generate implements Transport.
func (t *GeminiTransport) Generate(ctx context.Context, req DossierRequest) (*Dossier, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(t.prompts.BuildDossierInstruction(req.Mentor), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    dossierResponseSchema(),
		Temperature:       t.temperature,
	}

	contents := []*genai.Content{
		genai.NewContentFromText(FormatIdea(req.Idea), genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %v", ErrGenerationFailure, err)
	}

	text := resp.Text()
	t.logger.Debug("gemini dossier generated",
		zap.String("mentor", req.Mentor.ID),
		zap.Int("length", len(text)))
	return ParseDossier(text)
}

// StreamChat implements Transport.
func (t *GeminiTransport) StreamChat(ctx context.Context, req ChatRequest) (*schema.StreamReader[string], error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(t.prompts.BuildChatInstruction(req.Mentor), genai.RoleUser),
		Temperature:       t.temperature,
	}

	contents := buildGeminiContents(req.History)
	contents = append(contents, genai.NewContentFromText(req.UserText, genai.RoleUser))

	return pumpFragments(func(emit func(string) bool) error {
		for resp, err := range t.client.Models.GenerateContentStream(ctx, t.model, contents, config) {
			if err != nil {
				return fmt.Errorf("%w: gemini stream: %v", ErrStreamFailure, err)
			}
			if !emit(resp.Text()) {
				return nil
			}
		}
		return nil
	}), nil
}

func buildGeminiContents(turns []chat.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns)+1)
	for _, turn := range turns {
		role := genai.Role(genai.RoleUser)
		if turn.Role == chat.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}

func dossierResponseSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"perspective": str(),
			"problem":     str(),
			"solution":    str(),
			"evaluation":  str(),
			"plan":        {Type: genai.TypeArray, Items: str()},
			"techStack": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"frontend": str(),
					"backend":  str(),
					"database": str(),
					"ai":       str(),
					"hosting":  str(),
				},
				Required: []string{"frontend", "backend", "database", "ai", "hosting"},
			},
			"growthStrategy": str(),
			"finalAdvice":    str(),
		},
		Required: []string{"perspective", "problem", "solution", "evaluation", "plan", "techStack", "growthStrategy", "finalAdvice"},
	}
}
