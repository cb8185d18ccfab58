package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/schema"
	openai "github.com/meguminnnnnnnnn/go-openai"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
)

// OpenAITransport calls an OpenAI-compatible chat completions API.
type OpenAITransport struct {
	client  *openai.Client
	model   string
	prompts *PersonaPromptManager
	logger  *zap.Logger
}

// NewOpenAITransport creates a client; baseURL may point at any compatible endpoint.
func NewOpenAITransport(apiKey, model, baseURL string, logger *zap.Logger) (*OpenAITransport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAITransport{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		prompts: NewPersonaPromptManager(),
		logger:  logger,
	}, nil
}

// Name implements Transport.
func (t *OpenAITransport) Name() string { return "openai" }

// Generate implements Transport.
func (t *OpenAITransport) Generate(ctx context.Context, req DossierRequest) (*Dossier, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: t.prompts.BuildDossierInstruction(req.Mentor)},
			{Role: openai.ChatMessageRoleUser, Content: FormatIdea(req.Idea)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai completion: %v", ErrGenerationFailure, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", ErrGenerationFailure)
	}

	content := resp.Choices[0].Message.Content
	t.logger.Debug("openai dossier generated",
		zap.String("mentor", req.Mentor.ID),
		zap.Int("length", len(content)))
	return ParseDossier(content)
}

// StreamChat implements Transport.
func (t *OpenAITransport) StreamChat(ctx context.Context, req ChatRequest) (*schema.StreamReader[string], error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: t.prompts.BuildChatInstruction(req.Mentor),
	})
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == chat.RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserText,
	})

	stream, err := t.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    t.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai stream: %v", ErrStreamFailure, err)
	}

	return pumpFragments(func(emit func(string) bool) error {
		defer stream.Close()
		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: openai recv: %v", ErrStreamFailure, err)
			}
			if len(response.Choices) == 0 {
				continue
			}
			if !emit(response.Choices[0].Delta.Content) {
				return nil
			}
		}
	}), nil
}
