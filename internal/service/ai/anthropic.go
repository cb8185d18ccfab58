package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
)

// 未配置时的默认输出上限。档案是完整的 JSON 文档，额度单独给。
const (
	defaultAnthropicMaxTokens        = 1024
	defaultAnthropicDossierMaxTokens = 2048
)

// AnthropicTransport calls the Anthropic Messages API.
type AnthropicTransport struct {
	client           *anthropic.Client
	model            string
	maxTokens        int
	dossierMaxTokens int
	prompts          *PersonaPromptManager
	logger           *zap.Logger
}

// NewAnthropicTransport creates a client from an injected API key. maxTokens
// bounds chat replies and dossierMaxTokens bounds dossier generation.
func NewAnthropicTransport(apiKey, model string, maxTokens, dossierMaxTokens int, logger *zap.Logger) (*AnthropicTransport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	if dossierMaxTokens <= 0 {
		dossierMaxTokens = defaultAnthropicDossierMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnthropicTransport{
		client:           anthropic.NewClient(apiKey),
		model:            model,
		maxTokens:        maxTokens,
		dossierMaxTokens: dossierMaxTokens,
		prompts:          NewPersonaPromptManager(),
		logger:           logger,
	}, nil
}

// Name implements Transport.
func (t *AnthropicTransport) Name() string { return "anthropic" }

// Generate implements Transport.
func (t *AnthropicTransport) Generate(ctx context.Context, req DossierRequest) (*Dossier, error) {
	resp, err := t.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(t.model),
		MultiSystem: []anthropic.MessageSystemPart{
			{Type: "text", Text: t.prompts.BuildDossierInstruction(req.Mentor)},
		},
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(FormatIdea(req.Idea)),
		},
		MaxTokens: t.dossierMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic messages: %v", ErrGenerationFailure, err)
	}

	var b strings.Builder
	for _, content := range resp.Content {
		if content.Type == anthropic.MessagesContentTypeText && content.Text != nil {
			b.WriteString(*content.Text)
		}
	}

	t.logger.Debug("anthropic dossier generated",
		zap.String("mentor", req.Mentor.ID),
		zap.Int("length", b.Len()))
	return ParseDossier(b.String())
}

// StreamChat implements Transport.
func (t *AnthropicTransport) StreamChat(ctx context.Context, req ChatRequest) (*schema.StreamReader[string], error) {
	messages := make([]anthropic.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		if turn.Role == chat.RoleModel {
			messages = append(messages, anthropic.NewAssistantTextMessage(turn.Text))
			continue
		}
		messages = append(messages, anthropic.NewUserTextMessage(turn.Text))
	}
	messages = append(messages, anthropic.NewUserTextMessage(req.UserText))

	system := t.prompts.BuildChatInstruction(req.Mentor)

	return pumpFragments(func(emit func(string) bool) error {
		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		var streamErr error
		request := anthropic.MessagesStreamRequest{
			MessagesRequest: anthropic.MessagesRequest{
				Model:       anthropic.Model(t.model),
				MultiSystem: []anthropic.MessageSystemPart{{Type: "text", Text: system}},
				Messages:    messages,
				MaxTokens:   t.maxTokens,
			},
			OnContentBlockDelta: func(delta anthropic.MessagesEventContentBlockDeltaData) {
				if delta.Delta.Text == nil {
					return
				}
				if !emit(*delta.Delta.Text) {
					// reader went away; abort the HTTP stream
					cancel()
				}
			},
			OnError: func(errResp anthropic.ErrorResponse) {
				streamErr = fmt.Errorf("%w: anthropic stream error: %v", ErrStreamFailure, errResp.Error)
			},
		}

		if _, err := t.client.CreateMessagesStream(streamCtx, request); err != nil {
			if streamCtx.Err() != nil && ctx.Err() == nil {
				return nil
			}
			return fmt.Errorf("%w: anthropic stream: %v", ErrStreamFailure, err)
		}
		return streamErr
	}), nil
}
