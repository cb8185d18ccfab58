package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
)

// ArkTransport drives an eino chain (chat template -> chat model). The model is
// usually the Volcengine Ark model built from config, but any BaseChatModel works.
type ArkTransport struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	prompts *PersonaPromptManager
	logger  *zap.Logger
}

// NewArkTransport compiles the persona chat chain around chatModel.
func NewArkTransport(ctx context.Context, chatModel model.BaseChatModel, logger *zap.Logger) (*ArkTransport, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile mentor chain: %w", err)
	}

	return &ArkTransport{
		chain:   runnable,
		prompts: NewPersonaPromptManager(),
		logger:  logger,
	}, nil
}

// Name implements Transport.
func (t *ArkTransport) Name() string { return "ark" }

// Generate implements Transport.
func (t *ArkTransport) Generate(ctx context.Context, req DossierRequest) (*Dossier, error) {
	input := map[string]any{
		"system":  t.prompts.BuildDossierInstruction(req.Mentor),
		"history": []*schema.Message{},
		"query":   FormatIdea(req.Idea),
	}

	response, err := t.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: run ark chain: %v", ErrGenerationFailure, err)
	}
	if response == nil {
		return nil, fmt.Errorf("%w: empty ark response", ErrGenerationFailure)
	}

	t.logger.Debug("ark dossier generated",
		zap.String("mentor", req.Mentor.ID),
		zap.Int("length", len(response.Content)))
	return ParseDossier(response.Content)
}

// StreamChat implements Transport.
func (t *ArkTransport) StreamChat(ctx context.Context, req ChatRequest) (*schema.StreamReader[string], error) {
	input := map[string]any{
		"system":  t.prompts.BuildChatInstruction(req.Mentor),
		"history": buildHistoryMessages(req.History),
		"query":   req.UserText,
	}

	stream, err := t.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: stream ark chain: %v", ErrStreamFailure, err)
	}

	return pumpFragments(func(emit func(string) bool) error {
		defer stream.Close()
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: ark recv: %v", ErrStreamFailure, err)
			}
			if chunk == nil {
				continue
			}
			if !emit(chunk.Content) {
				return nil
			}
		}
	}), nil
}

// buildHistoryMessages maps settled turns onto eino user/assistant messages.
func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleModel:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return history
}
