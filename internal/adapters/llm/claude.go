package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// ClaudeTutor implements domain.TutorClient on the Anthropic API.
type ClaudeTutor struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewClaudeTutor(apiKey, model string) (*ClaudeTutor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required for the claude tutor")
	}

	return &ClaudeTutor{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(3),
		),
		model: anthropic.Model(model),
	}, nil
}

func (c *ClaudeTutor) Reply(ctx context.Context, req domain.TutorRequest) (*domain.TutorReply, error) {
	system := BuildSystemPrompt(req)

	var messages []anthropic.MessageParam
	for _, m := range req.History {
		block := anthropic.NewTextBlock(m.Text)
		if m.Speaker == domain.SpeakerAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	res, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("claude message: %w", err)
	}

	var sb strings.Builder
	for _, block := range res.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("claude returned empty text")
	}

	return ParseReply(sb.String()), nil
}
