package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/lingua-labs/lingua-agent/internal/domain"
)

// GeminiTutor implements domain.TutorClient on Vertex AI (Gemini).
type GeminiTutor struct {
	client *genai.Client
	model  string
}

func NewGeminiTutor(ctx context.Context, projectID, location, model string) (*GeminiTutor, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("projectID and location are required for the gemini tutor")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &GeminiTutor{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiTutor) Reply(ctx context.Context, req domain.TutorRequest) (*domain.TutorReply, error) {
	system := BuildSystemPrompt(req)

	// The history already ends with the new user message, so it maps
	// one-to-one onto the request contents.
	var contents []*genai.Content
	for _, m := range req.History {
		var role genai.Role = genai.RoleUser
		if m.Speaker == domain.SpeakerAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   1024,
		ResponseMIMEType:  "application/json",
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty text")
	}

	return ParseReply(text), nil
}
