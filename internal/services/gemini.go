package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
}

type geminiService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiService(apiKey string) (GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:    client,
		modelName: "gemini-2.5-flash",
	}, nil
}

// GenerateJSON implements GeminiService. The model is asked for a JSON-mode
// response; the returned string is still fence-stripped by the caller since
// shape-valid output is only guaranteed after validation.
func (g *geminiService) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
