// Package gemini provides LLM-backed implementations of the dialogue
// core's pluggable boundaries: slot extraction (NLU) and decision
// rendering (NLG), both over the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const modelName = "gemini-2.0-flash"

// newClient creates a Gemini API client.
func newClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// generate runs one deterministic text completion.
func generate(ctx context.Context, client *genai.Client, prompt string) (string, error) {
	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}
