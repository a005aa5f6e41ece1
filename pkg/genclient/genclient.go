// Package genclient sends composed prompts to the Gemini text API.
package genclient

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("generation API key is not configured")

// Generator completes a single prompt with the given model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Gemini is a Generator backed by google.golang.org/genai.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Generate(ctx context.Context, model, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return result.Text(), nil
}

// Disabled is used when no API key is configured; every call fails.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
