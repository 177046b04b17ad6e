package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type openAIEngine struct {
	client   *openai.Client
	model    string
	language string
	prompt   string
}

// NewOpenAI creates an Engine backed by the OpenAI audio transcription API
func NewOpenAI(client *openai.Client, model, language, prompt string) Engine {
	return &openAIEngine{
		client:   client,
		model:    model,
		language: language,
		prompt:   prompt,
	}
}

func (e *openAIEngine) Name() string {
	return "openai/" + e.model
}

func (e *openAIEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		FilePath: audioPath,
		Language: e.language,
		Prompt:   e.prompt,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
