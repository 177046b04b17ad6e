package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/minutes-flow/internal/gemini"
)

const geminiPrompt = `Transcribe this meeting audio verbatim.
Return only the spoken words as plain text, without timestamps, speaker labels or commentary.
If nothing is spoken, return an empty response.`

type geminiEngine struct {
	pool     *gemini.Pool
	model    string
	language string
	prompt   string
}

// NewGemini creates an Engine that sends each chunk inline to a Gemini model
func NewGemini(pool *gemini.Pool, model, language, prompt string) Engine {
	return &geminiEngine{
		pool:     pool,
		model:    model,
		language: language,
		prompt:   prompt,
	}
}

func (e *geminiEngine) Name() string {
	return "gemini/" + e.model
}

func (e *geminiEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read chunk: %w", err)
	}

	instruction := geminiPrompt
	if e.language != "" {
		instruction += "\nThe audio is in language: " + e.language + "."
	}
	if e.prompt != "" {
		instruction += "\nVocabulary hints: " + e.prompt
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(data, "audio/wav"),
		}, genai.RoleUser),
	}

	var text string
	err = e.pool.Do(ctx, func(ctx context.Context, client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, e.model, contents, nil)
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		text, err = gemini.ResponseText(result)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("gemini transcription: %w", err)
	}

	return strings.TrimSpace(text), nil
}
