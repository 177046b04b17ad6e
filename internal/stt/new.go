package stt

import (
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/gemini"
	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// Deps carries the provider clients an Engine may be built on
type Deps struct {
	OpenAI   *openai.Client
	Gemini   *gemini.Pool
	Executor executor.Executor
}

// New builds the Engine selected by transcription.provider
func New(cfg *config.Config, deps Deps) (Engine, error) {
	tc := cfg.Transcription

	switch tc.Provider {
	case "openai":
		if deps.OpenAI == nil {
			return nil, fmt.Errorf("openai transcription requires OPENAI_API_KEY")
		}
		return NewOpenAI(deps.OpenAI, tc.Model, tc.Language, tc.Prompt), nil
	case "gemini":
		if deps.Gemini == nil {
			return nil, fmt.Errorf("gemini transcription requires GEMINI_API_KEYS")
		}
		return NewGemini(deps.Gemini, tc.Model, tc.Language, tc.Prompt), nil
	case "whisper":
		if deps.Executor == nil {
			return nil, fmt.Errorf("whisper transcription requires an executor")
		}
		return NewWhisper(deps.Executor, WhisperOptions{
			BinaryPath: cfg.Whisper.BinaryPath,
			ModelPath:  cfg.Whisper.ModelPath,
			Language:   tc.Language,
			Prompt:     tc.Prompt,
			Threads:    cfg.Whisper.Threads,
		}), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", tc.Provider)
	}
}
