package llm

import (
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/nguyentantai21042004/minutes-flow/internal/config"
	"github.com/nguyentantai21042004/minutes-flow/internal/gemini"
)

// New builds the Client selected by llm.provider
func New(cfg config.LLMConfig, openAI *openai.Client, pool *gemini.Pool) (Client, error) {
	switch cfg.Provider {
	case "openai":
		if openAI == nil {
			return nil, fmt.Errorf("openai llm requires OPENAI_API_KEY")
		}
		return NewOpenAI(openAI, cfg.Model), nil
	case "gemini":
		if pool == nil {
			return nil, fmt.Errorf("gemini llm requires GEMINI_API_KEYS")
		}
		return NewGemini(pool, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
