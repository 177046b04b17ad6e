package config

import (
	"os"
	"strings"
)

// Credentials are the provider secrets, read from the environment
type Credentials struct {
	OpenAIKey     string
	OpenAIBaseURL string
	GeminiKeys    []string
	GeminiBaseURL string
}

// LoadCredentials reads OPENAI_API_KEY, OPENAI_BASE_URL, GEMINI_API_KEYS (comma
// separated, falls back to GEMINI_API_KEY) and GEMINI_BASE_URL
func LoadCredentials() Credentials {
	creds := Credentials{
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		GeminiBaseURL: strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
	}

	keys := os.Getenv("GEMINI_API_KEYS")
	if keys == "" {
		keys = os.Getenv("GEMINI_API_KEY")
	}
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			creds.GeminiKeys = append(creds.GeminiKeys, k)
		}
	}

	return creds
}

// Uses reports whether provider is selected for transcription or the llm
func (c *Config) Uses(provider string) bool {
	return c.Transcription.Provider == provider || c.LLM.Provider == provider
}
