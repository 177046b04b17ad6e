// Package gemini shares Gemini API clients between the transcription and
// LLM backends, rotating through API keys when one is rate limited.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

// Pool holds one lazily created client per API key
type Pool struct {
	keys    []string
	clients []*genai.Client
	baseURL string
	current int
	logger  logger.Logger
	mu      sync.Mutex
}

// NewPool creates a Pool over keys. baseURL overrides the API endpoint and
// may be empty.
func NewPool(keys []string, baseURL string, log logger.Logger) (*Pool, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}
	return &Pool{
		keys:    keys,
		clients: make([]*genai.Client, len(keys)),
		baseURL: baseURL,
		logger:  log,
	}, nil
}

// Do calls fn with the current client. On 429 / quota errors it rotates to
// the next key and tries again, at most once per key.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context, client *genai.Client) error) error {
	var lastErr error

	for range len(p.keys) {
		idx, client, err := p.client(ctx)
		if err != nil {
			lastErr = err
			p.rotate(idx)
			continue
		}

		err = fn(ctx, client)
		if err == nil {
			return nil
		}
		if !IsQuotaError(err) {
			return err
		}

		p.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
		p.rotate(idx)
		lastErr = err
	}

	return fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (p *Pool) client(ctx context.Context) (int, *genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.current
	if p.clients[idx] != nil {
		return idx, p.clients[idx], nil
	}

	cc := &genai.ClientConfig{
		APIKey:  p.keys[idx],
		Backend: genai.BackendGeminiAPI,
	}
	if p.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return idx, nil, fmt.Errorf("create client: %w", err)
	}
	p.clients[idx] = client
	return idx, client, nil
}

// rotate moves past key idx. Workers that hit the same exhausted key
// concurrently rotate only once.
func (p *Pool) rotate(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == idx {
		p.current = (p.current + 1) % len(p.keys)
	}
}

// IsQuotaError reports whether err is a rate limit / quota response
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// ResponseText concatenates the text parts of the first candidate
func ResponseText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}
