package llm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/minutes-flow/internal/gemini"
)

type geminiClient struct {
	pool  *gemini.Pool
	model string
}

// NewGemini creates a Client on Gemini, rotating keys through pool
func NewGemini(pool *gemini.Pool, model string) Client {
	return &geminiClient{pool: pool, model: model}
}

func (c *geminiClient) Name() string {
	return "gemini/" + c.model
}

func (c *geminiClient) Complete(ctx context.Context, req Request) (*Response, error) {
	contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}
	cfg := toGeminiConfig(req)

	var out *Response
	err = c.pool.Do(ctx, func(ctx context.Context, client *genai.Client) error {
		result, err := client.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		out, err = fromGeminiResponse(result)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toGeminiConfig(req Request) *genai.GenerateContentConfig {
	temperature := req.Temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}

	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			schema := &genai.Schema{
				Type:       genai.TypeObject,
				Properties: make(map[string]*genai.Schema, len(t.Parameters)),
			}
			for _, p := range t.Parameters {
				schema.Properties[p.Name] = &genai.Schema{
					Type:        genai.TypeString,
					Description: p.Description,
				}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schema,
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	return cfg
}

func toGeminiContents(messages []Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, genai.NewPartFromText(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: tc.Arguments,
				}})
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		case RoleTool:
			// Consecutive tool results go back in a single user turn
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.Name,
				Response: map[string]any{"output": m.Content},
			}}
			if n := len(contents); n > 0 && isFunctionResponse(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
			} else {
				contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
			}
		default:
			return nil, fmt.Errorf("unknown message role %q", m.Role)
		}
	}

	return contents, nil
}

func isFunctionResponse(c *genai.Content) bool {
	return len(c.Parts) > 0 && c.Parts[0].FunctionResponse != nil
}

func fromGeminiResponse(result *genai.GenerateContentResponse) (*Response, error) {
	text, err := gemini.ResponseText(result)
	if err != nil {
		return nil, err
	}

	out := &Response{Text: text}
	for _, part := range result.Candidates[0].Content.Parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		id := part.FunctionCall.ID
		if id == "" {
			id = uuid.NewString()
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        id,
			Name:      part.FunctionCall.Name,
			Arguments: part.FunctionCall.Args,
		})
	}

	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}
