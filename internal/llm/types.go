package llm

// Role identifies the author of a Message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a conversation. Tool results carry the ID and name
// of the call they answer.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

// ToolCall is a function invocation requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// StringArg returns argument key as a string
func (c ToolCall) StringArg(key string) (string, bool) {
	v, ok := c.Arguments[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Tool describes a function the model may call. Every parameter is a string.
type Tool struct {
	Name        string
	Description string
	Parameters  []Parameter
}

type Parameter struct {
	Name        string
	Description string
	Required    bool
}

type Request struct {
	System      string
	Messages    []Message
	Tools       []Tool
	Temperature float32
}

type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// jsonSchema renders the tool parameters as a JSON schema object
func (t Tool) jsonSchema() map[string]any {
	props := make(map[string]any, len(t.Parameters))
	required := []string{}
	for _, p := range t.Parameters {
		props[p.Name] = map[string]any{
			"type":        "string",
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
