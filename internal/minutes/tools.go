package minutes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
)

const (
	ToolWriteSummary     = "write_summary"
	ToolWriteActionItems = "write_action_items"
	ToolWriteSentiment   = "write_sentiment"
)

type fileTool struct {
	file        string
	description string
}

// fileTools write the content argument to a fixed file in the run output dir
var fileTools = map[string]fileTool{
	ToolWriteSummary:     {file: "summary.txt", description: "Save the meeting summary"},
	ToolWriteActionItems: {file: "action_items.txt", description: "Save the meeting action items, one per line"},
	ToolWriteSentiment:   {file: "sentiment.txt", description: "Save the overall sentiment of the meeting"},
}

func toolSchema(name string) llm.Tool {
	t := fileTools[name]
	return llm.Tool{
		Name:        name,
		Description: fmt.Sprintf("%s to %s", t.description, t.file),
		Parameters: []llm.Parameter{
			{Name: "content", Description: "Text to write", Required: true},
		},
	}
}

// runTool executes call for agent and returns the written file
func runTool(agent Agent, call llm.ToolCall, dir string) (string, error) {
	tool, ok := fileTools[call.Name]
	if !ok || !agent.permits(call.Name) {
		return "", fmt.Errorf("%s: %w", call.Name, ErrToolNotPermitted)
	}

	content, ok := call.StringArg("content")
	if !ok {
		return "", fmt.Errorf("%s: missing content argument", call.Name)
	}

	path := filepath.Join(dir, tool.file)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", tool.file, err)
	}
	return path, nil
}
