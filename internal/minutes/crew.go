package minutes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
)

// Kickoff runs the tasks sequentially. Each task sees the answers of the
// tasks before it.
func (c *implCrew) Kickoff(ctx context.Context, in Inputs) (*Output, error) {
	if err := os.MkdirAll(in.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	out := &Output{}
	for _, task := range c.def.Tasks {
		startTime := time.Now()
		c.logger.Info(ctx, "Running task %s as %s", task.Name, task.Agent)

		result, err := c.runTask(ctx, task, in, out.Tasks)
		c.observer.ObserveTask(task.Name, time.Since(startTime), err)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.Name, err)
		}

		c.logger.Info(ctx, "Task %s finished in %s", task.Name, time.Since(startTime).Round(time.Millisecond))
		out.Tasks = append(out.Tasks, *result)
	}

	return out, nil
}

func (c *implCrew) runTask(ctx context.Context, task Task, in Inputs, previous []TaskOutput) (*TaskOutput, error) {
	agent := c.def.Agents[task.Agent]

	prompt, err := renderPrompt(task, in, previous)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		System:      systemPrompt(agent),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: c.opts.Temperature,
	}
	for _, name := range agent.Tools {
		req.Tools = append(req.Tools, toolSchema(name))
	}

	result := &TaskOutput{Task: task.Name, Agent: task.Agent}

	for round := 0; ; round++ {
		if round > c.opts.MaxToolRounds {
			return nil, fmt.Errorf("no final answer after %d tool rounds", c.opts.MaxToolRounds)
		}

		resp, err := c.client.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("complete with %s: %w", c.client.Name(), err)
		}

		if len(resp.ToolCalls) == 0 {
			result.Answer = strings.TrimSpace(resp.Text)
			break
		}

		req.Messages = append(req.Messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			path, err := runTool(agent, call, in.OutputDir)
			c.observer.ObserveToolCall(call.Name, err)

			reply := "saved " + filepath.Base(path)
			if err != nil {
				c.logger.Warn(ctx, "Tool call %s refused: %v", call.Name, err)
				reply = "error: " + err.Error()
			} else {
				c.logger.Debug(ctx, "Tool %s wrote %s", call.Name, path)
				result.Files = append(result.Files, path)
			}

			req.Messages = append(req.Messages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    reply,
			})
		}
	}

	if task.OutputFile != "" {
		files, err := writeTaskOutput(task, in, result.Answer)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, files...)
	}

	return result, nil
}

func renderPrompt(task Task, in Inputs, previous []TaskOutput) (string, error) {
	tmpl, err := template.New(task.Name).Parse(task.Description)
	if err != nil {
		return "", fmt.Errorf("parse description: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, in); err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}

	if task.ExpectedOutput != "" {
		b.WriteString("\n\nExpected output: ")
		b.WriteString(task.ExpectedOutput)
	}

	if len(previous) > 0 {
		b.WriteString("\n\nContext from previous tasks:")
		for _, p := range previous {
			fmt.Fprintf(&b, "\n\n[%s]\n%s", p.Task, p.Answer)
		}
	}

	return b.String(), nil
}

func systemPrompt(agent Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\nYour goal: %s", agent.Role, agent.Backstory, agent.Goal)
	if len(agent.Tools) > 0 {
		b.WriteString("\nUse your tools to save your work, then reply with your final answer.")
	}
	return b.String()
}

func writeTaskOutput(task Task, in Inputs, answer string) ([]string, error) {
	path := filepath.Join(in.OutputDir, task.OutputFile)
	if err := os.WriteFile(path, []byte(answer+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", task.OutputFile, err)
	}
	files := []string{path}

	if strings.EqualFold(filepath.Ext(path), ".md") {
		title := in.Title
		if title == "" {
			title = "Meeting Minutes"
		}
		docxPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".docx"
		if err := MarkdownToDocx(title, answer, docxPath); err != nil {
			return nil, fmt.Errorf("render %s: %w", filepath.Base(docxPath), err)
		}
		files = append(files, docxPath)
	}

	return files, nil
}
