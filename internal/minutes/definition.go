package minutes

import (
	"fmt"
	"os"
	"slices"
	"text/template"

	"gopkg.in/yaml.v3"
)

// DefaultDefinition returns the built-in summarizer and writer crew
func DefaultDefinition() Definition {
	return Definition{
		Agents: map[string]Agent{
			RoleSummarizer: {
				Role: "Meeting Minutes Summarizer",
				Goal: "Summarize the meeting transcript into a concise summary, a list of action items and the overall sentiment",
				Backstory: "You are an experienced executive assistant. You read raw meeting transcripts and " +
					"pull out what was decided, who owns what, and how the discussion felt.",
				Tools: []string{ToolWriteSummary, ToolWriteActionItems, ToolWriteSentiment},
			},
			RoleWriter: {
				Role: "Meeting Minutes Writer",
				Goal: "Write the final meeting minutes document from the transcript and the summary notes",
				Backstory: "You write clear, well structured meeting minutes in Markdown that people who " +
					"missed the meeting can act on.",
			},
		},
		Tasks: []Task{
			{
				Name:  "meeting_minutes_summary_task",
				Agent: RoleSummarizer,
				Description: "Summarize the following meeting transcript.\n\n" +
					"Write a short summary with write_summary, the action items (owner and item, one per line) " +
					"with write_action_items, and the overall sentiment of the meeting with write_sentiment.\n\n" +
					"Transcript:\n{{.Transcript}}",
				ExpectedOutput: "The summary, the action items and the sentiment of the meeting, each also saved with its tool.",
			},
			{
				Name:  "meeting_minutes_writing_task",
				Agent: RoleWriter,
				Description: "Write the meeting minutes for {{if .Title}}\"{{.Title}}\"{{else}}the meeting{{end}} " +
					"based on the transcript and the summary, action items and sentiment from the previous step.\n\n" +
					"Transcript:\n{{.Transcript}}",
				ExpectedOutput: "Meeting minutes in Markdown with the sections Summary, Discussion, Decisions, " +
					"Action Items and Sentiment.",
				OutputFile: "meeting_minutes.md",
			},
		},
	}
}

// LoadDefinition overlays the YAML file at path on the built-in definition.
// Agents are replaced by name; a non-empty task list replaces all tasks.
func LoadDefinition(path string) (Definition, error) {
	def := DefaultDefinition()
	if path == "" {
		return def, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read crew file %s: %w", path, err)
	}

	var override Definition
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Definition{}, fmt.Errorf("parse crew file %s: %w", path, err)
	}

	for name, agent := range override.Agents {
		def.Agents[name] = agent
	}
	if len(override.Tasks) > 0 {
		def.Tasks = override.Tasks
	}

	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("validate crew file %s: %w", path, err)
	}
	return def, nil
}

func (d Definition) Validate() error {
	if len(d.Tasks) == 0 {
		return fmt.Errorf("crew has no tasks")
	}

	for name, agent := range d.Agents {
		if name != RoleSummarizer && name != RoleWriter {
			return fmt.Errorf("unknown agent role %q", name)
		}
		for _, tool := range agent.Tools {
			if _, ok := fileTools[tool]; !ok {
				return fmt.Errorf("agent %s: unknown tool %q", name, tool)
			}
		}
	}

	seen := make(map[string]bool, len(d.Tasks))
	for i, task := range d.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task %d has no name", i)
		}
		if seen[task.Name] {
			return fmt.Errorf("duplicate task %s", task.Name)
		}
		seen[task.Name] = true

		if _, ok := d.Agents[task.Agent]; !ok {
			return fmt.Errorf("task %s: unknown agent %q", task.Name, task.Agent)
		}
		if _, err := template.New(task.Name).Parse(task.Description); err != nil {
			return fmt.Errorf("task %s: parse description: %w", task.Name, err)
		}
	}

	return nil
}

func (a Agent) permits(tool string) bool {
	return slices.Contains(a.Tools, tool)
}
