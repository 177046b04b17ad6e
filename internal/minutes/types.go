package minutes

import "errors"

// Agent roles known to the crew
const (
	RoleSummarizer = "meeting_minutes_summarizer"
	RoleWriter     = "meeting_minutes_writer"
)

// ErrToolNotPermitted is reported to the model when it calls a tool its role
// does not hold
var ErrToolNotPermitted = errors.New("tool not permitted for this agent")

// Agent is the persona a task runs as
type Agent struct {
	Role      string   `yaml:"role"`
	Goal      string   `yaml:"goal"`
	Backstory string   `yaml:"backstory"`
	Tools     []string `yaml:"tools"`
}

// Task is one step of the crew. Description is a text/template rendered with
// Inputs.
type Task struct {
	Name           string `yaml:"name"`
	Agent          string `yaml:"agent"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
	// OutputFile receives the final answer, relative to the run output dir.
	// A .md file is also rendered to .docx.
	OutputFile string `yaml:"output_file"`
}

// Definition is the static agent and task layout of a crew
type Definition struct {
	Agents map[string]Agent `yaml:"agents"`
	Tasks  []Task           `yaml:"tasks"`
}

// Inputs are the values available to task templates
type Inputs struct {
	Title      string
	Transcript string
	// OutputDir receives tool and task output files
	OutputDir string
}

// TaskOutput is the final answer of one task
type TaskOutput struct {
	Task   string
	Agent  string
	Answer string
	// Files written by tools or as the task output
	Files []string
}

// Output is the result of a crew kickoff
type Output struct {
	Tasks []TaskOutput
}

// Final returns the answer of the last task
func (o *Output) Final() string {
	if o == nil || len(o.Tasks) == 0 {
		return ""
	}
	return o.Tasks[len(o.Tasks)-1].Answer
}
