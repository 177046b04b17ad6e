package minutes

import (
	"context"
	"time"
)

// Crew runs the agent tasks of a definition in order
type Crew interface {
	Kickoff(ctx context.Context, in Inputs) (*Output, error)
}

// Observer receives task and tool call outcomes
type Observer interface {
	ObserveTask(task string, took time.Duration, err error)
	ObserveToolCall(tool string, err error)
}
