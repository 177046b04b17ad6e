package executor

import "context"

// Executor runs external tools such as ffmpeg and whisper.cpp
type Executor interface {
	// Execute runs name with args and returns its stdout
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteInDir is Execute with the working directory set to dir
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
}
