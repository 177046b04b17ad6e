package stt

import "context"

// Engine turns one encoded audio file into text
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Name() string
}
