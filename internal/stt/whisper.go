package stt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/pkg/executor"
)

// WhisperOptions configures the local whisper.cpp binary
type WhisperOptions struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Prompt     string
	Threads    int
}

type whisperEngine struct {
	executor executor.Executor
	opts     WhisperOptions
}

// NewWhisper creates an Engine that shells out to whisper.cpp
func NewWhisper(exec executor.Executor, opts WhisperOptions) Engine {
	return &whisperEngine{
		executor: exec,
		opts:     opts,
	}
}

func (e *whisperEngine) Name() string {
	return "whisper.cpp/" + filepath.Base(e.opts.ModelPath)
}

// Transcribe runs whisper.cpp with plain text output next to the chunk file
func (e *whisperEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	// Whisper appends .txt to the output prefix
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))

	// -otxt: plain text output
	// -l: force language (prevents hallucination)
	// -bo 5: best of 5 for better accuracy
	args := []string{
		"-m", e.opts.ModelPath,
		"-f", audioPath,
		"-otxt",
		"-t", strconv.Itoa(e.opts.Threads),
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if e.opts.Language != "" {
		args = append(args, "-l", e.opts.Language)
	}
	if e.opts.Prompt != "" {
		args = append(args, "--prompt", e.opts.Prompt)
	}

	if _, err := e.executor.Execute(ctx, e.opts.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	txtPath := outputPrefix + ".txt"
	defer os.Remove(txtPath)

	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	return strings.Join(strings.Fields(string(data)), " "), nil
}
