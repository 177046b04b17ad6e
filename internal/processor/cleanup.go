package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

// inInput reports whether path sits directly in the input folder
func (p *implProcessor) inInput(path string) bool {
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return false
	}
	input, err := filepath.Abs(p.cfg.Paths.Input)
	if err != nil {
		return false
	}
	return dir == input
}

// moveToProcessing moves the recording from input to processing folder
func (p *implProcessor) moveToProcessing(ctx context.Context, log logger.Logger, audioPath string) (string, error) {
	return p.move(ctx, log, audioPath, p.cfg.Paths.Processing, "processing")
}

// moveToArchived moves the processed recording to archived folder
func (p *implProcessor) moveToArchived(ctx context.Context, log logger.Logger, audioPath string) (string, error) {
	return p.move(ctx, log, audioPath, p.cfg.Paths.Archived, "archived")
}

func (p *implProcessor) move(ctx context.Context, log logger.Logger, src, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s dir: %w", name, err)
	}
	dest := filepath.Join(dir, filepath.Base(src))

	log.Info(ctx, "Moving to %s folder: %s -> %s", name, src, dest)

	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("move to %s: %w", name, err)
	}
	return dest, nil
}
