package transcriber

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirExchange keeps segment files in one directory per run. With keep set the
// files stay on disk for audit instead of being removed after each call.
type DirExchange struct {
	dir  string
	keep bool
}

// NewDirExchange creates <root>/<runID>
func NewDirExchange(root, runID string, keep bool) (*DirExchange, error) {
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}
	return &DirExchange{dir: dir, keep: keep}, nil
}

// Dir returns the directory holding the segment files
func (x *DirExchange) Dir() string {
	return x.dir
}

func (x *DirExchange) Put(index int, data []byte) (string, error) {
	path := filepath.Join(x.dir, fmt.Sprintf("chunk_%d.wav", index))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write chunk %d: %w", index, err)
	}
	return path, nil
}

func (x *DirExchange) Release(path string) error {
	if x.keep {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove chunk: %w", err)
	}
	return nil
}

// Close removes the run directory unless files are kept
func (x *DirExchange) Close() error {
	if x.keep {
		return nil
	}
	return os.RemoveAll(x.dir)
}
