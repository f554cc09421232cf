package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local archives documents under a directory on the local filesystem.
type Local struct {
	baseDir string
}

func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

func (l *Local) Save(ctx context.Context, caseID, filename string, data io.Reader) (string, error) {
	key := objectKey(caseID, filename)
	fullPath := filepath.Join(l.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("creating archive subdirectory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("creating archive file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("writing archive file: %w", err)
	}
	return key, nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.baseDir, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archived document not found: %s", key)
		}
		return nil, fmt.Errorf("opening archived document: %w", err)
	}
	return f, nil
}

func (l *Local) Remove(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(l.baseDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing archived document: %w", err)
	}
	return nil
}
