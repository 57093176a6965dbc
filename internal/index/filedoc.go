package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/murmur-app/murmur/internal/model"
)

// FileDoc stores the metadata document as one JSON file, written with a
// temp-file rename so readers never observe a torn document.
type FileDoc struct {
	path string
}

// NewFileDoc creates a file-backed document store at path, creating parent
// directories as needed.
func NewFileDoc(path string) (*FileDoc, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &FileDoc{path: path}, nil
}

func (f *FileDoc) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("read index document: %w", err)
	}
	return data, nil
}

func (f *FileDoc) Store(ctx context.Context, data []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write index document: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit index document: %w", err)
	}
	return nil
}

func (f *FileDoc) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}

func (f *FileDoc) Close() error { return nil }
