package source

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads the CSV export from local disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Fetch(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read csv file: %w", err)
	}
	return string(data), nil
}
