package input

import (
	"context"
	"os"
)

// FileSource reads an import document from a file.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path.
func (s *FileSource) Name() string {
	return s.path
}

// Read reads the whole file.
func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &AdapterError{Source: s.path, Message: "failed to open file", Err: err}
	}
	defer f.Close()

	return readLimited(ctx, s.path, f)
}
